package options

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/timeutil"
)

var nowLayouts = []string{
	"2006-1-2 15:04",
	"2006-1-2",
	time.RFC3339,
}

// NowOptions pins the clock, mostly for checking what a sheet looked like
// on another day.
type NowOptions struct {
	NowString string
}

func AddNowArgs(cmd *cobra.Command, o *NowOptions) {
	cmd.PersistentFlags().StringVar(&o.NowString, "now", "",
		`Evaluate deadlines as of this local time, example: --now="2025-3-12 21:00".`)
}

// Clock returns nil when no time was given, so callers use the wall clock.
func (o *NowOptions) Clock() (timeutil.Clock, error) {
	if o.NowString == "" {
		return nil, nil
	}
	for _, layout := range nowLayouts {
		t, err := time.ParseInLocation(layout, o.NowString, time.Local)
		if err == nil {
			// The pinned instant still moves so countdowns tick.
			offset := time.Since(t)
			return func() time.Time { return time.Now().Add(-offset) }, nil
		}
	}
	return nil, fmt.Errorf("invalid --now %q, expected YYYY-M-D [HH:MM]", o.NowString)
}
