package commands

import (
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/printers"
	"tableflip.dev/duedeck/pkg/runner/track"
)

func addCountdown(topLevel *cobra.Command) {
	var once bool

	cmd := &cobra.Command{
		Use:     "countdown",
		Aliases: []string{"track"},
		Short:   "Count down to midnight while tasks are due today.",
		Long: `Countdown shows the time left today when a task is due today and
midnight is close. In a terminal the line updates every second until
midnight or Ctrl-C; otherwise it prints once.`,
		Example: `
duedeck countdown
duedeck countdown --once
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			_, svc, err := load()
			if err != nil {
				return err
			}
			t := &track.Track{
				Service: svc,
				Live:    !once && printers.IsTerminal(os.Stdout),
				Now:     svc.Now,
				Out:     cmd.OutOrStdout(),
			}
			return t.Do(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Print the time left once and exit.")
	topLevel.AddCommand(cmd)
}
