package teaui

import (
	"context"
	"errors"
	"os"

	appsvc "tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/printers"
	"tableflip.dev/duedeck/pkg/store"
	"tableflip.dev/duedeck/pkg/timeutil"
	tuiapp "tableflip.dev/duedeck/pkg/tui/app"
	"tableflip.dev/duedeck/pkg/tui/theme"
)

// ErrNotTerminal is returned when stdout cannot host the full screen UI.
var ErrNotTerminal = errors.New("ui: stdout is not a terminal, try `duedeck show`")

// UI launches the Bubble Tea carousel for the configured sheet.
type UI struct {
	Settings *store.Settings
	Prefs    *store.Prefs
	Class    int
	Now      timeutil.Clock
}

// Options builds the program options. Each class gets its own service so
// switching tabs rereads the sheet.
func (u *UI) Options() tuiapp.Options {
	return tuiapp.Options{
		ServiceFor: func(class int) (tuiapp.Refresher, error) {
			svc, err := appsvc.NewService(u.Settings, u.Prefs, class, nil)
			if err != nil {
				return nil, err
			}
			svc.Now = u.Now
			return svc, nil
		},
		Class: u.Class,
		Remember: func(class int) error {
			return appsvc.RememberClass(u.Prefs, class)
		},
		Carousel: appsvc.CarouselFor(u.Settings),
		Theme:    theme.Detect(),
		Now:      u.Now,
	}
}

// Do runs the program until the user quits.
func (u *UI) Do(_ context.Context) error {
	if u.Settings == nil {
		return errors.New("ui: no settings")
	}
	if !printers.IsTerminal(os.Stdout) {
		return ErrNotTerminal
	}
	return tuiapp.Run(u.Options())
}
