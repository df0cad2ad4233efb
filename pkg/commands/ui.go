package commands

import (
	"github.com/spf13/cobra"

	teaui "tableflip.dev/duedeck/pkg/runner/tea"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the card carousel",
		Long: `Open the interactive carousel: ←/→ move between cards, enter flips a
card, u jumps to the next urgent task, 1-5 switch class, c toggles the
calendar, r refreshes and q quits.`,
		Example: `
duedeck ui
duedeck ui --class 2
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			env, err := so.Load()
			if err != nil {
				return err
			}
			clock, err := nowOpts.Clock()
			if err != nil {
				return err
			}
			i := teaui.UI{
				Settings: env.Settings,
				Prefs:    env.Prefs,
				Class:    env.Class,
				Now:      clock,
			}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
