package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/runner/get"
	"tableflip.dev/duedeck/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	var view string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reprint the deck whenever the local task file changes.",
		Example: `
duedeck watch --file tasks.csv
duedeck watch --file tasks.json --view urgent
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			env, svc, err := load()
			if err != nil {
				return err
			}
			w := &watch.Watch{
				Service: svc,
				View:    get.View(view),
				Class:   env.Class,
				Out:     cmd.OutOrStdout(),
			}
			return w.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&view, "view", string(get.ViewAll), "What to reprint: all, cards, urgent or calendar.")
	topLevel.AddCommand(cmd)
}
