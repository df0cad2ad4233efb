package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about where tasks are read from and where state is stored.",
		Example: `
duedeck info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			env, err := so.Load()
			if err != nil {
				return err
			}
			s := info.Info{
				Settings: env.Settings,
				Prefs:    env.Prefs,
				Class:    env.Class,
				Out:      cmd.OutOrStdout(),
			}
			return s.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
