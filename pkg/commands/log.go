package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/commands/options"
	"tableflip.dev/duedeck/pkg/runner/log"
	"tableflip.dev/duedeck/pkg/timeutil"
)

func addAgenda(topLevel *cobra.Command) {
	var (
		next string
		past bool
	)

	cmd := &cobra.Command{
		Use:     "agenda",
		Aliases: []string{"log"},
		Short:   "List dated tasks day by day.",
		Long: `Agenda groups the tasks with a readable deadline by day, from today
through the given span.

Examples:
  duedeck agenda
  duedeck agenda --next 2w
  duedeck agenda --next 1w --past`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			span, err := timeutil.ParseSpan(next, "1w")
			if err != nil {
				return oo.HandleError(err)
			}
			_, svc, err := load()
			if err != nil {
				return oo.HandleError(err)
			}
			clock, _ := nowOpts.Clock()

			l := &log.Log{
				Service: svc,
				Span:    span,
				Past:    past,
				Now:     clock,
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&next, "next", "1w", "How far ahead to look (for example 3d, 2w).")
	cmd.Flags().BoolVar(&past, "past", false, "Also include the same span before today.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
