package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/commands/options"
	"tableflip.dev/duedeck/pkg/printers"
	"tableflip.dev/duedeck/pkg/runner/mcp"
)

func addResolve(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "resolve <date>...",
		Short: "Show how deadline text from the sheet is read.",
		Long: `Resolve runs the same date reading the deck uses on each argument and
prints the date, the days left and the urgency it would get.`,
		Example: `
duedeck resolve 3/14 "2025.03.10" "12월 3일 (수)"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			env, err := so.Load()
			if err != nil {
				return oo.HandleError(err)
			}
			clock, err := nowOpts.Clock()
			if err != nil {
				return oo.HandleError(err)
			}
			svc := mcp.NewService(nil, app.PipelineFor(env.Settings).Resolver)
			svc.Now = clock

			out := make([]mcp.ResolvedDate, 0, len(args))
			var failed error
			pp := printers.NewPrettyPrint(cmd.OutOrStdout())
			for _, a := range args {
				r, err := svc.ResolveDate(a)
				if err != nil {
					failed = err
					if !oo.JSON {
						pp.Line("%-16s  %v", a, err)
					}
					continue
				}
				out = append(out, r)
				if !oo.JSON {
					pp.Line("%-16s  %s  %+d days  %s", a, r.Date, r.DiffDays, r.Level)
				}
			}
			if oo.JSON {
				if err := oo.WriteJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			}
			if failed != nil && len(out) == 0 {
				return oo.HandleError(fmt.Errorf("no dates could be read: %w", failed))
			}
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
