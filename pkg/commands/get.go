package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/commands/options"
	"tableflip.dev/duedeck/pkg/runner/get"
	"tableflip.dev/duedeck/pkg/runner/mcp"
)

func addShow(topLevel *cobra.Command) {
	addGet(topLevel, get.ViewAll, &cobra.Command{
		Use:   "show",
		Short: "Print the urgent list, countdown, cards and calendar once.",
		Example: `
duedeck show
duedeck show --class 2
duedeck show --file tasks.csv --now "2025-3-12 21:00"
`,
	})
}

func addCards(topLevel *cobra.Command) {
	var level string
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List every assignment card with its details.",
		Example: `
duedeck cards
duedeck cards --level overdue --json
`,
		ValidArgs: []string{},
	}
	cmd.Flags().StringVar(&level, "level", "all", "Only cards at this urgency: all, overdue, due-soon or normal.")
	addGet(topLevel, get.ViewCards, cmd, func(g *get.Get) error {
		l, err := mcp.ParseLevel(level)
		if err != nil {
			return err
		}
		g.Level = l
		return nil
	})
}

func addUrgent(topLevel *cobra.Command) {
	addGet(topLevel, get.ViewUrgent, &cobra.Command{
		Use:     "urgent",
		Aliases: []string{"soon"},
		Short:   "List tasks due today or tomorrow.",
		Example: `
duedeck urgent
`,
	})
}

func addCalendar(topLevel *cobra.Command) {
	addGet(topLevel, get.ViewCalendar, &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Print the four week calendar starting the Sunday before last.",
		Example: `
duedeck calendar
`,
	})
}

// addGet wires a read-only view of one refresh.
func addGet(topLevel *cobra.Command, view get.View, cmd *cobra.Command, tweak ...func(*get.Get) error) {
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		env, svc, err := load()
		if err != nil {
			return oo.HandleError(err)
		}
		g := &get.Get{
			Service: svc,
			View:    view,
			Class:   env.Class,
			JSON:    oo.JSON,
			Out:     cmd.OutOrStdout(),
		}
		for _, t := range tweak {
			if err := t(g); err != nil {
				return oo.HandleError(err)
			}
		}
		return oo.HandleError(g.Do(cmd.Context()))
	}
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
