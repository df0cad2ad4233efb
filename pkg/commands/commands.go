package commands

import (
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/commands/options"
	"tableflip.dev/duedeck/pkg/logging"
)

var (
	oo      = &options.OutputOptions{}
	so      = &options.SourceOptions{}
	nowOpts = &options.NowOptions{}
	verbose bool
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "duedeck",
		Short: options.Wrap80("Assignment deadlines from a shared sheet, as cards, a calendar and a countdown."),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.UseText(os.Stderr, verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr.")
	options.AddSourceArgs(cmd, so)
	_ = cmd.RegisterFlagCompletionFunc("class", classCompletions)
	options.AddNowArgs(cmd, nowOpts)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addShow(topLevel)
	addCards(topLevel)
	addUrgent(topLevel)
	addCalendar(topLevel)
	addAgenda(topLevel)
	addCountdown(topLevel)
	addResolve(topLevel)
	addUI(topLevel)
	addWatch(topLevel)
	addServe(topLevel)
	addMCP(topLevel)
	addConfig(topLevel)
	addInfo(topLevel)
	addKey(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// load reads settings and builds the service for the selected class.
func load() (*options.Env, *app.Service, error) {
	env, err := so.Load()
	if err != nil {
		return nil, nil, err
	}
	clock, err := nowOpts.Clock()
	if err != nil {
		return nil, nil, err
	}
	svc, err := env.Service(env.Class)
	if err != nil {
		return nil, nil, err
	}
	svc.Now = clock
	return env, svc, nil
}
