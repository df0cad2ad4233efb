package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/commands/options"
	"tableflip.dev/duedeck/pkg/store"
)

func addConfig(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect settings and the saved preferences.",
		Long: `Settings come from .duedeck.yaml, DUEDECK_* variables and flags.
Preferences are values saved between runs, such as the webhook address
(webhook_url) or the last class shown (class).`,
		Example: `
duedeck config show
duedeck config set webhook_url https://script.google.com/macros/s/.../exec
duedeck config get class
duedeck config unset webhook_url
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := so.Load()
			if err != nil {
				return err
			}
			return oo.WriteJSON(cmd.OutOrStdout(), env.Settings)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved preferences.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := so.Load()
			if err != nil {
				return oo.HandleError(err)
			}
			all := env.Prefs.All(cmd.Context())
			if oo.JSON {
				return oo.WriteJSON(cmd.OutOrStdout(), all)
			}
			for _, k := range env.Prefs.Keys(cmd.Context()) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, all[k])
			}
			return nil
		},
	}
	options.AddOutputArg(list, oo)

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one saved preference.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := so.Load()
			if err != nil {
				return err
			}
			v, err := env.Prefs.Get(args[0])
			if errors.Is(err, store.ErrPrefNotFound) {
				return fmt.Errorf("%s is not set", args[0])
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a preference.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := so.Load()
			if err != nil {
				return err
			}
			return env.Prefs.Set(args[0], args[1])
		},
	}

	unset := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a saved preference.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := so.Load()
			if err != nil {
				return err
			}
			return env.Prefs.Delete(args[0])
		},
	}

	cmd.AddCommand(show, list, get, set, unset)
	topLevel.AddCommand(cmd)
}
