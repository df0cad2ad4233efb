package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/runner/mcp"
	"tableflip.dev/duedeck/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	var (
		addr    string
		withMCP bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the deck as a read-only JSON API.",
		Long: `Serve answers GET /api/cards, /api/cards/:index, /api/urgent,
/api/calendar, /api/agenda and /api/resolve. Every request rereads the sheet.
With --mcp the MCP streamable HTTP endpoint is served at /mcp as well.`,
		Example: `
duedeck serve
duedeck serve --addr :9000
duedeck serve --mcp
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			env, svc, err := load()
			if err != nil {
				return err
			}
			qs := mcp.NewService(svc, svc.Pipeline.Resolver)
			qs.Now = svc.Now

			r := serve.Runner{
				Service: qs,
				Addr:    addr,
				OnListening: func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "duedeck API for class %d listening on http://%s\n", env.Class, a)
				},
			}
			if withMCP {
				m := mcp.Runner{Source: svc, Resolver: svc.Pipeline.Resolver, Now: svc.Now, Name: "duedeck", Version: version}
				if r.MCP, err = m.HTTPHandler(); err != nil {
					return err
				}
			}
			return r.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Address to listen on.")
	cmd.Flags().BoolVar(&withMCP, "mcp", false, "Also serve MCP at /mcp.")
	topLevel.AddCommand(cmd)
}
