package commands

import (
	"fmt"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/runner/mcp"
	"tableflip.dev/duedeck/pkg/runner/serve"
)

func addMCP(topLevel *cobra.Command) {
	var (
		transport string
		addr      string
		path      string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start a Model Context Protocol server for the deck.",
		Long: `Expose the assignment cards, the urgent list, the calendar and the agenda
as read-only MCP tools and resources. The stdio transport is meant to be
launched by an MCP client; the http transport also serves the JSON API of
"duedeck serve" next to the MCP endpoint.`,
		Example: `
duedeck mcp
duedeck mcp --transport http --addr 127.0.0.1:8090
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			_, svc, err := load()
			if err != nil {
				return err
			}
			r := mcp.Runner{
				Source:   svc,
				Resolver: svc.Pipeline.Resolver,
				Now:      svc.Now,
				Name:     "duedeck",
				Version:  version,
			}

			switch strings.ToLower(strings.TrimSpace(transport)) {
			case "", "stdio":
				return r.Do(cmd.Context())
			case "http":
				h, err := r.HTTPHandler()
				if err != nil {
					return err
				}
				qs := mcp.NewService(svc, svc.Pipeline.Resolver)
				qs.Now = svc.Now
				sr := serve.Runner{Service: qs, Addr: addr, MCP: h, MCPPath: path}
				sr.OnListening = func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP endpoint http://%s%s\n", a, sr.Endpoint())
				}
				return sr.Do(cmd.Context())
			default:
				return fmt.Errorf("unsupported transport %q, expected stdio or http", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport to use: stdio or http.")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Address to listen on for the http transport.")
	cmd.Flags().StringVar(&path, "path", "/mcp", "Endpoint path for the http transport.")

	topLevel.AddCommand(cmd)
}
