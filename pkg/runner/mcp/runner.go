package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/duedeck/pkg/logging"
	"tableflip.dev/duedeck/pkg/timeutil"
)

// Runner builds the MCP server for one task source. Stdio is served here;
// the HTTP transport is a handler for the echo server in package serve.
type Runner struct {
	Source   Refresher
	Resolver timeutil.Resolver
	Now      timeutil.Clock
	Name     string
	Version  string

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

const instructions = "Read the assignment deck built from a shared task sheet. " +
	"Tools list cards by urgency, the tasks due today or tomorrow, a four week calendar and a day by day agenda. " +
	"Every call reloads the sheet."

// NewServer registers every tool and resource on a fresh server.
func (r Runner) NewServer() *server.MCPServer {
	name, version := r.Name, r.Version
	if name == "" {
		name = "duedeck"
	}
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	svc := NewService(r.Source, r.Resolver)
	svc.Now = r.Now
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

// HTTPHandler serves the streamable HTTP transport.
func (r Runner) HTTPHandler() (http.Handler, error) {
	if r.Source == nil {
		return nil, errors.New("mcp: no task source")
	}
	return server.NewStreamableHTTPServer(r.NewServer()), nil
}

// Do serves MCP over stdio until ctx is done or the client hangs up.
func (r Runner) Do(ctx context.Context) error {
	if r.Source == nil {
		return errors.New("mcp: no task source")
	}
	in, out := r.Stdin, r.Stdout
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	logging.Logger().Info("mcp: serving on stdio")
	err := server.NewStdioServer(r.NewServer()).Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("mcp: stdio: %w", err)
}
