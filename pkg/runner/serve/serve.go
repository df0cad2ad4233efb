// Package serve exposes the task deck as a small read-only JSON API.
package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"tableflip.dev/duedeck/pkg/logging"
	mcprunner "tableflip.dev/duedeck/pkg/runner/mcp"
)

// Runner serves the JSON API until its context is cancelled.
type Runner struct {
	Service *mcprunner.Service
	Addr    string
	// MCP, when set, is mounted at MCPPath (default /mcp) for every method.
	MCP     http.Handler
	MCPPath string
	// OnListening is called once the listener is bound.
	OnListening func(net.Addr)
}

// Endpoint is where MCP is mounted.
func (r Runner) Endpoint() string {
	p := strings.TrimSpace(r.MCPPath)
	if p == "" {
		return "/mcp"
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "/mcp"
	}
	return "/" + p
}

var errBadRequest = echo.NewHTTPError(http.StatusBadRequest, "bad request")

// Handler builds the echo app with every route registered.
func (r Runner) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(requestLogger)
	e.HTTPErrorHandler = httpErrorHandler

	a := &api{svc: r.Service}
	e.GET("/healthz", healthz)
	g := e.Group("/api")
	g.GET("/cards", a.cards)
	g.GET("/cards/:index", a.card)
	g.GET("/urgent", a.urgent)
	g.GET("/calendar", a.calendar)
	g.GET("/agenda", a.agenda)
	g.GET("/resolve", a.resolve)

	if r.MCP != nil {
		e.Any(r.Endpoint(), echo.WrapHandler(r.MCP))
	}
	return e
}

// Do listens on Addr and blocks until ctx is done or the server fails.
func (r Runner) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("serve: no service")
	}
	addr := r.Addr
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if r.OnListening != nil {
		r.OnListening(ln.Addr())
	}
	logging.Logger().Info("serve: listening", "addr", ln.Addr().String(), "mcp", r.MCP != nil)

	e := r.Handler()
	e.Listener = ln

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	err = e.Start("")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type api struct {
	svc *mcprunner.Service
}

func healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (a *api) cards(c echo.Context) error {
	level, err := mcprunner.ParseLevel(c.QueryParam("level"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cards, err := a.svc.ListCards(c.Request().Context(), level)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"cards": cards, "count": len(cards)})
}

func (a *api) card(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return errBadRequest
	}
	dto, err := a.svc.CardByIndex(c.Request().Context(), index)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto)
}

func (a *api) urgent(c echo.Context) error {
	dto, err := a.svc.Urgent(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto)
}

func (a *api) calendar(c echo.Context) error {
	grid, err := a.svc.Calendar(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title": grid.Title(),
		"tasks": grid.TaskCount(),
		"grid":  grid,
	})
}

func (a *api) agenda(c echo.Context) error {
	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "days must be a non-negative number")
		}
		days = n
	}
	agenda, err := a.svc.Agenda(c.Request().Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, agenda)
}

func (a *api) resolve(c echo.Context) error {
	text := c.QueryParam("text")
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	resolved, err := a.svc.ResolveDate(text)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, resolved)
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		logging.Logger().Debug("serve: request",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", c.Response().Status,
			"took", time.Since(start),
			"err", err,
		)
		return err
	}
}

func httpErrorHandler(err error, c echo.Context) {
	var (
		code    int
		message string
	)
	var herr *echo.HTTPError
	switch {
	case errors.As(err, &herr):
		code = herr.Code
		if m, ok := herr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	case errors.Is(err, mcprunner.ErrCardNotFound):
		code, message = http.StatusNotFound, err.Error()
	case errors.Is(err, mcprunner.ErrNoDateColumn):
		code, message = http.StatusUnprocessableEntity, err.Error()
	default:
		// Anything else comes from fetching the sheet.
		code, message = http.StatusBadGateway, err.Error()
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": message})
	}
	if err != nil {
		logging.Logger().Error("serve: write error response", "err", err)
	}
}
