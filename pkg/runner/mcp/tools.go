package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListCardsTool(srv, svc)
	registerGetCardTool(srv, svc)
	registerListUrgentTool(srv, svc)
	registerCalendarTool(srv, svc)
	registerAgendaTool(srv, svc)
	registerResolveDateTool(srv, svc)
}

func registerListCardsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_cards",
		mcp.WithDescription("List the assignment cards built from the task sheet."),
		mcp.WithString("level",
			mcp.Description("Only return cards at this urgency level."),
			mcp.Enum("all", "overdue", "due-soon", "normal"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Level string `json:"level"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		level, err := ParseLevel(args.Level)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		cards, err := svc.ListCards(ctx, level)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"cards": cards,
			"count": len(cards),
		})
	})
}

func registerGetCardTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_card",
		mcp.WithDescription("Fetch a single card, front and back, by its row index."),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero based row index of the card."),
			mcp.Min(0),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index, err := request.RequireInt("index")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.CardByIndex(ctx, index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerListUrgentTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_urgent",
		mcp.WithDescription("List tasks due today or tomorrow and the end-of-day countdown."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.Urgent(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCalendarTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"calendar",
		mcp.WithDescription("Return the four week calendar starting the Sunday before last."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		grid, err := svc.Calendar(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"title": grid.Title(),
			"tasks": grid.TaskCount(),
			"grid":  grid,
		})
	})
}

func registerAgendaTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"agenda",
		mcp.WithDescription("Group dated tasks by day from today through the next days."),
		mcp.WithNumber("days",
			mcp.Description("How many days ahead to include (default 7)."),
			mcp.Min(0),
			mcp.Max(60),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days := request.GetInt("days", 7)
		agenda, err := svc.Agenda(ctx, days)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(agenda)
	})
}

func registerResolveDateTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"resolve_date",
		mcp.WithDescription("Read a free-form sheet date such as 3/14, 2025.03.10 or 12월 3일."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Date text as it appears in the sheet."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		resolved, err := svc.ResolveDate(text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(resolved)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
