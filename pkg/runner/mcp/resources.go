package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerCardsResource(srv, svc)
	registerUrgentResource(srv, svc)
	registerCalendarResource(srv, svc)
	registerCardTemplate(srv, svc)
}

func registerCardsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"duedeck://cards",
		"Cards",
		mcp.WithResourceDescription("Every assignment card with urgency and details."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		cards, err := svc.ListCards(ctx, nil)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"cards": cards,
			"count": len(cards),
		})
	})
}

func registerUrgentResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"duedeck://urgent",
		"Due Soon",
		mcp.WithResourceDescription("Tasks due today or tomorrow."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dto, err := svc.Urgent(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

func registerCalendarResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"duedeck://calendar",
		"Calendar",
		mcp.WithResourceDescription("Four week calendar of dated tasks."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		grid, err := svc.Calendar(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"title": grid.Title(),
			"grid":  grid,
		})
	})
}

func registerCardTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"duedeck://cards/{index}",
		"Card Details",
		mcp.WithTemplateDescription("A single card by row index."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw := fmt.Sprint(request.Params.Arguments["index"])
		if arr, ok := request.Params.Arguments["index"].([]string); ok && len(arr) > 0 {
			raw = arr[0]
		}
		index, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("card index must be a number, got %q", raw)
		}

		dto, err := svc.CardByIndex(ctx, index)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"card": dto})
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
