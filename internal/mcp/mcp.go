// Package mcp exposes the household organizer as an MCP server so agent
// clients can issue commands and read household state over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jhenrym/famlife/internal/parser"
	"github.com/jhenrym/famlife/internal/storage"
)

// Deps holds dependencies for the MCP server.
type Deps struct {
	Store      storage.Store
	Dispatcher *parser.Dispatcher
}

// NewServer creates an MCP server with all famlife tools and resources
// registered.
func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"famlife",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("famlife: household tasks, groceries, and appointments driven by plain-language commands."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("household_command",
			mcp.WithDescription("Run a plain-language household command, e.g. \"add milk and eggs to groceries\" or \"remind me to call the dentist tomorrow\"."),
			mcp.WithString("message", mcp.Description("The command text"), mcp.Required()),
		),
		mcpCommand(deps),
	)

	s.AddTool(
		mcp.NewTool("daily_summary",
			mcp.WithDescription("Counts of tasks due today, appointments today, groceries needed, and overdue tasks."),
		),
		mcpSummary(deps),
	)

	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List active tasks, optionally filtered by category or assignee."),
			mcp.WithString("category", mcp.Description("Category filter, e.g. home, automotive")),
			mcp.WithString("assigned_to", mcp.Description("Assignee filter")),
		),
		mcpListTasks(deps),
	)

	s.AddTool(
		mcp.NewTool("grocery_list",
			mcp.WithDescription("List grocery items by status (needed or purchased; default needed)."),
			mcp.WithString("status", mcp.Description("needed or purchased")),
		),
		mcpGroceries(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"household://summary",
			"Household Summary",
			mcp.WithResourceDescription("Today's household counters as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceSummary(deps),
	)

	return s
}

func mcpCommand(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		cmd, res, err := deps.Dispatcher.Process(message, time.Now())
		if err != nil {
			return mcpError(fmt.Sprintf("command failed: %v", err)), nil
		}

		b, err := json.Marshal(map[string]any{"parsed": cmd, "result": res})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSummary(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sum, err := deps.Store.DailySummary()
		if err != nil {
			return mcpError(fmt.Sprintf("summary failed: %v", err)), nil
		}
		b, err := json.Marshal(sum)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListTasks(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := storage.TaskFilter{
			Status:     storage.TaskActive,
			Category:   req.GetString("category", ""),
			AssignedTo: req.GetString("assigned_to", ""),
		}

		tasks, err := deps.Store.ListTasks(filter)
		if err != nil {
			return mcpError(fmt.Sprintf("listing tasks failed: %v", err)), nil
		}
		if tasks == nil {
			tasks = []storage.Task{}
		}

		b, err := json.Marshal(tasks)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal tasks: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGroceries(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := req.GetString("status", storage.GroceryNeeded)
		if status != storage.GroceryNeeded && status != storage.GroceryPurchased {
			return mcpError("status must be needed or purchased"), nil
		}

		items, err := deps.Store.ListGroceries(status)
		if err != nil {
			return mcpError(fmt.Sprintf("listing groceries failed: %v", err)), nil
		}
		if items == nil {
			items = []storage.GroceryItem{}
		}

		b, err := json.Marshal(items)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal items: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceSummary(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sum, err := deps.Store.DailySummary()
		if err != nil {
			return nil, fmt.Errorf("failed to load summary: %w", err)
		}

		b, err := json.Marshal(sum)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal summary: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
