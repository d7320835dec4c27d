// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the time ledger to LLM tooling via stdio transport. Mutating
// tools go through the same gateway as the HTTP API, so validation and the
// post-write reload behave identically.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nordvik/timeledger/internal/ledger"
	"github.com/nordvik/timeledger/internal/timeservice"
)

// Server wraps the MCP server with timeledger tools.
type Server struct {
	mcp *server.MCPServer
	svc *timeservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *timeservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"TimeLedger",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_employees",
		mcp.WithDescription("List all known employees with their ledger keys."),
	), s.listEmployees)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects with canonical type and color."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("month_report",
		mcp.WithDescription("Per-day hours for one employee in a given month, plus the month total."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Ledger key (e.g. emp:<id> or name:<lowercased name>)")),
		mcp.WithNumber("year", mcp.Required(), mcp.Description("Four-digit year")),
		mcp.WithNumber("month", mcp.Required(), mcp.Description("Month 1-12")),
	), s.monthReport)

	s.mcp.AddTool(mcp.NewTool("day_entries",
		mcp.WithDescription("List the time-log entries behind one employee's day."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Ledger key")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day in YYYY-MM-DD form")),
	), s.dayEntries)

	s.mcp.AddTool(mcp.NewTool("log_time",
		mcp.WithDescription("Log work time for an employee on a project. Hours must be positive "+
			"and the project must not be hidden."),
		mcp.WithString("employee_id", mcp.Required(), mcp.Description("Employee id")),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day in YYYY-MM-DD form")),
		mcp.WithNumber("hours", mcp.Required(), mcp.Description("Hours worked, > 0")),
	), s.logTime)

	s.mcp.AddTool(mcp.NewTool("adjust_time",
		mcp.WithDescription("Adjust an existing entry's hours by a delta. The result never goes below zero."),
		mcp.WithString("entry_id", mcp.Required(), mcp.Description("Time-log entry id")),
		mcp.WithNumber("delta", mcp.Required(), mcp.Description("Hours to add (negative to subtract)")),
	), s.adjustTime)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listEmployees(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.svc.Snapshot()
	var lines []string
	for _, e := range snap.Employees {
		status := "active"
		if !e.Active {
			status = "inactive"
		}
		lines = append(lines, fmt.Sprintf("emp:%s\t%s\t%s", e.ID, e.DisplayName, status))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no employees"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listProjects(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.svc.Snapshot()
	out, _ := json.MarshalIndent(snap.Projects, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) monthReport(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	year, err := req.RequireInt("year")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	month, err := req.RequireInt("month")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if month < 1 || month > 12 {
		return mcp.NewToolResultError("month must be 1-12"), nil
	}

	el, ok := s.svc.Snapshot().Ledger[key]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown ledger key: %s", key)), nil
	}

	cells := ledger.MonthGrid(el, year, time.Month(month))
	var lines []string
	for _, c := range cells {
		if c.DayNumber == 0 || c.TotalHours == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\t%.2fh\t%s", c.Date, c.TotalHours, c.Intensity))
	}
	lines = append(lines, fmt.Sprintf("total\t%.2fh", ledger.MonthTotal(el, year, time.Month(month))))
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) dayEntries(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	el, ok := s.svc.Snapshot().Ledger[key]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown ledger key: %s", key)), nil
	}
	entries := el.EntriesByDate[date]
	if len(entries) == 0 {
		return mcp.NewToolResultText("no entries"), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) logTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	employeeID, err := req.RequireString("employee_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hours, err := req.RequireFloat("hours")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := s.svc.AddEntry(ctx, employeeID, projectID, date, hours)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("logged %.2fh on %s (entry %s)", rec.Hours, rec.PointInTime, rec.ID)), nil
}

func (s *Server) adjustTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entryID, err := req.RequireString("entry_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	delta, err := req.RequireFloat("delta")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry, err := s.svc.FindEntry(entryID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.QuickAdjust(ctx, entry, delta)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("entry %s now %.2fh", rec.ID, rec.Hours)), nil
}
