package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nordvik/timeledger/internal/models"
	"github.com/nordvik/timeledger/internal/testutil"
	"github.com/nordvik/timeledger/internal/timeservice"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	st := testutil.TestStore(t)
	testutil.Seed(t, st,
		[]models.Employee{{ID: "e1", DisplayName: "Jane Doe", Active: true}},
		[]models.Project{{ID: "p1", Name: "Website", Type: "Kunde"}},
	)
	svc := timeservice.NewService(st, nil)
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are invoked directly.
	var (
		result *mcp.CallToolResult
		err    error
	)
	ctx := context.Background()
	switch name {
	case "list_employees":
		result, err = srv.listEmployees(ctx, req)
	case "list_projects":
		result, err = srv.listProjects(ctx, req)
	case "month_report":
		result, err = srv.monthReport(ctx, req)
	case "day_entries":
		result, err = srv.dayEntries(ctx, req)
	case "log_time":
		result, err = srv.logTime(ctx, req)
	case "adjust_time":
		result, err = srv.adjustTime(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestLogTimeAndMonthReport(t *testing.T) {
	srv := testServer(t)

	res := callTool(t, srv, "log_time", map[string]any{
		"employee_id": "e1", "project_id": "p1", "date": "2025-01-03", "hours": 7.5,
	})
	if res.IsError {
		t.Fatalf("log_time error: %s", resultText(res))
	}

	res = callTool(t, srv, "month_report", map[string]any{
		"key": "emp:e1", "year": 2025, "month": 1,
	})
	if res.IsError {
		t.Fatalf("month_report error: %s", resultText(res))
	}
	text := resultText(res)
	if !strings.Contains(text, "2025-01-03") || !strings.Contains(text, "7.50h") {
		t.Errorf("report = %q", text)
	}
	if !strings.Contains(text, "total\t7.50h") {
		t.Errorf("report missing total: %q", text)
	}
}

func TestLogTime_ValidationSurfaces(t *testing.T) {
	srv := testServer(t)

	res := callTool(t, srv, "log_time", map[string]any{
		"employee_id": "e1", "project_id": "p1", "date": "2025-01-03", "hours": 0,
	})
	if !res.IsError {
		t.Fatal("expected error for zero hours")
	}
}

func TestDayEntries(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "log_time", map[string]any{
		"employee_id": "e1", "project_id": "p1", "date": "2025-01-03", "hours": 2,
	})

	res := callTool(t, srv, "day_entries", map[string]any{
		"key": "emp:e1", "date": "2025-01-03",
	})
	if res.IsError {
		t.Fatalf("day_entries error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), `"hours": 2`) {
		t.Errorf("entries = %q", resultText(res))
	}

	res = callTool(t, srv, "day_entries", map[string]any{
		"key": "emp:e1", "date": "2025-01-04",
	})
	if got := resultText(res); got != "no entries" {
		t.Errorf("empty day = %q", got)
	}
}

func TestListEmployees(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "list_employees", nil)
	text := resultText(res)
	if !strings.Contains(text, "emp:e1") || !strings.Contains(text, "Jane Doe") {
		t.Errorf("list = %q", text)
	}
}

func TestMonthReport_UnknownKey(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "month_report", map[string]any{
		"key": "emp:ghost", "year": 2025, "month": 1,
	})
	if !res.IsError {
		t.Error("expected error for unknown ledger key")
	}
}
