package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestREST_ListAndInsert(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-Api-Key")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/employees":
			_, _ = w.Write([]byte(`[{"id":"e1","display_name":"Jane Doe","active":true}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/timelogs":
			var in NewTimeLog
			_ = json.NewDecoder(r.Body).Decode(&in)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":            "srv-1",
				"point_in_time": in.PointInTime,
				"hours":         in.Hours,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "secret", nil)
	ctx := context.Background()

	employees, err := c.ListEmployees(ctx)
	if err != nil {
		t.Fatalf("ListEmployees: %v", err)
	}
	if len(employees) != 1 || employees[0].DisplayName != "Jane Doe" {
		t.Errorf("employees = %+v", employees)
	}
	if gotAuth != "secret" {
		t.Errorf("api key header = %q", gotAuth)
	}

	rec, err := c.InsertTimeLog(ctx, NewTimeLog{PointInTime: "2025-01-03", Hours: 2})
	if err != nil {
		t.Fatalf("InsertTimeLog: %v", err)
	}
	if rec.ID != "srv-1" || rec.Hours != 2 {
		t.Errorf("inserted = %+v", rec)
	}
}

func TestREST_ErrorStatusIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "", nil)
	if _, err := c.ListProjects(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestREST_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "", nil)
	if _, err := c.ListTimeLogs(context.Background()); err != nil {
		t.Fatalf("ListTimeLogs after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestREST_DeleteEncodesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "", nil)
	if err := c.DeleteTimeLog(context.Background(), "a/b"); err != nil {
		t.Fatalf("DeleteTimeLog: %v", err)
	}
	if gotPath != "/timelogs/a%2Fb" {
		t.Errorf("path = %q", gotPath)
	}
}
