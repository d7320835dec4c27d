package ledger

import (
	"reflect"
	"testing"

	"github.com/nordvik/timeledger/internal/models"
	"github.com/nordvik/timeledger/internal/project"
)

func strPtr(s string) *string { return &s }

var (
	testEmployees = []models.Employee{
		{ID: "e1", DisplayName: "Jane Doe", Active: true},
		{ID: "e2", DisplayName: "Ola Nordmann", Active: true},
		{ID: "e3", DisplayName: "Former Employee", Active: false},
	}
	testProjects = []models.Project{
		{ID: "p1", Name: "Website", Type: "Kunde"},
		{ID: "p2", Name: "Ops", Type: "internal"},
	}
)

func rec(id, employee, date string, hours float64) models.TimeLogRecord {
	return models.TimeLogRecord{
		ID:          id,
		PointInTime: date,
		Hours:       hours,
		EmployeeRef: strPtr(employee),
		ProjectRef:  strPtr("p1"),
	}
}

func TestBuild_SeedsActiveEmployees(t *testing.T) {
	l := Build(nil, testEmployees, testProjects)
	if len(l) != 2 {
		t.Fatalf("len(ledger) = %d, want 2 active employees", len(l))
	}
	for _, key := range []string{"emp:e1", "emp:e2"} {
		el, ok := l[key]
		if !ok {
			t.Fatalf("missing seeded entry %s", key)
		}
		if el.TotalHours != 0 || len(el.EntriesByDate) != 0 {
			t.Errorf("%s not empty: %+v", key, el)
		}
	}
	if _, ok := l["emp:e3"]; ok {
		t.Error("inactive employee seeded without records")
	}
}

func TestBuild_InactiveEmployeeWithRecords(t *testing.T) {
	l := Build([]models.TimeLogRecord{rec("t1", "e3", "2025-01-03", 4)}, testEmployees, testProjects)
	el, ok := l["emp:e3"]
	if !ok {
		t.Fatal("inactive employee with records missing from ledger")
	}
	if el.TotalHours != 4 {
		t.Errorf("total = %v, want 4", el.TotalHours)
	}
}

func TestBuild_SumInvariant(t *testing.T) {
	records := []models.TimeLogRecord{
		rec("t1", "e1", "2025-01-03", 2.5),
		rec("t2", "e1", "2025-01-03", 5),
		rec("t3", "e1", "2025-01-04", 3),
		rec("t4", "e2", "2025-01-03", 7.5),
	}
	l := Build(records, testEmployees, testProjects)
	for key, el := range l {
		for date, hours := range el.HoursByDate {
			sum := 0.0
			for _, e := range el.EntriesByDate[date] {
				sum += e.Hours
			}
			if sum != hours {
				t.Errorf("%s %s: hoursByDate = %v, sum(entries) = %v", key, date, hours, sum)
			}
		}
	}
	if got := l["emp:e1"].HoursByDate["2025-01-03"]; got != 7.5 {
		t.Errorf("e1 2025-01-03 = %v, want 7.5", got)
	}
	if got := l["emp:e1"].TotalHours; got != 10.5 {
		t.Errorf("e1 total = %v, want 10.5", got)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	records := []models.TimeLogRecord{
		rec("t1", "e1", "2025-01-03", 2.5),
		rec("t2", "e2", "2025-01-04", 3),
	}
	a := Build(records, testEmployees, testProjects)
	b := Build(records, testEmployees, testProjects)
	if !reflect.DeepEqual(a, b) {
		t.Error("two builds from the same inputs differ")
	}
}

func TestBuild_MalformedDateExcluded(t *testing.T) {
	records := []models.TimeLogRecord{
		rec("t1", "e1", "2025-01-03T09:30:00Z", 2),
		rec("t2", "e1", "03.01.2025", 4),
		rec("t3", "e1", "not a date", 4),
		rec("t4", "e1", "2025-1-3", 4),
	}
	l := Build(records, testEmployees, testProjects)
	el := l["emp:e1"]
	if el.TotalHours != 2 {
		t.Errorf("total = %v, want only the well-formed record's 2", el.TotalHours)
	}
	if len(el.EntriesByDate["2025-01-03"]) != 1 {
		t.Errorf("entries for 2025-01-03 = %d, want 1", len(el.EntriesByDate["2025-01-03"]))
	}
}

func TestBuild_LegacyDescriptorsMergeByName(t *testing.T) {
	records := []models.TimeLogRecord{
		{ID: "t1", PointInTime: "2025-01-03", Hours: 2, LegacyDescriptor: strPtr(`{"name": "Jane Doe"}`)},
		{ID: "t2", PointInTime: "2025-01-04", Hours: 3, LegacyDescriptor: strPtr(`{"email": "jane.doe@example.com", "name": "JANE DOE"}`)},
		{ID: "t3", PointInTime: "2025-01-04", Hours: 1, EmployeeRef: strPtr("e1")},
	}
	l := Build(records, testEmployees, testProjects)
	el, ok := l["emp:e1"]
	if !ok {
		t.Fatal("merged entry missing")
	}
	if el.TotalHours != 6 {
		t.Errorf("total = %v, want all three records merged into 6", el.TotalHours)
	}
	for key := range l {
		if key != "emp:e1" && key != "emp:e2" {
			t.Errorf("unexpected extra ledger entry %s", key)
		}
	}
}

func TestBuild_AdHocIdentity(t *testing.T) {
	records := []models.TimeLogRecord{
		{ID: "t1", PointInTime: "2025-01-03", Hours: 2, LegacyDescriptor: strPtr("Unparseable text")},
	}
	l := Build(records, testEmployees, testProjects)
	el, ok := l["name:unparseable text"]
	if !ok {
		t.Fatal("ad-hoc entry missing")
	}
	if el.DisplayName != "Unparseable text" {
		t.Errorf("display name = %q", el.DisplayName)
	}
	if el.Active {
		t.Error("ad-hoc identity marked active")
	}
}

func TestBuild_OrphanedProjectKeepsSnapshot(t *testing.T) {
	records := []models.TimeLogRecord{
		{
			ID: "t1", PointInTime: "2025-01-03", Hours: 2, EmployeeRef: strPtr("e1"),
			ProjectRef: strPtr("deleted-project"), ProjectName: "Old Project", ProjectColor: "#ABCDEF",
		},
	}
	l := Build(records, testEmployees, testProjects)
	got := l["emp:e1"].EntriesByDate["2025-01-03"][0]
	if got.ProjectName != "Old Project" || got.ProjectColor != "#ABCDEF" {
		t.Errorf("orphaned record lost its snapshot: %+v", got)
	}
}

func TestBuild_LiveProjectRefreshesSnapshot(t *testing.T) {
	records := []models.TimeLogRecord{
		{
			ID: "t1", PointInTime: "2025-01-03", Hours: 2, EmployeeRef: strPtr("e1"),
			ProjectRef: strPtr("p2"), ProjectName: "Stale Name", ProjectColor: "#STALE0",
		},
	}
	l := Build(records, testEmployees, testProjects)
	got := l["emp:e1"].EntriesByDate["2025-01-03"][0]
	if got.ProjectName != "Ops" {
		t.Errorf("project name = %q, want refreshed %q", got.ProjectName, "Ops")
	}
	if got.ProjectColor != project.ColorInternal {
		t.Errorf("project color = %q, want canonical %q", got.ProjectColor, project.ColorInternal)
	}
}

func TestDateKey(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2025-01-03", "2025-01-03", true},
		{"2025-01-03T09:30:00Z", "2025-01-03", true},
		{"2025-01-03 09:30:00", "2025-01-03", true},
		{"2025-1-3", "", false},
		{"03.01.2025", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := DateKey(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("DateKey(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
