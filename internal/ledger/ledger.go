// Package ledger folds resolved time-log records into per-employee,
// per-day hour ledgers, and projects them onto month grids for display.
// The ledger is derived state: it is rebuilt wholesale from the store's
// current record set on every read, never patched in place.
package ledger

import (
	"regexp"
	"strings"

	"github.com/nordvik/timeledger/internal/identity"
	"github.com/nordvik/timeledger/internal/models"
	"github.com/nordvik/timeledger/internal/project"
)

// dateKeyRe is the strict shape a record's date key must match to be
// aggregated. Records with malformed timestamps stay in the store but are
// excluded from the hour buckets.
var dateKeyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// EmployeeLedger is the derived per-identity ledger: hours and entries
// bucketed by date key, plus the all-time total.
type EmployeeLedger struct {
	Identity      identity.Identity                 `json:"-"`
	Key           string                            `json:"key"`
	DisplayName   string                            `json:"display_name"`
	Initials      string                            `json:"initials,omitempty"`
	Color         string                            `json:"color,omitempty"`
	AvatarURL     *string                           `json:"avatar_url,omitempty"`
	Active        bool                              `json:"active"`
	HoursByDate   map[string]float64                `json:"hours_by_date"`
	EntriesByDate map[string][]models.TimeLogRecord `json:"entries_by_date"`
	TotalHours    float64                           `json:"total_hours"`
}

// Ledger maps identity keys to their ledgers.
type Ledger map[string]*EmployeeLedger

// Build produces the full ledger from the store's current state. Active
// employees are seeded even with zero records so the calendar always shows
// all active staff; inactive employees and ad-hoc legacy identities appear
// only when records resolve to them.
func Build(records []models.TimeLogRecord, employees []models.Employee, projects []models.Project) Ledger {
	projects = project.NormalizeAll(projects)
	projectByID := make(map[string]models.Project, len(projects))
	for _, p := range projects {
		projectByID[p.ID] = p
	}

	resolver := identity.NewResolver(employees)
	out := make(Ledger, len(employees))

	for _, e := range employees {
		if e.Active {
			id := identity.Identity{Kind: identity.Known, Employee: e}
			out[id.Key()] = newEntry(id)
		}
	}

	for _, rec := range records {
		id := resolver.Resolve(rec)
		el, ok := out[id.Key()]
		if !ok {
			el = newEntry(id)
			out[id.Key()] = el
		}

		key, ok := DateKey(rec.PointInTime)
		if !ok {
			continue
		}

		rec = refreshSnapshot(rec, projectByID)
		el.HoursByDate[key] += rec.Hours
		el.EntriesByDate[key] = append(el.EntriesByDate[key], rec)
	}

	for _, el := range out {
		total := 0.0
		for _, h := range el.HoursByDate {
			total += h
		}
		el.TotalHours = total
	}
	return out
}

// DateKey extracts the calendar-date portion of an ISO timestamp and
// reports whether it has the strict YYYY-MM-DD shape.
func DateKey(pointInTime string) (string, bool) {
	key := pointInTime
	if i := strings.IndexAny(key, "T "); i >= 0 {
		key = key[:i]
	}
	if !dateKeyRe.MatchString(key) {
		return "", false
	}
	return key, true
}

// refreshSnapshot corrects a record's denormalized project fields from the
// live, normalized project when the reference still resolves. A severed
// reference (project deleted) keeps the snapshot taken at write time.
func refreshSnapshot(rec models.TimeLogRecord, projectByID map[string]models.Project) models.TimeLogRecord {
	if rec.ProjectRef == nil {
		return rec
	}
	p, ok := projectByID[*rec.ProjectRef]
	if !ok {
		return rec
	}
	rec.ProjectName = p.Name
	rec.ProjectColor = p.Color
	return rec
}

func newEntry(id identity.Identity) *EmployeeLedger {
	el := &EmployeeLedger{
		Identity:      id,
		Key:           id.Key(),
		DisplayName:   id.DisplayName(),
		HoursByDate:   make(map[string]float64),
		EntriesByDate: make(map[string][]models.TimeLogRecord),
	}
	if id.Kind == identity.Known {
		el.Initials = id.Employee.Initials
		el.Color = id.Employee.Color
		el.AvatarURL = id.Employee.AvatarURL
		el.Active = id.Employee.Active
	}
	return el
}
