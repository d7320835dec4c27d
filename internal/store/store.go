// Package store abstracts the record-oriented remote store the engine is
// rendered against. Two implementations exist: a REST client for the hosted
// backend and a SQLite store for self-hosted and test use.
package store

import (
	"context"

	"github.com/nordvik/timeledger/internal/models"
)

// TimeLogPatch carries the fields an update may overwrite. Nil pointers
// leave the stored value untouched.
type TimeLogPatch struct {
	ProjectRef   *string  `json:"project_ref,omitempty"`
	ProjectName  *string  `json:"project_name,omitempty"`
	ProjectColor *string  `json:"project_color,omitempty"`
	Hours        *float64 `json:"hours,omitempty"`
}

// NewTimeLog is the shape of an insert; the store assigns id and created_at.
type NewTimeLog struct {
	PointInTime      string  `json:"point_in_time"`
	ProjectRef       *string `json:"project_ref,omitempty"`
	ProjectName      string  `json:"project_name"`
	ProjectColor     string  `json:"project_color"`
	Hours            float64 `json:"hours"`
	EmployeeRef      *string `json:"employee_ref,omitempty"`
	LegacyDescriptor *string `json:"legacy_descriptor,omitempty"`
}

// Store is the record-store contract the engine consumes. Time logs are the
// only collection it writes; employees and projects are read-only inputs
// owned by external administration tools.
type Store interface {
	ListTimeLogs(ctx context.Context) ([]models.TimeLogRecord, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	ListProjects(ctx context.Context) ([]models.Project, error)

	InsertTimeLog(ctx context.Context, rec NewTimeLog) (models.TimeLogRecord, error)
	UpdateTimeLog(ctx context.Context, id string, patch TimeLogPatch) (models.TimeLogRecord, error)
	DeleteTimeLog(ctx context.Context, id string) error
}
