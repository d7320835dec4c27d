// Package models defines the domain types for timeledger.
package models

import "time"

// TimeLogRecord is one logged unit of work as stored in the time-log
// collection. Project name and color are denormalized at write time so
// history survives project renames and deletions.
type TimeLogRecord struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	PointInTime      string    `json:"point_in_time"` // ISO 8601; the date portion is the aggregation key
	ProjectRef       *string   `json:"project_ref,omitempty"`
	ProjectName      string    `json:"project_name"`
	ProjectColor     string    `json:"project_color"`
	Hours            float64   `json:"hours"`
	EmployeeRef      *string   `json:"employee_ref,omitempty"`
	LegacyDescriptor *string   `json:"legacy_descriptor,omitempty"`
}

// Employee is a known employee record. Owned by employee administration;
// read-only input here.
type Employee struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Initials    string  `json:"initials"`
	Color       string  `json:"color"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Active      bool    `json:"active"`
}

// Project is a project record. Owned by project administration; read-only
// input here. Type holds one of the two canonical tokens after
// normalization (see internal/project).
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Type   string `json:"type"`
	Hidden bool   `json:"hidden"`
}

// Intensity classifies a calendar day by logged hours.
type Intensity string

const (
	IntensityEmpty   Intensity = "empty"
	IntensityPartial Intensity = "partial"
	IntensityFull    Intensity = "full"
)

// CalendarCell is one cell of a month grid. DayNumber 0 marks a leading
// padding cell before the first day of the month.
type CalendarCell struct {
	DayNumber  int       `json:"day_number"`
	Date       string    `json:"date,omitempty"`
	TotalHours float64   `json:"total_hours"`
	Intensity  Intensity `json:"intensity"`
}
