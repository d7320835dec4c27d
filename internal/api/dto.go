package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nordvik/timeledger/internal/ledger"
	"github.com/nordvik/timeledger/internal/models"
)

// AddEntryRequest is the request body for logging new work time.
type AddEntryRequest struct {
	EmployeeID string  `json:"employee_id"`
	ProjectID  string  `json:"project_id"`
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
}

// Validate checks request shape; business rules (known employee, visible
// project, positive hours) belong to the gateway.
func (r AddEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EmployeeID, validation.Required),
		validation.Field(&r.ProjectID, validation.Required),
		validation.Field(&r.Date, validation.Required, validation.Date("2006-01-02")),
	)
}

// UpdateEntryRequest is the request body for overwriting an entry's
// project and hours.
type UpdateEntryRequest struct {
	ProjectID string  `json:"project_id"`
	Hours     float64 `json:"hours"`
}

// Validate checks request shape.
func (r UpdateEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProjectID, validation.Required),
	)
}

// AdjustEntryRequest is the request body for a quick hour adjustment.
type AdjustEntryRequest struct {
	Delta float64 `json:"delta"`
}

// CalendarResponse wraps a month grid with its aggregate total.
type CalendarResponse struct {
	Cells      []models.CalendarCell `json:"cells"`
	MonthTotal float64               `json:"month_total"`
}

// LedgerResponse wraps the full ledger snapshot.
type LedgerResponse struct {
	Ledger ledger.Ledger `json:"ledger"`
	Seq    uint64        `json:"seq"`
}
