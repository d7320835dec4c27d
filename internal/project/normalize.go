// Package project canonicalizes historical project type tokens and their
// display colors. Older records in the store carry localized tokens
// ("Internt", "Kunde") next to their English counterparts; everything
// collapses to two canonical types on read.
package project

import "github.com/nordvik/timeledger/internal/models"

// Canonical type tokens.
const (
	TypeInternal = "Internal"
	TypeCustomer = "Customer"
)

// Fixed display colors per canonical type. Stored colors drift (older
// writers persisted whatever the UI palette was at the time), so the
// canonical color always wins on read.
const (
	ColorInternal = "#6366F1"
	ColorCustomer = "#10B981"
)

// Normalize returns a copy of p with its type token collapsed to one of the
// two canonical values and its color overwritten with the canonical color
// for that type. Unknown or empty tokens default to Customer.
func Normalize(p models.Project) models.Project {
	switch p.Type {
	case TypeInternal, "internal", "Internt":
		p.Type = TypeInternal
		p.Color = ColorInternal
	default:
		p.Type = TypeCustomer
		p.Color = ColorCustomer
	}
	return p
}

// NormalizeAll normalizes every project in the slice, leaving the input
// untouched.
func NormalizeAll(projects []models.Project) []models.Project {
	out := make([]models.Project, len(projects))
	for i, p := range projects {
		out[i] = Normalize(p)
	}
	return out
}
