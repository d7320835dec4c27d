// Package identity resolves each raw time-log record to exactly one employee
// identity. Records come in three shapes: a stable employee reference, an
// embedded legacy descriptor blob from the pre-reference era, or nothing
// usable at all. Resolution is an ordered chain of total, side-effect-free
// strategies; a record that defeats every strategy lands on an ad-hoc
// identity rather than an error.
package identity

import (
	"strings"

	"github.com/nordvik/timeledger/internal/models"
)

// Kind tags an Identity as a known employee or a synthesized ad-hoc one.
type Kind int

const (
	// Known means the record resolved to an employee in the store.
	Known Kind = iota
	// AdHoc means no stable reference could be established; the identity
	// is keyed by display name only.
	AdHoc
)

// UnknownName is the display name used when not even a name could be
// extracted from the record.
const UnknownName = "Unknown"

// Identity is the result of resolving one record. Exactly one of Employee
// (Kind == Known) or Name (Kind == AdHoc) carries the identity.
type Identity struct {
	Kind     Kind
	Employee models.Employee
	Name     string
}

// Key returns the ledger key for this identity. Known identities key by
// employee id; ad-hoc identities key by lower-cased display name so two
// spellings of the same legacy name merge into one ledger entry.
func (id Identity) Key() string {
	if id.Kind == Known {
		return "emp:" + id.Employee.ID
	}
	return "name:" + strings.ToLower(id.Name)
}

// DisplayName returns the human-readable name for this identity.
func (id Identity) DisplayName() string {
	if id.Kind == Known {
		return id.Employee.DisplayName
	}
	return id.Name
}

// Resolver resolves records against a fixed set of known employees.
type Resolver struct {
	byID   map[string]models.Employee
	byName map[string]models.Employee // lower-cased display name
}

// NewResolver builds a resolver over the given employees, active and
// inactive alike. Historical records may reference employees that have
// since been deactivated.
func NewResolver(employees []models.Employee) *Resolver {
	r := &Resolver{
		byID:   make(map[string]models.Employee, len(employees)),
		byName: make(map[string]models.Employee, len(employees)),
	}
	for _, e := range employees {
		r.byID[e.ID] = e
		r.byName[strings.ToLower(e.DisplayName)] = e
	}
	return r
}

// Resolve returns exactly one identity for rec. It never fails: malformed
// or missing descriptors degrade to an ad-hoc identity, ultimately keyed
// "Unknown".
func (r *Resolver) Resolve(rec models.TimeLogRecord) Identity {
	if rec.EmployeeRef != nil {
		if emp, ok := r.byID[*rec.EmployeeRef]; ok {
			return Identity{Kind: Known, Employee: emp}
		}
	}

	var candidate string
	if rec.LegacyDescriptor != nil {
		fields, ok := parseDescriptor(*rec.LegacyDescriptor)
		if !ok {
			// Unparseable blob: the raw text is the best name we have.
			candidate = strings.TrimSpace(*rec.LegacyDescriptor)
		} else {
			if ref, ok := embeddedRef(fields); ok {
				if emp, found := r.byID[ref]; found {
					return Identity{Kind: Known, Employee: emp}
				}
			}
			candidate = candidateName(fields)
		}
	}

	if candidate != "" {
		if emp, ok := r.byName[strings.ToLower(candidate)]; ok {
			return Identity{Kind: Known, Employee: emp}
		}
		return Identity{Kind: AdHoc, Name: candidate}
	}
	return Identity{Kind: AdHoc, Name: UnknownName}
}
