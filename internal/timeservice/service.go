// Package timeservice is the mutation gateway over the record store. Every
// mutation runs as validate, single store write, full reload: the ledger is
// never patched in place, only rebuilt from a fresh read of all three
// collections. A monotonically increasing reload sequence discards stale
// reloads so two overlapping mutations cannot leave the snapshot reflecting
// the older read.
package timeservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nordvik/timeledger/internal/apperr"
	"github.com/nordvik/timeledger/internal/ledger"
	"github.com/nordvik/timeledger/internal/models"
	"github.com/nordvik/timeledger/internal/project"
	"github.com/nordvik/timeledger/internal/store"
)

// Snapshot is the state produced by one successful reload.
type Snapshot struct {
	Ledger    ledger.Ledger
	Records   []models.TimeLogRecord
	Employees []models.Employee
	Projects  []models.Project // normalized
	Seq       uint64
}

// Service coordinates store mutations and ledger rebuilds.
type Service struct {
	store  store.Store
	logger *slog.Logger

	// onReload, when set, fires after each successful reload.
	onReload func(seq uint64)

	seq atomic.Uint64

	mu   sync.RWMutex
	snap Snapshot
}

// NewService creates a service over the given store.
func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// OnReload registers a callback fired after every applied reload.
func (s *Service) OnReload(fn func(seq uint64)) {
	s.onReload = fn
}

// Snapshot returns the state from the last successful reload.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Reload fetches all three collections and rebuilds the ledger from
// scratch. The three reads run concurrently. If a newer reload has already
// been applied by the time this one returns, its result is discarded.
func (s *Service) Reload(ctx context.Context) error {
	seq := s.seq.Add(1)

	var (
		records   []models.TimeLogRecord
		employees []models.Employee
		projects  []models.Project
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListTimeLogs(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		employees, err = s.store.ListEmployees(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.store.ListProjects(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	built := ledger.Build(records, employees, projects)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.snap.Seq {
		s.logger.Debug("discarding stale reload",
			slog.Uint64("seq", seq), slog.Uint64("applied", s.snap.Seq))
		return nil
	}
	s.snap = Snapshot{
		Ledger:    built,
		Records:   records,
		Employees: employees,
		Projects:  project.NormalizeAll(projects),
		Seq:       seq,
	}
	if s.onReload != nil {
		s.onReload(seq)
	}
	return nil
}

// AddEntry validates and stores a new time-log record, then reloads.
// The employee must be known, the project known and not hidden, and hours
// strictly positive; otherwise the call fails before any write.
func (s *Service) AddEntry(ctx context.Context, employeeID, projectID, date string, hours float64) (models.TimeLogRecord, error) {
	if _, err := s.lookupEmployee(employeeID); err != nil {
		return models.TimeLogRecord{}, err
	}
	p, err := s.lookupProject(projectID)
	if err != nil {
		return models.TimeLogRecord{}, err
	}
	if hours <= 0 {
		return models.TimeLogRecord{}, apperr.Validationf("hours must be positive, got %v", hours)
	}
	if _, ok := ledger.DateKey(date); !ok {
		return models.TimeLogRecord{}, apperr.Validationf("date %q is not a valid YYYY-MM-DD day", date)
	}

	rec, err := s.store.InsertTimeLog(ctx, store.NewTimeLog{
		PointInTime:  date,
		ProjectRef:   &p.ID,
		ProjectName:  p.Name,
		ProjectColor: p.Color,
		Hours:        hours,
		EmployeeRef:  &employeeID,
	})
	if err != nil {
		return models.TimeLogRecord{}, err
	}

	if err := s.Reload(ctx); err != nil {
		return rec, err
	}
	return rec, nil
}

// UpdateEntry overwrites the target record's project and hours along with
// the denormalized project snapshot, then reloads. Hours may be zero here
// (QuickAdjust clamps to zero) but never negative.
func (s *Service) UpdateEntry(ctx context.Context, entryID, projectID string, hours float64) (models.TimeLogRecord, error) {
	p, err := s.lookupProject(projectID)
	if err != nil {
		return models.TimeLogRecord{}, err
	}
	if hours < 0 {
		return models.TimeLogRecord{}, apperr.Validationf("hours must not be negative, got %v", hours)
	}

	updated, err := s.store.UpdateTimeLog(ctx, entryID, store.TimeLogPatch{
		ProjectRef:   &p.ID,
		ProjectName:  &p.Name,
		ProjectColor: &p.Color,
		Hours:        &hours,
	})
	if err != nil {
		return models.TimeLogRecord{}, err
	}

	if err := s.Reload(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// DeleteEntry removes the record by id, then reloads.
func (s *Service) DeleteEntry(ctx context.Context, entryID string) error {
	if err := s.store.DeleteTimeLog(ctx, entryID); err != nil {
		return err
	}
	return s.Reload(ctx)
}

// QuickAdjust bumps an entry's hours by delta, clamping at zero. With a
// live project reference it behaves exactly like UpdateEntry; a record
// whose project has been severed gets an hours-only patch so the
// denormalized snapshot survives.
func (s *Service) QuickAdjust(ctx context.Context, entry models.TimeLogRecord, delta float64) (models.TimeLogRecord, error) {
	hours := entry.Hours + delta
	if hours < 0 {
		hours = 0
	}
	if entry.ProjectRef != nil {
		if _, err := s.lookupProject(*entry.ProjectRef); err == nil {
			return s.UpdateEntry(ctx, entry.ID, *entry.ProjectRef, hours)
		}
	}

	updated, err := s.store.UpdateTimeLog(ctx, entry.ID, store.TimeLogPatch{Hours: &hours})
	if err != nil {
		return models.TimeLogRecord{}, err
	}
	if err := s.Reload(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// FindEntry returns the record with the given id from the current
// snapshot.
func (s *Service) FindEntry(id string) (models.TimeLogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.snap.Records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.TimeLogRecord{}, fmt.Errorf("entry %s: %w", id, apperr.ErrNotFound)
}

func (s *Service) lookupEmployee(id string) (models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.snap.Employees {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Employee{}, apperr.Validationf("unknown employee %q", id)
}

func (s *Service) lookupProject(id string) (models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.snap.Projects {
		if p.ID == id {
			if p.Hidden {
				return models.Project{}, apperr.Validationf("project %q is hidden", id)
			}
			return p, nil
		}
	}
	return models.Project{}, apperr.Validationf("unknown project %q", id)
}
