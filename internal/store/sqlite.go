package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nordvik/timeledger/internal/apperr"
	"github.com/nordvik/timeledger/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS time_logs (
	id                TEXT PRIMARY KEY,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	point_in_time     TEXT NOT NULL,
	project_ref       TEXT,
	project_name      TEXT NOT NULL DEFAULT '',
	project_color     TEXT NOT NULL DEFAULT '',
	hours             REAL NOT NULL DEFAULT 0,
	employee_ref      TEXT,
	legacy_descriptor TEXT
);

CREATE TABLE IF NOT EXISTS employees (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	initials     TEXT NOT NULL DEFAULT '',
	color        TEXT NOT NULL DEFAULT '',
	avatar_url   TEXT,
	active       INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS projects (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL DEFAULT '',
	color  TEXT NOT NULL DEFAULT '',
	type   TEXT NOT NULL DEFAULT '',
	hidden INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_time_logs_employee ON time_logs(employee_ref);
CREATE INDEX IF NOT EXISTS idx_time_logs_point ON time_logs(point_in_time);
`

// SQLite implements Store backed by a local SQLite database.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// ListTimeLogs returns every time-log record ordered by point in time,
// then creation time.
func (s *SQLite) ListTimeLogs(ctx context.Context) ([]models.TimeLogRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, created_at, point_in_time, project_ref, project_name,
		       project_color, hours, employee_ref, legacy_descriptor
		FROM time_logs
		ORDER BY point_in_time, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list time logs: %w", err)
	}
	defer rows.Close()

	var out []models.TimeLogRecord
	for rows.Next() {
		var rec models.TimeLogRecord
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.PointInTime, &rec.ProjectRef,
			&rec.ProjectName, &rec.ProjectColor, &rec.Hours, &rec.EmployeeRef,
			&rec.LegacyDescriptor); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEmployees returns every employee record, active and inactive.
func (s *SQLite) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, display_name, initials, color, avatar_url, active
		FROM employees
		ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list employees: %w", err)
	}
	defer rows.Close()

	var out []models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.DisplayName, &e.Initials, &e.Color, &e.AvatarURL, &e.Active); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListProjects returns every project record, hidden included; visibility
// filtering belongs to the callers.
func (s *SQLite) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, color, type, hidden
		FROM projects
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Type, &p.Hidden); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertTimeLog stores a new record, assigning its id and creation time.
func (s *SQLite) InsertTimeLog(ctx context.Context, rec NewTimeLog) (models.TimeLogRecord, error) {
	stored := models.TimeLogRecord{
		ID:               generateID(time.Now()),
		CreatedAt:        time.Now().UTC(),
		PointInTime:      rec.PointInTime,
		ProjectRef:       rec.ProjectRef,
		ProjectName:      rec.ProjectName,
		ProjectColor:     rec.ProjectColor,
		Hours:            rec.Hours,
		EmployeeRef:      rec.EmployeeRef,
		LegacyDescriptor: rec.LegacyDescriptor,
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO time_logs (id, created_at, point_in_time, project_ref, project_name,
		                       project_color, hours, employee_ref, legacy_descriptor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, stored.ID, stored.CreatedAt, stored.PointInTime, stored.ProjectRef, stored.ProjectName,
		stored.ProjectColor, stored.Hours, stored.EmployeeRef, stored.LegacyDescriptor)
	if err != nil {
		return models.TimeLogRecord{}, fmt.Errorf("store: insert time log: %w", err)
	}
	return stored, nil
}

// UpdateTimeLog applies the non-nil patch fields to the record and returns
// the updated row.
func (s *SQLite) UpdateTimeLog(ctx context.Context, id string, patch TimeLogPatch) (models.TimeLogRecord, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.TimeLogRecord{}, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if patch.ProjectRef != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE time_logs SET project_ref = ? WHERE id = ?`, *patch.ProjectRef, id); err != nil {
			return models.TimeLogRecord{}, fmt.Errorf("store: update project ref: %w", err)
		}
	}
	if patch.ProjectName != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE time_logs SET project_name = ? WHERE id = ?`, *patch.ProjectName, id); err != nil {
			return models.TimeLogRecord{}, fmt.Errorf("store: update project name: %w", err)
		}
	}
	if patch.ProjectColor != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE time_logs SET project_color = ? WHERE id = ?`, *patch.ProjectColor, id); err != nil {
			return models.TimeLogRecord{}, fmt.Errorf("store: update project color: %w", err)
		}
	}
	if patch.Hours != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE time_logs SET hours = ? WHERE id = ?`, *patch.Hours, id); err != nil {
			return models.TimeLogRecord{}, fmt.Errorf("store: update hours: %w", err)
		}
	}

	var rec models.TimeLogRecord
	err = tx.QueryRowContext(ctx, `
		SELECT id, created_at, point_in_time, project_ref, project_name,
		       project_color, hours, employee_ref, legacy_descriptor
		FROM time_logs WHERE id = ?
	`, id).Scan(&rec.ID, &rec.CreatedAt, &rec.PointInTime, &rec.ProjectRef, &rec.ProjectName,
		&rec.ProjectColor, &rec.Hours, &rec.EmployeeRef, &rec.LegacyDescriptor)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TimeLogRecord{}, fmt.Errorf("store: time log %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.TimeLogRecord{}, fmt.Errorf("store: reread time log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.TimeLogRecord{}, fmt.Errorf("store: commit: %w", err)
	}
	return rec, nil
}

// DeleteTimeLog removes the record by id.
func (s *SQLite) DeleteTimeLog(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM time_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete time log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: time log %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// UpsertEmployee and UpsertProject exist for administration tooling and
// test seeding; the engine itself never writes these collections.

func (s *SQLite) UpsertEmployee(ctx context.Context, e models.Employee) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO employees (id, display_name, initials, color, avatar_url, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			initials     = excluded.initials,
			color        = excluded.color,
			avatar_url   = excluded.avatar_url,
			active       = excluded.active
	`, e.ID, e.DisplayName, e.Initials, e.Color, e.AvatarURL, e.Active)
	if err != nil {
		return fmt.Errorf("store: upsert employee: %w", err)
	}
	return nil
}

func (s *SQLite) UpsertProject(ctx context.Context, p models.Project) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO projects (id, name, color, type, hidden)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name   = excluded.name,
			color  = excluded.color,
			type   = excluded.type,
			hidden = excluded.hidden
	`, p.ID, p.Name, p.Color, p.Type, p.Hidden)
	if err != nil {
		return fmt.Errorf("store: upsert project: %w", err)
	}
	return nil
}

// generateID creates a store-assigned record id from the timestamp plus a
// short random suffix.
func generateID(t time.Time) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		suffix[i] = chars[n.Int64()]
	}
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), string(suffix))
}
