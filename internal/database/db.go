package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type DB struct {
	conn *sql.DB
}

func New(dataDir string) (*DB, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "timetracker.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %v", err)
	}

	if err := goose.Up(db.conn, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %v", err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Project operations
func (db *DB) GetProject(ctx context.Context, name string) (*Project, error) {
	var project Project
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, company, sheet_url, konsulent, oppdragsgiver, tiltak, periode, klient_id, active
		FROM projects WHERE name = ?
	`, name).Scan(&project.ID, &project.Name, &project.Company, &project.SheetURL,
		&project.Konsulent, &project.Oppdragsgiver, &project.Tiltak, &project.Periode, &project.KlientID, &project.Active)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	return &project, err
}

func (db *DB) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, company, sheet_url, konsulent, oppdragsgiver, tiltak, periode, klient_id, active
		FROM projects ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Company, &p.SheetURL,
			&p.Konsulent, &p.Oppdragsgiver, &p.Tiltak, &p.Periode, &p.KlientID, &p.Active); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// SaveProject inserts the project, or updates it if a project with the same
// name exists.
func (db *DB) SaveProject(ctx context.Context, project *Project) error {
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO projects (name, company, sheet_url, konsulent, oppdragsgiver, tiltak, periode, klient_id, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			company = excluded.company,
			sheet_url = excluded.sheet_url,
			konsulent = excluded.konsulent,
			oppdragsgiver = excluded.oppdragsgiver,
			tiltak = excluded.tiltak,
			periode = excluded.periode,
			klient_id = excluded.klient_id,
			active = excluded.active
		RETURNING id
	`, project.Name, project.Company, project.SheetURL, project.Konsulent, project.Oppdragsgiver,
		project.Tiltak, project.Periode, project.KlientID, project.Active).Scan(&project.ID)

	return err
}

// Time log operations
func (db *DB) CreateTimeLog(ctx context.Context, entry *TimeLog) error {
	result, err := db.conn.ExecContext(ctx, `
		INSERT INTO time_logs (project_id, date, start_time, end_time, break_hours, title, notes, activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ProjectID, entry.Date, entry.StartTime, entry.EndTime, entry.BreakHours, entry.Title, entry.Notes, entry.Activity)

	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	entry.ID = id
	return nil
}

// UnsyncedLogs returns the project's logs not yet written to its sheet,
// oldest first.
func (db *DB) UnsyncedLogs(ctx context.Context, projectID int64) ([]TimeLog, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, project_id, date, start_time, end_time, break_hours, title, notes, activity, synced_at
		FROM time_logs
		WHERE project_id = ? AND synced_at IS NULL
		ORDER BY date, start_time, id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []TimeLog{}
	for rows.Next() {
		var l TimeLog
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.Date, &l.StartTime, &l.EndTime, &l.BreakHours,
			&l.Title, &l.Notes, &l.Activity, &l.SyncedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// MarkSynced records the given logs as written to the sheet.
func (db *DB) MarkSynced(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	args := []interface{}{at.UTC().Format(time.RFC3339)}
	for _, id := range ids {
		args = append(args, id)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	_, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE time_logs SET synced_at = ? WHERE id IN (%s)`, placeholders),
		args...)

	return err
}

// Sync run operations
func (db *DB) RecordSyncRun(ctx context.Context, run *SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO sync_runs (id, project_id, started_at, finished_at, rows_added, start_row, end_row, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.ProjectID, run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339),
		run.RowsAdded, run.StartRow, run.EndRow, run.Error)

	return err
}

// SyncRuns returns the most recent sync runs for a project, newest first.
func (db *DB) SyncRuns(ctx context.Context, projectID int64, limit int) ([]SyncRun, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, project_id, started_at, finished_at, rows_added, start_row, end_row, error
		FROM sync_runs WHERE project_id = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []SyncRun{}
	for rows.Next() {
		var r SyncRun
		var started, finished string
		if err := rows.Scan(&r.ID, &r.ProjectID, &started, &finished, &r.RowsAdded, &r.StartRow, &r.EndRow, &r.Error); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Types
type Project struct {
	ID            int64
	Name          string
	Company       string
	SheetURL      string
	Konsulent     string
	Oppdragsgiver string
	Tiltak        string
	Periode       string
	KlientID      string
	Active        bool
}

type TimeLog struct {
	ID         int64
	ProjectID  int64
	Date       string
	StartTime  string
	EndTime    string
	BreakHours float64
	Title      string
	Notes      string
	Activity   string
	SyncedAt   sql.NullString
}

type SyncRun struct {
	ID         string
	ProjectID  int64
	StartedAt  time.Time
	FinishedAt time.Time
	RowsAdded  int
	StartRow   int
	EndRow     int
	Error      string
}
