package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/digitaldrywood/timetracker/internal/database"
	"github.com/digitaldrywood/timetracker/internal/sheetsync"
)

// ErrUnsupportedCompany is returned when a project's company does not use
// the sheet sync format.
var ErrUnsupportedCompany = errors.New("company does not use sheet sync")

// Store is the subset of the database used by the tracker.
type Store interface {
	GetProject(ctx context.Context, name string) (*database.Project, error)
	CreateTimeLog(ctx context.Context, entry *database.TimeLog) error
	UnsyncedLogs(ctx context.Context, projectID int64) ([]database.TimeLog, error)
	MarkSynced(ctx context.Context, ids []int64, at time.Time) error
	RecordSyncRun(ctx context.Context, run *database.SyncRun) error
}

// Syncer projects logs into a remote sheet.
type Syncer interface {
	Sync(ctx context.Context, rq sheetsync.Request) (*sheetsync.Result, error)
}

type Tracker struct {
	store  Store
	syncer Syncer
	now    func() time.Time
}

func NewTracker(store Store, syncer Syncer) *Tracker {
	return &Tracker{
		store:  store,
		syncer: syncer,
		now:    time.Now,
	}
}

// AddLog validates and stores a time log for the named project.
func (t *Tracker) AddLog(ctx context.Context, projectName string, entry database.TimeLog) (*database.TimeLog, error) {
	project, err := t.store.GetProject(ctx, projectName)
	if err != nil {
		return nil, err
	}

	if _, err := sheetsync.Hours(toLogEntry(entry)); err != nil {
		return nil, err
	}
	if entry.BreakHours < 0 {
		return nil, fmt.Errorf("%w: break hours must not be negative", sheetsync.ErrInvalidLogEntry)
	}
	if _, err := time.Parse("2006-01-02", entry.Date); err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", sheetsync.ErrInvalidLogEntry, entry.Date)
	}

	entry.ProjectID = project.ID
	if err := t.store.CreateTimeLog(ctx, &entry); err != nil {
		return nil, fmt.Errorf("failed to save time log: %v", err)
	}

	return &entry, nil
}

// Unsynced returns the project's logs that have not been written to its sheet.
func (t *Tracker) Unsynced(ctx context.Context, projectName string) ([]database.TimeLog, error) {
	project, err := t.store.GetProject(ctx, projectName)
	if err != nil {
		return nil, err
	}

	return t.store.UnsyncedLogs(ctx, project.ID)
}

// SyncProject writes the project header and all unsynced logs to the
// project's sheet. Logs are marked synced only if the whole sync succeeds.
// Every attempt is recorded as a sync run.
func (t *Tracker) SyncProject(ctx context.Context, projectName string, creds sheetsync.Credentials) (*sheetsync.Result, error) {
	project, err := t.store.GetProject(ctx, projectName)
	if err != nil {
		return nil, err
	}

	if !sheetsync.IsKinoaCompany(project.Company) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompany, project.Company)
	}

	logs, err := t.store.UnsyncedLogs(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unsynced logs: %v", err)
	}

	entries := make([]sheetsync.LogEntry, 0, len(logs))
	ids := make([]int64, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, toLogEntry(l))
		ids = append(ids, l.ID)
	}

	run := database.SyncRun{
		ProjectID: project.ID,
		StartedAt: t.now(),
	}

	result, err := t.syncer.Sync(ctx, sheetsync.Request{
		SheetURL: project.SheetURL,
		Project: sheetsync.ProjectInfo{
			Konsulent:     project.Konsulent,
			Oppdragsgiver: project.Oppdragsgiver,
			Tiltak:        project.Tiltak,
			Periode:       project.Periode,
			KlientID:      project.KlientID,
		},
		Logs:        entries,
		Credentials: creds,
	})

	run.FinishedAt = t.now()
	if err != nil {
		run.Error = err.Error()
		if rerr := t.store.RecordSyncRun(ctx, &run); rerr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to record sync run: %v", rerr))
		}
		return nil, err
	}

	run.RowsAdded = result.RowsAdded
	run.StartRow = result.StartRow
	run.EndRow = result.EndRow

	if err := t.store.MarkSynced(ctx, ids, run.FinishedAt); err != nil {
		return result, fmt.Errorf("sheet updated but failed to mark logs synced: %v", err)
	}

	if err := t.store.RecordSyncRun(ctx, &run); err != nil {
		return result, fmt.Errorf("failed to record sync run: %v", err)
	}

	return result, nil
}

func toLogEntry(l database.TimeLog) sheetsync.LogEntry {
	return sheetsync.LogEntry{
		Date:       l.Date,
		StartTime:  l.StartTime,
		EndTime:    l.EndTime,
		BreakHours: l.BreakHours,
		Title:      l.Title,
		Notes:      l.Notes,
		Activity:   l.Activity,
	}
}

// FormatUnsynced renders the unsynced logs as they will appear in the sheet.
func FormatUnsynced(projectName string, logs []database.TimeLog) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== Unsynced logs for %s ===\n\n", projectName))

	if len(logs) == 0 {
		output.WriteString("Nothing to sync.\n")
		return output.String()
	}

	total := 0.0
	for _, l := range logs {
		entry := toLogEntry(l)
		hours, err := sheetsync.Hours(entry)
		if err != nil {
			output.WriteString(fmt.Sprintf("  • %s  invalid entry: %v\n", l.Date, err))
			continue
		}
		total += hours
		output.WriteString(fmt.Sprintf("  • %s  %s-%s  %6s  %s\n",
			sheetsync.FormatDate(entry.Date),
			sheetsync.FormatTime(entry.StartTime),
			sheetsync.FormatTime(entry.EndTime),
			sheetsync.FormatHours(hours),
			sheetsync.Description(entry)))
	}

	output.WriteString(fmt.Sprintf("\nTotal: %s hours in %d entries\n", sheetsync.FormatHours(total), len(logs)))

	return output.String()
}
