package sheetsync

import (
	"context"
	"fmt"
	"log/slog"
)

// Request is the input to a single sync.
type Request struct {
	SheetURL    string
	Project     ProjectInfo
	Logs        []LogEntry
	Credentials Credentials
}

// Syncer projects log entries into a remote sheet. It keeps no state
// between calls and takes no lock: concurrent syncs against the same sheet
// must be serialised by the caller.
type Syncer struct {
	connector Connector
	logger    *slog.Logger
}

// NewSyncer returns a Syncer that authenticates through connector.
// A nil logger discards log output.
func NewSyncer(connector Connector, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Syncer{
		connector: connector,
		logger:    logger,
	}
}

// Sync writes the header and then appends the logs. The header is written
// even when there are no logs. A failure in either step fails the sync; a
// header written before an append failure is not rolled back.
func (s *Syncer) Sync(ctx context.Context, rq Request) (*Result, error) {
	spreadsheetID, err := ExtractID(rq.SheetURL)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("spreadsheet", spreadsheetID)

	api, err := s.connector.Connect(ctx, rq.Credentials)
	if err != nil {
		return nil, err
	}

	props, err := api.Properties(ctx, spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	logger.Debug("writing header", "sheet", props.Title, "konsulent", rq.Project.Konsulent, "klient_id", rq.Project.KlientID)
	if err := WriteHeader(ctx, api, spreadsheetID, props.Title, rq.Project); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	logger.Debug("appending logs", "count", len(rq.Logs))
	result, err := AppendLogs(ctx, api, spreadsheetID, rq.Logs)
	if err != nil {
		return nil, fmt.Errorf("append: %w", err)
	}

	logger.Info("sheet synced",
		"rows_added", result.RowsAdded,
		"start_row", result.StartRow,
		"end_row", result.EndRow)

	return result, nil
}
