package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/digitaldrywood/timetracker/internal/config"
	"github.com/digitaldrywood/timetracker/internal/database"
	"github.com/digitaldrywood/timetracker/internal/google"
	"github.com/digitaldrywood/timetracker/internal/secret"
	"github.com/digitaldrywood/timetracker/internal/sheetsync"
	"github.com/digitaldrywood/timetracker/internal/tracker"
)

func main() {
	var (
		project = flag.String("project", "", "Project name")
		add     = flag.Bool("add", false, "Add time log interactively")
		sync    = flag.Bool("sync", false, "Sync unsynced logs to the project sheet")
		legacy  = flag.Bool("legacy", false, "Sync with the service account instead of the user token")
		verbose = flag.Bool("v", false, "Verbose logging")
	)
	flag.Bool("list", false, "List logs not yet synced (the default action)")
	flag.Parse()

	if *project == "" {
		fmt.Fprintln(os.Stderr, "usage: timetracker -project NAME [-add | -list | -sync [-legacy]]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	resolver, err := secret.NewResolverFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to create secret resolver: %v", err)
	}

	cfg, err := config.Load(ctx, resolver)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	switch {
	case *add:
		addTimeLog(ctx, tracker.NewTracker(db, nil), *project)
	case *sync:
		syncProject(ctx, cfg, db, logger, *project, *legacy)
	default:
		listUnsynced(ctx, tracker.NewTracker(db, nil), *project)
	}
}

func listUnsynced(ctx context.Context, t *tracker.Tracker, project string) {
	logs, err := t.Unsynced(ctx, project)
	if err != nil {
		log.Fatalf("Failed to get unsynced logs: %v", err)
	}

	fmt.Println(tracker.FormatUnsynced(project, logs))
}

func addTimeLog(ctx context.Context, t *tracker.Tracker, project string) {
	reader := bufio.NewReader(os.Stdin)

	prompt := func(label, fallback string) string {
		if fallback != "" {
			fmt.Printf("%s [%s]: ", label, fallback)
		} else {
			fmt.Printf("%s: ", label)
		}
		v, _ := reader.ReadString('\n')
		v = strings.TrimSpace(v)
		if v == "" {
			return fallback
		}
		return v
	}

	entry := database.TimeLog{}
	entry.Date = prompt("Date", time.Now().Format("2006-01-02"))
	entry.StartTime = prompt("Start (HH:MM)", "")
	entry.EndTime = prompt("End (HH:MM)", "")

	breakStr := prompt("Break hours", "0")
	breakHours, err := strconv.ParseFloat(breakStr, 64)
	if err != nil {
		log.Fatalf("Invalid break hours %q", breakStr)
	}
	entry.BreakHours = breakHours

	entry.Title = prompt("Title", "")
	entry.Notes = prompt("Notes", "")
	entry.Activity = prompt("Activity", "")

	if _, err := t.AddLog(ctx, project, entry); err != nil {
		log.Fatalf("Failed to add time log: %v", err)
	}

	fmt.Println("Time log added successfully!")
}

func syncProject(ctx context.Context, cfg *config.Config, db *database.DB, logger *slog.Logger, project string, legacy bool) {
	var (
		provider google.Provider
		creds    sheetsync.Credentials
		err      error
	)

	if legacy {
		provider, err = google.NewServiceAccountProvider(cfg.ServiceAccountEmail, cfg.ServiceAccountPrivateKey)
	} else {
		provider, err = google.NewProvider(cfg.Providers())
	}
	if err != nil {
		log.Fatalf("Failed to configure credentials: %v", err)
	}

	if !legacy {
		auth, err := google.NewAuth(google.OAuthConfig(cfg.Providers()), cfg.TokenPath)
		if err != nil {
			log.Fatalf("Failed to create auth client: %v", err)
		}
		creds, err = auth.StoredCredentials()
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	syncer := sheetsync.NewSyncer(google.NewConnector(provider), logger)
	t := tracker.NewTracker(db, syncer)

	result, err := t.SyncProject(ctx, project, creds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sync failed: %s\n", describe(err))
		os.Exit(1)
	}

	if result.RowsAdded == 0 {
		fmt.Println("✅ Header updated, no new logs to sync.")
		return
	}
	fmt.Printf("✅ Synced %d rows (%d-%d)\n", result.RowsAdded, result.StartRow, result.EndRow)
}

func describe(err error) string {
	var cause string
	switch {
	case errors.Is(err, tracker.ErrUnsupportedCompany):
		cause = "the project's company does not use this sheet format"
	case errors.Is(err, database.ErrNotFound):
		cause = "no such project"
	case errors.Is(err, sheetsync.ErrInvalidURL):
		cause = "the project's sheet URL is not a spreadsheet link"
	case errors.Is(err, sheetsync.ErrConfiguration):
		cause = "credentials are not configured"
	case errors.Is(err, sheetsync.ErrAuthentication):
		cause = "authentication failed, run the auth command again"
	case errors.Is(err, sheetsync.ErrInvalidLogEntry):
		cause = "a stored log cannot be written"
	case errors.Is(err, sheetsync.ErrRemoteAPI):
		cause = "the spreadsheet API rejected the request"
		if code := sheetsync.StatusCode(err); code != 0 {
			cause = fmt.Sprintf("%s (HTTP %d)", cause, code)
		}
	default:
		return err.Error()
	}

	return fmt.Sprintf("%s: %v", cause, err)
}
