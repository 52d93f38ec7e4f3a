package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/digitaldrywood/timetracker/internal/config"
	"github.com/digitaldrywood/timetracker/internal/google"
	"github.com/digitaldrywood/timetracker/internal/secret"
	"github.com/digitaldrywood/timetracker/internal/sheetsync"
)

func main() {
	sheetURL := flag.String("url", "", "Spreadsheet URL to verify access to")
	flag.Parse()

	fmt.Println("=== Time Tracker Authentication ===")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resolver, err := secret.NewResolverFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to create secret resolver: %v", err)
	}

	cfg, err := config.Load(ctx, resolver)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	auth, err := google.NewAuth(google.OAuthConfig(cfg.Providers()), cfg.TokenPath)
	if err != nil {
		log.Fatalf("Failed to create auth client: %v", err)
	}

	// This will trigger the OAuth flow if needed
	creds, err := auth.Credentials(ctx)
	if err != nil {
		log.Fatalf("Failed to authenticate: %v", err)
	}

	fmt.Println("✅ Authentication successful!")

	if *sheetURL != "" {
		verify(ctx, cfg, creds, *sheetURL)
	}

	fmt.Println()
	fmt.Println("You can now use the timetracker commands:")
	fmt.Println("  timetracker -project NAME -add   - Add time log")
	fmt.Println("  timetracker -project NAME -list  - Show unsynced logs")
	fmt.Println("  timetracker -project NAME -sync  - Sync logs to the project sheet")
}

func verify(ctx context.Context, cfg *config.Config, creds sheetsync.Credentials, url string) {
	id, err := sheetsync.ExtractID(url)
	if err != nil {
		log.Fatalf("%v", err)
	}

	provider, err := google.NewProvider(cfg.Providers())
	if err != nil {
		log.Fatalf("Failed to configure credentials: %v", err)
	}

	api, err := google.NewConnector(provider).Connect(ctx, creds)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	layout, err := sheetsync.Inspect(ctx, api, id)
	if err != nil {
		log.Fatalf("Failed to access spreadsheet: %v", err)
	}

	fmt.Printf("📊 Connected to spreadsheet %s\n", id)
	fmt.Printf("   Konsulent: %s\n", layout.Header.Konsulent)
	fmt.Printf("   Periode:   %s\n", layout.Header.Periode)
	fmt.Printf("   %d data rows, next row %d of %d\n", layout.DataRowCount, layout.NextDataRow, layout.TotalRowCount)
}
