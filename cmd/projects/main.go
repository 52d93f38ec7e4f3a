package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/digitaldrywood/timetracker/internal/config"
	"github.com/digitaldrywood/timetracker/internal/database"
	"github.com/digitaldrywood/timetracker/internal/secret"
	"github.com/digitaldrywood/timetracker/internal/sheetsync"
)

func main() {
	var (
		add           = flag.String("add", "", "Add or update the named project")
		company       = flag.String("company", "", "Company the project bills through")
		url           = flag.String("url", "", "Spreadsheet URL")
		konsulent     = flag.String("konsulent", "", "Consultant name")
		oppdragsgiver = flag.String("oppdragsgiver", "", "Client organisation")
		tiltak        = flag.String("tiltak", "", "Program name")
		periode       = flag.String("periode", "", "Reporting period")
		klient        = flag.String("klient", "", "Participant reference")
		inactive      = flag.Bool("inactive", false, "Mark the project inactive")
		show          = flag.Bool("show", false, "Show configured projects")
		runs          = flag.String("runs", "", "Show recent sync runs for the named project")
	)
	flag.Parse()

	ctx := context.Background()

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
	case *add != "":
		saveProject(ctx, db, database.Project{
			Name:          *add,
			Company:       *company,
			SheetURL:      *url,
			Konsulent:     *konsulent,
			Oppdragsgiver: *oppdragsgiver,
			Tiltak:        *tiltak,
			Periode:       *periode,
			KlientID:      *klient,
			Active:        !*inactive,
		})
	case *runs != "":
		showRuns(ctx, db, *runs)
	case *show:
		showProjects(ctx, db)
	default:
		fmt.Println("To add or update a project:")
		fmt.Println()
		fmt.Println("  projects -add NAME -company COMPANY -url SHEET_URL -konsulent NAME -periode PERIOD")
		fmt.Println()
		fmt.Println("To show configured projects:")
		fmt.Println("  projects -show")
		fmt.Println()
		fmt.Println("To show recent syncs:")
		fmt.Println("  projects -runs NAME")
	}
}

func saveProject(ctx context.Context, db *database.DB, project database.Project) {
	if project.SheetURL != "" {
		if _, err := sheetsync.ExtractID(project.SheetURL); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if err := db.SaveProject(ctx, &project); err != nil {
		log.Fatalf("Failed to save project: %v", err)
	}

	fmt.Printf("✅ Saved project %s\n", project.Name)
	if !sheetsync.IsKinoaCompany(project.Company) {
		fmt.Fprintf(os.Stderr, "⚠️  %q does not use the sheet sync format, -sync will refuse this project\n", project.Company)
	}
}

func showProjects(ctx context.Context, db *database.DB) {
	projects, err := db.ListProjects(ctx)
	if err != nil {
		log.Fatalf("Failed to list projects: %v", err)
	}

	fmt.Println("📊 Projects")
	fmt.Println("===========")

	for _, p := range projects {
		status := "✅"
		if !p.Active {
			status = "⏸️"
		}
		fmt.Printf("\n%s %s (%s)\n", status, p.Name, p.Company)
		if p.SheetURL != "" {
			fmt.Printf("  • %s\n", p.SheetURL)
		}
		var header []string
		for _, v := range []string{p.Konsulent, p.Oppdragsgiver, p.Tiltak, p.Periode, p.KlientID} {
			if v != "" {
				header = append(header, v)
			}
		}
		if len(header) > 0 {
			fmt.Printf("  • %s\n", strings.Join(header, " / "))
		}
	}
}

func showRuns(ctx context.Context, db *database.DB, name string) {
	project, err := db.GetProject(ctx, name)
	if err != nil {
		log.Fatalf("%v", err)
	}

	runs, err := db.SyncRuns(ctx, project.ID, 10)
	if err != nil {
		log.Fatalf("Failed to list sync runs: %v", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No syncs recorded for %s.\n", name)
		return
	}

	for _, r := range runs {
		when := r.StartedAt.Local().Format("2006-01-02 15:04")
		if r.Error != "" {
			fmt.Printf("  ❌ %s  %s\n", when, r.Error)
			continue
		}
		fmt.Printf("  ✅ %s  %d rows (%d-%d)\n", when, r.RowsAdded, r.StartRow, r.EndRow)
	}
}
