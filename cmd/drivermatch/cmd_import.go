package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HerbHall/drivermatch/internal/catalog"
	"github.com/HerbHall/drivermatch/internal/config"
	"github.com/HerbHall/drivermatch/internal/services"
	"github.com/HerbHall/drivermatch/internal/store"
	pkgcatalog "github.com/HerbHall/drivermatch/pkg/catalog"
)

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "driver catalog to import, .yaml/.yml or .csv (required)")
	configPath := fs.String("config", "", "path to configuration file")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "error: --file is required")
		fs.Usage()
		os.Exit(1)
	}

	recs, err := readRecords(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	db, err := store.New(cfg.GetString("database.path"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	repo, err := services.NewSQLiteDriverRepository(ctx, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	imported, skipped, err := catalog.ImportRecords(ctx, repo, recs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d drivers from %s (%d skipped)\n", imported, *file, skipped)
}

func readRecords(path string) ([]map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return pkgcatalog.ParseCSV(f)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return pkgcatalog.ParseRecords(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}
