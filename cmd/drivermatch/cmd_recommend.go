package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/HerbHall/drivermatch/internal/catalog"
	"github.com/HerbHall/drivermatch/internal/config"
	"github.com/HerbHall/drivermatch/internal/store"
	pkgcatalog "github.com/HerbHall/drivermatch/pkg/catalog"
	"github.com/HerbHall/drivermatch/pkg/models"
	pub "github.com/HerbHall/drivermatch/pkg/plugin"
	"go.uber.org/zap"
)

func runRecommend(args []string) {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	length := fs.Float64("length", 0, "strip length (required)")
	led := fs.Int("led", 0, "LEDs per metre (required)")
	voltage := fs.Int("voltage", 12, "driver voltage")
	unit := fs.String("unit", string(models.LengthMeter), "length unit: Meter or Feet")
	location := fs.String("location", models.LocationBoth, "installation location: both, indoor or outdoor")
	configPath := fs.String("config", "", "path to configuration file")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recommend failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var db pub.Store
	if src := cfg.GetString("catalog.source"); src == "" || src == catalog.SourceSQLite {
		s, err := store.New(cfg.GetString("database.path"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "recommend failed: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()
		db = s
	}

	src, repo, err := catalog.OpenSource(ctx, cfg, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recommend failed: %v\n", err)
		os.Exit(1)
	}
	if repo != nil && cfg.GetBool("catalog.seed") {
		if _, err := catalog.SeedFromEmbedded(ctx, repo, pkgcatalog.NewCatalog()); err != nil {
			fmt.Fprintf(os.Stderr, "recommend failed: %v\n", err)
			os.Exit(1)
		}
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	engineCfg, err := catalog.EngineConfigFromConfig(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recommend failed: %v\n", err)
		os.Exit(1)
	}
	engine := catalog.NewEngine(src, engineCfg, zap.NewNop())
	rec, err := engine.Recommend(ctx, catalog.RecommendRequest{
		Length:   *length,
		LEDCount: *led,
		Unit:     models.LengthUnit(*unit),
		Voltage:  *voltage,
		Location: *location,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "recommend failed: %v\n", err)
		os.Exit(1)
	}
	printRecommendation(os.Stdout, rec)
}

func printRecommendation(w io.Writer, rec *catalog.Recommendation) {
	fmt.Fprintf(w, "Load: %gW at %dV over %gm", rec.Wattage, rec.Voltage, rec.ConvertedLength)
	if rec.RequiresMultiple {
		fmt.Fprint(w, " (multiple drivers required)")
	}
	fmt.Fprintln(w)

	if len(rec.Options) == 0 {
		if rec.NearestHint != nil {
			fmt.Fprintf(w, "No driver covers this load. Closest: %s (%gW, %+gW)\n",
				rec.NearestHint.Unit.Name, rec.NearestHint.Unit.Wattage, rec.NearestHint.Difference)
		} else {
			fmt.Fprintln(w, "No drivers available for this voltage and location.")
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPTION\tUNITS\tWATTAGE\tSURPLUS\tCURRENT\tPRICE\t")
	for _, opt := range rec.Options {
		var marks []string
		if opt.BestSingle {
			marks = append(marks, "best single")
		}
		if opt.BestCombination {
			marks = append(marks, "best combination")
		}
		label := opt.Label
		if len(marks) > 0 {
			label += " [" + strings.Join(marks, ", ") + "]"
		}
		fmt.Fprintf(tw, "%s\t%d\t%g\t%g\t%.1f\t%.2f\t\n",
			label, opt.UnitCount, opt.TotalWattage, opt.Surplus, opt.TotalCurrent, opt.TotalPrice)
	}
	tw.Flush()
}
