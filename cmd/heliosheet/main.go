package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/heliosheet/core"
	"github.com/signalsfoundry/heliosheet/internal/config"
	"github.com/signalsfoundry/heliosheet/internal/ephem"
	"github.com/signalsfoundry/heliosheet/internal/logging"
	"github.com/signalsfoundry/heliosheet/internal/render"
	"github.com/signalsfoundry/heliosheet/internal/sceneapi"
	"github.com/signalsfoundry/heliosheet/kb"
	"github.com/signalsfoundry/heliosheet/model"
	"github.com/signalsfoundry/heliosheet/timewindow"
)

func main() {
	epochFlag := flag.String("epoch", "", "scene epoch as RFC3339 (defaults to now)")
	outDir := flag.String("out", "", "output directory for exported scene files (overrides config)")
	arcSpan := flag.Duration("arc-span", sceneapi.DefaultArcSpan, "trail length for trajectory views")
	baseName := flag.String("name", "scene", "base name for exported files")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fatalf("load configuration: %v", err)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	epoch := time.Now().UTC()
	if *epochFlag != "" {
		epoch, err = time.Parse(time.RFC3339, *epochFlag)
		if err != nil {
			fatalf("parse -epoch: %v", err)
		}
		epoch = epoch.UTC()
	}

	// ==== Catalog, resolver, service wiring ====

	store := kb.NewStore()
	if err := loadCatalog(store, cfg.CatalogPath); err != nil {
		fatalf("load spacecraft catalog: %v", err)
	}

	resolver := ephem.NewResolver(log, nil,
		ephem.NewHorizonsClient(cfg.HorizonsURL, cfg.FetchTimeout, log),
		ephem.NewCDAWebClient(cfg.CDAWebURL, cfg.FetchTimeout, log),
		ephem.NewTLESource(log),
	)

	svc := sceneapi.NewService(sceneapi.ServiceConfig{
		Store:        store,
		Resolver:     resolver,
		Earth:        earthProvider(ctx, cfg, log),
		Log:          log,
		Defaults:     cfg.Parameters,
		DefaultModel: cfg.SurfaceModel,
	})

	// ==== Interactive menus ====

	in := bufio.NewScanner(os.Stdin)

	ids, withSheet, ok := chooseSpacecraftSet(in)
	if !ok {
		return
	}
	analysis, ok := chooseAnalysis(in)
	if !ok {
		return
	}

	if analysis == analysisRetrieval {
		if err := printRawPositions(ctx, store, resolver, ids, epoch); err != nil {
			fatalf("%v", err)
		}
		return
	}

	params := cfg.Parameters
	modelName := sceneapi.ModelNone
	if withSheet {
		modelName = cfg.SurfaceModel
		params = promptParameters(in, cfg.Parameters)
	}

	scene, err := svc.Scene(ctx, sceneapi.SceneRequest{
		Epoch:         epoch,
		SpacecraftIDs: ids,
		Parameters:    params,
		ModelName:     modelName,
		IncludeArcs:   true,
		ArcSpan:       *arcSpan,
	})
	if err != nil {
		fatalf("assemble scene: %v", err)
	}

	files, err := render.NewWriter(cfg.OutputDir, log).WriteScene(ctx, scene, *baseName)
	if err != nil {
		fatalf("export scene: %v", err)
	}

	fmt.Println("Scene exported:")
	fmt.Printf("  %s\n", files.Scene)
	if files.Surface != "" {
		fmt.Printf("  %s\n", files.Surface)
	}
	fmt.Printf("  %s\n", files.Positions)
	fmt.Printf("  %s\n", files.Plot)
	fmt.Printf("Render with: gnuplot %s\n", files.Plot)
}

const (
	analysisTrajectory = iota
	analysisRetrieval
)

func chooseSpacecraftSet(in *bufio.Scanner) (ids []string, withSheet bool, ok bool) {
	fmt.Println("heliosheet: heliospheric current sheet explorer")
	fmt.Println()
	fmt.Println("Choose a spacecraft set:")
	fmt.Println("  1) Parker Solar Probe")
	fmt.Println("  2) MMS-1")
	fmt.Println("  3) Parker Solar Probe + MMS-1")
	fmt.Println("  4) Parker Solar Probe + MMS-1 + current sheet")
	fmt.Println("  q) quit")
	for {
		fmt.Print("> ")
		line, okRead := readLine(in)
		if !okRead {
			return nil, false, false
		}
		switch line {
		case "1":
			return []string{"psp"}, false, true
		case "2":
			return []string{"mms1"}, false, true
		case "3":
			return []string{"psp", "mms1"}, false, true
		case "4":
			return []string{"psp", "mms1"}, true, true
		case "q", "Q":
			return nil, false, false
		}
		fmt.Println("Enter 1-4, or q to quit.")
	}
}

func chooseAnalysis(in *bufio.Scanner) (int, bool) {
	fmt.Println("Choose an analysis:")
	fmt.Println("  1) Trajectory view (default)")
	fmt.Println("  2) Raw data retrieval")
	for {
		fmt.Print("> ")
		line, ok := readLine(in)
		if !ok {
			return 0, false
		}
		switch line {
		case "", "1":
			return analysisTrajectory, true
		case "2":
			return analysisRetrieval, true
		case "q", "Q":
			return 0, false
		}
		fmt.Println("Enter 1, 2, or q to quit.")
	}
}

// printRawPositions fetches and prints positions as tagged by their
// sources, before any reconciliation: an hour of samples from the
// epoch onward.
func printRawPositions(ctx context.Context, store *kb.Store, resolver *ephem.Resolver, ids []string, epoch time.Time) error {
	w, err := timewindow.Following(epoch, time.Hour, 15*time.Minute)
	if err != nil {
		return err
	}
	for _, id := range ids {
		def, err := store.Spacecraft(id)
		if err != nil {
			return err
		}
		arc, err := resolver.FetchArc(ctx, def, w)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", id, err)
		}
		fmt.Printf("%s, %d samples over %s:\n", id, len(arc), w.Duration())
		for _, pos := range arc {
			fmt.Printf("  %s  %s\n", pos.Epoch.Format(time.RFC3339), pos)
		}
	}
	return nil
}

func promptParameters(in *bufio.Scanner, def model.SpiralParameters) model.SpiralParameters {
	fmt.Println("Current sheet parameters (enter keeps the default):")
	p := def
	p.TiltDeg = promptFloat(in, "tilt [deg]", def.TiltDeg)
	p.AmplitudeDeg = promptFloat(in, "fold amplitude [deg]", def.AmplitudeDeg)
	p.RotationPeriodDays = promptFloat(in, "solar rotation period [days]", def.RotationPeriodDays)
	p.WindSpeedKmS = promptFloat(in, "solar wind speed [km/s]", def.WindSpeedKmS)
	p.RMinAU = promptFloat(in, "inner radius [AU]", def.RMinAU)
	p.RMaxAU = promptFloat(in, "outer radius [AU]", def.RMaxAU)
	p.NPhi = promptInt(in, "azimuth samples", def.NPhi)
	p.NR = promptInt(in, "radial samples", def.NR)
	return p
}

// promptFloat reads one value; empty input keeps the default and
// unparseable input warns and keeps the default rather than re-asking.
func promptFloat(in *bufio.Scanner, label string, def float64) float64 {
	fmt.Printf("%s [%g]: ", label, def)
	line, ok := readLine(in)
	if !ok || line == "" {
		return def
	}
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("Could not read %q, keeping %g.\n", line, def)
		return def
	}
	return v
}

func promptInt(in *bufio.Scanner, label string, def int) int {
	fmt.Printf("%s [%d]: ", label, def)
	line, ok := readLine(in)
	if !ok || line == "" {
		return def
	}
	v, err := strconv.Atoi(line)
	if err != nil {
		fmt.Printf("Could not read %q, keeping %d.\n", line, def)
		return def
	}
	return v
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func loadCatalog(store *kb.Store, path string) error {
	if path == "" {
		for _, def := range core.DefaultCatalog() {
			if err := store.AddSpacecraft(def); err != nil {
				return err
			}
		}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = core.LoadSpacecraftCatalog(store, f)
	return err
}

func earthProvider(ctx context.Context, cfg config.Config, log logging.Logger) ephem.EarthProvider {
	if !cfg.VSOP87Enabled {
		return ephem.FixedEarth{}
	}
	earth, err := ephem.NewVSOP87Earth(cfg.VSOP87Dir)
	if err != nil {
		log.Warn(ctx, "falling back to the fixed earth offset", logging.String("dir", cfg.VSOP87Dir), logging.Err(err))
		return ephem.FixedEarth{}
	}
	return earth
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "heliosheet: "+format+"\n", args...)
	os.Exit(1)
}
