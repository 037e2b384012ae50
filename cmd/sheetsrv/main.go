package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/signalsfoundry/heliosheet/core"
	"github.com/signalsfoundry/heliosheet/internal/config"
	"github.com/signalsfoundry/heliosheet/internal/ephem"
	"github.com/signalsfoundry/heliosheet/internal/logging"
	"github.com/signalsfoundry/heliosheet/internal/observability"
	"github.com/signalsfoundry/heliosheet/internal/sceneapi"
	"github.com/signalsfoundry/heliosheet/kb"
)

func main() {
	addr := flag.String("addr", ":8080", "TCP address the scene API listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	catalogPath := flag.String("catalog", "", "Path to a JSON spacecraft catalog (empty uses the built-in set)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Error(ctx, "failed to load configuration", logging.Err(err))
		os.Exit(1)
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}

	sceneMetrics, err := observability.NewSceneCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise scene metrics", logging.Err(err))
		os.Exit(1)
	}
	ephemMetrics, err := observability.NewEphemCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise ephemeris metrics", logging.Err(err))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	metricsSrv := serveMetrics(*metricsAddr, sceneMetrics, log)

	store := kb.NewStore()
	if err := loadCatalog(store, cfg.CatalogPath); err != nil {
		log.Error(ctx, "failed to load spacecraft catalog", logging.String("path", cfg.CatalogPath), logging.Err(err))
		os.Exit(1)
	}
	catalog := store.ListSpacecraft()
	sceneMetrics.SetCatalogSize(len(catalog))
	log.Info(ctx, "spacecraft catalog ready", logging.Int("spacecraft", len(catalog)))

	store.Subscribe(func(e kb.Event) {
		if e.Type != kb.EventPositionUpdated {
			return
		}
		log.Debug(ctx, "position recorded",
			logging.String("spacecraft", e.Spacecraft.ID),
			logging.String("position", e.Position.String()),
		)
	})

	resolver := ephem.NewResolver(log, ephemMetrics,
		ephem.NewHorizonsClient(cfg.HorizonsURL, cfg.FetchTimeout, log),
		ephem.NewCDAWebClient(cfg.CDAWebURL, cfg.FetchTimeout, log),
		ephem.NewTLESource(log),
	)

	svc := sceneapi.NewService(sceneapi.ServiceConfig{
		Store:        store,
		Resolver:     resolver,
		Earth:        earthProvider(ctx, cfg, log),
		Collector:    ephemMetrics,
		Log:          log,
		Defaults:     cfg.Parameters,
		DefaultModel: cfg.SurfaceModel,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           otelhttp.NewHandler(sceneapi.NewServer(svc, sceneMetrics, log).Routes(), "sceneapi"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info(ctx, "starting scene API server", logging.String("addr", *addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "scene API server exited", logging.Err(err))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down scene API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func serveMetrics(addr string, collector *observability.SceneCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// loadCatalog fills store from the JSON catalog at path, or from the
// built-in set when path is empty. Catalog errors are fatal for the
// server; without spacecraft there is nothing to serve.
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
	log.Info(ctx, "earth offset from VSOP87 series", logging.String("dir", cfg.VSOP87Dir))
	return earth
}
