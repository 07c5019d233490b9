package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/dispatch/app/services/dispatch-api/handlers"
	"github.com/ardanlabs/dispatch/foundation/dispatch"
	"github.com/ardanlabs/dispatch/foundation/events"
	"github.com/ardanlabs/dispatch/foundation/logger"
	"github.com/ardanlabs/dispatch/foundation/nameservice"
	"github.com/ardanlabs/dispatch/foundation/tablestore"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("DISPATCH-API")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
			CorsOrigin      string        `conf:"default:*"`
		}
		Dispatch struct {
			Threshold int `conf:"default:2"`
			Headroom  int `conf:"default:4"`
		}
		Store struct {
			LifeWindow        time.Duration `conf:"default:1h"`
			MaxEntrySizeBytes int           `conf:"default:4096"`
			HardMaxCacheMB    int           `conf:"default:256"`
			Shards            int           `conf:"default:8"`
		}
		NameService struct {
			Folder string
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "selector dispatch table builder",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "DISPATCH"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	buildCfg := dispatch.Config{
		Threshold: cfg.Dispatch.Threshold,
		Headroom:  cfg.Dispatch.Headroom,
	}
	if err := buildCfg.Validate(); err != nil {
		return fmt.Errorf("dispatch config: %w", err)
	}

	// =========================================================================
	// Name Service Support

	// The nameservice package names selectors that fall through a table.
	// The names come from the .sigs files in the configured folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load selector name service: %w", err)
	}
	log.Infow("startup", "status", "nameservice", "selectors", ns.Len())

	// =========================================================================
	// Table Store Support

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := tablestore.New(ctx, tablestore.Config{
		LifeWindow:       cfg.Store.LifeWindow,
		MaxEntrySize:     cfg.Store.MaxEntrySizeBytes,
		HardMaxCacheSize: cfg.Store.HardMaxCacheMB,
		Shards:           cfg.Store.Shards,
	})
	if err != nil {
		return fmt.Errorf("unable to construct table store: %w", err)
	}
	defer store.Close()

	// Build events are sent to any websocket client connected through the
	// events endpoint.
	evts := events.New()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, store)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing V1 API support")

	apiMux := handlers.APIMux(handlers.APIMuxConfig{
		Shutdown:   shutdown,
		Log:        log,
		Store:      store,
		Evts:       evts,
		NS:         ns,
		Build:      buildCfg,
		CorsOrigin: cfg.Web.CorsOrigin,
	})

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
