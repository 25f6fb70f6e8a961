package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/eerco/ensuring-integrity/cliparse"
	"github.com/eerco/ensuring-integrity/db"
	"github.com/eerco/ensuring-integrity/i18n"
	"github.com/eerco/ensuring-integrity/petition"
	"github.com/eerco/ensuring-integrity/router"
	"github.com/eerco/ensuring-integrity/sigstore"
	"github.com/eerco/ensuring-integrity/syncloop"
)

// shutdownTimeout bounds how long in-flight requests get to finish
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(args)
	if err != nil {
		return err
	}

	// Connect to the local cache database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return multierr.Append(err, dbConn.Close())
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	cache := db.NewCache(dbConn)
	bundle := i18n.Default()

	opts := []sigstore.Option{sigstore.WithTimeout(cfg.RemoteTimeout)}
	if cfg.WriteRetries > 0 {
		opts = append(opts, sigstore.WithPrecondition(cfg.WriteRetries))
	}
	store := sigstore.New(cfg.RemoteStoreURL, opts...)

	state := petition.NewState()
	svc := petition.NewService(state, store, cache, bundle)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Show the last known signatures until the first pass completes
	if err := svc.Restore(ctx); err != nil {
		slog.Warn("Starting without cached signatures", "error", err)
	}

	syncer := syncloop.New(store, state, cache, cfg.SyncInterval)

	server := &http.Server{
		Handler: router.NewHandler(router.App{
			Service: svc,
			Syncer:  syncer,
			Cache:   cache,
			Bundle:  bundle,
			Config:  cfg,
		}),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return syncer.Start(ctx)
	})

	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port, "remote", store.Endpoint())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		// Wait for Ctrl-C, SIGTERM, or a failed server
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		syncer.Stop()
		return multierr.Append(server.Shutdown(shutdownCtx), cache.Close())
	})

	err = g.Wait()
	slog.Info("Server closed", "error", err)
	return err
}
