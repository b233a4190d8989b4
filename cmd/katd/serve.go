package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/kat-overlay/internal/config"
	"github.com/DoyleJ11/kat-overlay/internal/httpapi"
	"github.com/DoyleJ11/kat-overlay/internal/hub"
	"github.com/DoyleJ11/kat-overlay/internal/osc"
	"github.com/DoyleJ11/kat-overlay/internal/overlay"
	"github.com/DoyleJ11/kat-overlay/internal/store"
)

const shutdownTimeout = 5 * time.Second

var initialText string

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	ln, oc := openListener(cfg, logger)

	h := hub.NewHub(ctx, logger.Named("hub"))
	client := osc.NewClient(cfg.OSCHost, cfg.OSCPort, cfg.Addresses())
	ov, err := overlay.New(oc, client,
		overlay.WithLogger(logger.Named("overlay")),
		overlay.WithHub(h),
		overlay.WithStore(st),
	)
	if err != nil {
		err = multierr.Append(err, st.Close())
		if ln != nil {
			err = multierr.Append(err, ln.Close())
		}
		return err
	}

	// an empty address turns the control API off
	var srv *http.Server
	if cfg.HTTPAddr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.SetupRoutes(h, ov, logger.Named("http")),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if ln != nil {
		g.Go(func() error { return ln.Serve(ov) })
	}
	if srv != nil {
		g.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		var err error
		if srv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			err = srv.Shutdown(sctx)
		}
		if ln != nil {
			err = multierr.Append(err, ln.Close())
		}
		// hides the overlay and flushes slot memory
		return multierr.Append(err, ov.Close())
	})

	if initialText != "" {
		ov.SetText(initialText)
	}
	ov.Start()
	logger.Info("katd running",
		zap.String("osc", cfg.OSCHost),
		zap.Int("osc_port", cfg.OSCPort),
		zap.Bool("probing", oc.Probing),
		zap.String("http", cfg.HTTPAddr),
	)

	return g.Wait()
}

func openStore(cfg config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Debug("no database configured, slot memory is in-process only")
		return store.NewMemoryStore(), nil
	}
	return store.OpenPostgres(cfg.DatabaseURL)
}
