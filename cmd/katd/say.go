package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/kat-overlay/internal/config"
	"github.com/DoyleJ11/kat-overlay/internal/osc"
	"github.com/DoyleJ11/kat-overlay/internal/overlay"
)

const defaultHold = 10 * time.Second

var holdFor time.Duration

// runSay shows a message send-only, using the configured slot count as is.
func runSay(cmd *cobra.Command, args []string) error {
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

	client := osc.NewClient(cfg.OSCHost, cfg.OSCPort, cfg.Addresses())
	ov, err := overlay.New(cfg.Overlay(false), client, overlay.WithLogger(logger.Named("overlay")))
	if err != nil {
		return err
	}

	ov.SetText(strings.Join(args, " "))
	ov.Start()
	logger.Info("showing message", zap.Duration("hold", holdFor))

	select {
	case <-time.After(holdFor):
	case <-ctx.Done():
	}
	return ov.Close()
}
