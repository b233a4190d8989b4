package main

import (
	"go.uber.org/zap"

	"github.com/DoyleJ11/kat-overlay/internal/config"
	"github.com/DoyleJ11/kat-overlay/internal/osc"
	"github.com/DoyleJ11/kat-overlay/internal/overlay"
)

// openListener binds the OSC listener when enabled and returns the overlay
// config to run with. Without a listener nothing echoes back, so a disabled or
// failed bind turns probing off and the engine chunks by the configured slot
// count.
func openListener(cfg config.Config, logger *zap.Logger) (*osc.Listener, overlay.Config) {
	if !cfg.ListenEnabled {
		return nil, cfg.Overlay(false)
	}
	ln, err := osc.Listen(cfg.ListenAddr, cfg.Addresses(), logger.Named("osc"))
	if err != nil {
		logger.Warn("osc listener unavailable, running send-only",
			zap.String("addr", cfg.ListenAddr), zap.Error(err))
		return nil, cfg.Overlay(false)
	}
	return ln, cfg.Overlay(true)
}
