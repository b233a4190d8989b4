// Package config loads daemon settings from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/DoyleJ11/kat-overlay/internal/engine"
	"github.com/DoyleJ11/kat-overlay/internal/osc"
	"github.com/DoyleJ11/kat-overlay/internal/overlay"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	OSCHost string `env:"KAT_OSC_HOST" envDefault:"127.0.0.1"`
	OSCPort int    `env:"KAT_OSC_PORT" envDefault:"9000"`

	ListenEnabled bool   `env:"KAT_LISTEN_ENABLED" envDefault:"true"`
	ListenAddr    string `env:"KAT_LISTEN_ADDR" envDefault:"127.0.0.1:9001"`

	TickInterval time.Duration `env:"KAT_TICK_INTERVAL" envDefault:"250ms"`

	TextLength  int    `env:"KAT_TEXT_LENGTH" envDefault:"128"`
	LineLength  int    `env:"KAT_LINE_LENGTH" envDefault:"32"`
	LineCount   int    `env:"KAT_LINE_COUNT" envDefault:"4"`
	MaxSlots    int    `env:"KAT_MAX_SLOTS" envDefault:"16"`
	Slots       int    `env:"KAT_SLOTS" envDefault:"4"`
	ProbeCode   int    `env:"KAT_PROBE_CODE" envDefault:"97"`
	InvalidChar string `env:"KAT_INVALID_CHAR" envDefault:"?"`

	ParamPrefix      string `env:"KAT_PARAM_PREFIX" envDefault:"/avatar/parameters/"`
	ParamVisible     string `env:"KAT_PARAM_VISIBLE" envDefault:"KAT_Visible"`
	ParamPointer     string `env:"KAT_PARAM_POINTER" envDefault:"KAT_Pointer"`
	ParamSync        string `env:"KAT_PARAM_SYNC" envDefault:"KAT_CharSync"`
	AvatarChangePath string `env:"KAT_AVATAR_CHANGE_PATH" envDefault:"/avatar/change"`

	HTTPAddr    string `env:"KAT_HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	DatabaseURL string `env:"KAT_DATABASE_URL"`

	LogLevel  string `env:"KAT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"KAT_LOG_FORMAT" envDefault:"console"`
}

// Load reads the given .env files (missing ones are skipped) and then the
// process environment. Variables already set in the environment win over
// file values.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.OSCPort <= 0 || c.OSCPort > 65535:
		return fmt.Errorf("%w: osc port %d", ErrInvalid, c.OSCPort)
	case c.ProbeCode < 1 || c.ProbeCode > 255:
		return fmt.Errorf("%w: probe code %d", ErrInvalid, c.ProbeCode)
	case utf8.RuneCountInString(c.InvalidChar) != 1:
		return fmt.Errorf("%w: invalid char %q must be one character", ErrInvalid, c.InvalidChar)
	case c.LogFormat != "console" && c.LogFormat != "json":
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c Config) Engine() engine.Config {
	return engine.Config{
		TextLength:  c.TextLength,
		LineLength:  c.LineLength,
		LineCount:   c.LineCount,
		MaxSlots:    c.MaxSlots,
		Slots:       c.Slots,
		ProbeCode:   uint8(c.ProbeCode),
		InvalidChar: c.InvalidChar,
	}
}

// Overlay builds the overlay config. probing should only be true once the
// listener is bound.
func (c Config) Overlay(probing bool) overlay.Config {
	return overlay.Config{
		Engine:       c.Engine(),
		TickInterval: c.TickInterval,
		Probing:      probing,
	}
}

func (c Config) Addresses() osc.Addresses {
	return osc.Addresses{
		Prefix:       c.ParamPrefix,
		Visible:      c.ParamVisible,
		Pointer:      c.ParamPointer,
		Sync:         c.ParamSync,
		AvatarChange: c.AvatarChangePath,
	}
}
