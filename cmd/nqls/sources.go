package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/backend"
	"github.com/rlch/nqls/completion"
)

// sourceFlags are shared by every command that needs completion sources.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to .nqls.yaml (default: nearest one above the working directory)",
			Sources: cli.EnvVars("NQLS_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "server",
			Usage:   "BI server URL (overrides config)",
			Sources: cli.EnvVars("NQLS_SERVER"),
		},
		&cli.IntFlag{
			Name:    "database",
			Usage:   "database id (overrides config)",
			Sources: cli.EnvVars("NQLS_DATABASE"),
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "server API key",
			Sources: cli.EnvVars("NQLS_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "workspace",
			Aliases: []string{"w"},
			Usage:   "workspace YAML file (overrides config)",
			Sources: cli.EnvVars("NQLS_WORKSPACE"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "verbose logging",
		},
	}
}

// setup is everything a command needs to serve completion.
type setup struct {
	config  *nqls.Config
	backend *backend.Backend
	filter  *completion.Filter
	logger  *zap.Logger
}

// engine creates a completion engine over the configured sources.
func (s *setup) engine() *completion.Engine {
	return completion.New(s.backend.Schema, s.backend.Questions,
		completion.WithSnippets(s.backend.Snippets),
		completion.WithDebounce(s.config.DebounceInterval()),
		completion.WithLogger(s.logger.Named("completion")))
}

func loadSetup(ctx context.Context, cmd *cli.Command) (*setup, error) {
	logger, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	filter, err := completion.CompileFilter(cfg.Completion.Hide)
	if err != nil {
		return nil, err
	}

	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Completion source ready", zap.String("source", b.Describe()))

	return &setup{config: cfg, backend: b, filter: filter, logger: logger}, nil
}

// loadConfig loads the config file and applies flag overrides. A missing
// config is fine as long as flags name a source.
func loadConfig(cmd *cli.Command) (*nqls.Config, error) {
	var (
		cfg *nqls.Config
		err error
	)

	if path := cmd.String("config"); path != "" {
		cfg, err = nqls.LoadConfigFile(path)
	} else {
		cfg, err = nqls.LoadConfig(".")
		if errors.Is(err, nqls.ErrConfigNotFound) {
			cfg, err = &nqls.Config{}, nil
		}
	}

	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if v := cmd.String("server"); v != "" {
		cfg.Server.URL = v
	}

	if v := cmd.Int("database"); v != 0 {
		cfg.Server.Database = v
	}

	if v := cmd.String("api-key"); v != "" {
		cfg.Server.APIKey = v
	}

	if v := cmd.String("workspace"); v != "" {
		abs, err := filepath.Abs(v)
		if err != nil {
			return nil, err
		}

		cfg.Workspace = abs
	}

	return cfg, nil
}

// newLogger logs warnings to stderr, or everything when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return config.Build()
}
