package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"animmuf/internal/config"
	"animmuf/internal/errs"
	"animmuf/internal/logging"
)

// commandContext lazily loads configuration and the logger so every
// subcommand shares one validated view of both.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads and validates configuration. A missing configuration
// file is a distinct, documented failure so schedulers can tell it apart
// from runtime errors.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = errs.Wrap(errs.ErrConfiguration, "config", "load", "", err)
			return
		}
		if !exists {
			c.configErr = errs.Wrap(errs.ErrConfiguration, "config", "load",
				fmt.Sprintf("no configuration file found (looked for %s); create one with `animmuf config init`", resolvedPath), nil)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = errs.Wrap(errs.ErrIO, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger from configuration, teeing output
// into the configured log directory.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		outputs := []string{"stdout"}
		if cfg.Paths.LogDir != "" {
			outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "animmuf.log"))
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
		if err != nil {
			c.loggerErr = errs.Wrap(errs.ErrConfiguration, "logging", "init", "", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}
