package main

import (
	"log/slog"
	"os"
	"sync"

	"github.com/spacesedan/judgeflow/config"
	"github.com/spacesedan/judgeflow/internal/logging"
)

// commandContext loads settings once per invocation. Tests replace load.
type commandContext struct {
	load func() (config.Settings, error)

	once     sync.Once
	settings config.Settings
	err      error
}

func newCommandContext() *commandContext {
	return &commandContext{
		load: func() (config.Settings, error) {
			config.LoadEnv(config.AppEnv())
			return config.Load()
		},
	}
}

func (c *commandContext) ensureSettings() (config.Settings, error) {
	c.once.Do(func() {
		c.settings, c.err = c.load()
		if c.err == nil {
			// stdout carries the JSON output.
			slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, logging.ParseLevel(c.settings.LogLevel))))
		}
	})
	return c.settings, c.err
}
