package main

import (
	"strings"
	"sync"

	"mediamatrixhub/internal/app"
)

type commandContext struct {
	configFlag *string

	once   sync.Once
	app    *app.App
	appErr error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// ensureApp connects to the database once per invocation.
func (c *commandContext) ensureApp() (*app.App, error) {
	c.once.Do(func() {
		c.app, c.appErr = app.Bootstrap(c.configPath())
	})
	return c.app, c.appErr
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close()
	}
}
