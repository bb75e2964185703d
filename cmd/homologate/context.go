package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"homologation/internal/config"
	"homologation/internal/logger"
)

type commandContext struct {
	configFlag *string
	levelFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, levelFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, levelFlag: levelFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// logger writes to the command's stderr so table and JSON output stay clean.
func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config) *logger.Logger {
	level := cfg.Logging.Level
	if c.levelFlag != nil && strings.TrimSpace(*c.levelFlag) != "" {
		level = *c.levelFlag
	}
	return logger.NewWithWriter(cmd.ErrOrStderr(), level)
}
