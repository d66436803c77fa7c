package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kerf/internal/config"
	"kerf/internal/convention"
	"kerf/internal/history"
	"kerf/internal/logging"
	"kerf/internal/prefs"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

// ensureConfig loads the configuration once and applies saved preferences on
// top. KERF_CONVENTION keeps priority over the saved convention path.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		p, err := prefs.Load(cfg.Paths.PrefsPath)
		if err != nil {
			c.configErr = err
			return
		}
		if strings.TrimSpace(os.Getenv("KERF_CONVENTION")) != "" {
			p.ConventionJSON = ""
		}
		if err := prefs.Apply(cfg, p); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// log returns the file logger configured for this invocation. Failures to
// open the log file fall back to a silent logger so commands still run.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) loadConvention(cmd *cobra.Command) (*convention.Table, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	table, warnings, err := convention.Load(cfg.Paths.ConventionJSON, c.log())
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return table, nil
}

func (c *commandContext) saveConvention(table *convention.Table) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := convention.Save(cfg.Paths.ConventionJSON, table); err != nil {
		return err
	}
	c.log().Info("convention saved",
		logging.String(logging.FieldFile, cfg.Paths.ConventionJSON),
		logging.Int("entries", table.Len()),
	)
	return nil
}

// withHistory opens the ledger when history is enabled. fn receives nil
// when it is disabled.
func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fn(nil)
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
