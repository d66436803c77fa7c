package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExport()
	if err := c.normalizeMPR(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("KERF_CONVENTION"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ConventionJSON = strings.TrimSpace(value)
	}

	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.convention_json", &c.Paths.ConventionJSON, defaultConventionJSON},
		{"paths.edge_dir", &c.Paths.EdgeDir, defaultEdgeDir},
		{"paths.data_dir", &c.Paths.DataDir, defaultDataDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.prefs_path", &c.Paths.PrefsPath, defaultPrefsPath},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeExport() {
	c.Export.OutputPrefix = strings.TrimSpace(c.Export.OutputPrefix)
	if c.Export.OutputPrefix == "" {
		c.Export.OutputPrefix = defaultOutputPrefix
	}
	if c.Export.PreviewRows <= 0 {
		c.Export.PreviewRows = defaultPreviewRows
	}
}

func (c *Config) normalizeMPR() error {
	c.MPR.BelowToolPattern = strings.TrimSpace(c.MPR.BelowToolPattern)
	if c.MPR.BelowToolPattern == "" {
		c.MPR.BelowToolPattern = defaultBelowToolPattern
	}
	re, err := regexp.Compile(c.MPR.BelowToolPattern)
	if err != nil {
		return fmt.Errorf("mpr.below_tool_pattern: %w", err)
	}
	c.MPR.belowTool = re

	c.MPR.ComponentTag = strings.TrimSpace(c.MPR.ComponentTag)
	if c.MPR.ComponentTag == "" {
		c.MPR.ComponentTag = defaultComponentTag
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
