package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateMPR(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateExport() error {
	d := c.Export.ToolDiameter
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return fmt.Errorf("export.tool_diameter must be a non-negative number, got %v", d)
	}
	if strings.ContainsAny(c.Export.OutputPrefix, `/\`) {
		return errors.New("export.output_prefix must not contain path separators")
	}
	return nil
}

func (c *Config) validateMPR() error {
	if !strings.HasPrefix(c.MPR.ComponentTag, "<") {
		return fmt.Errorf("mpr.component_tag must start with '<', got %q", c.MPR.ComponentTag)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
