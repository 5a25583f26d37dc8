package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIndex(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateIndex() error {
	switch c.Index.Driver {
	case DriverSQLite:
		if c.Index.Path == "" {
			return errors.New("index.path must be set for the sqlite driver")
		}
	case DriverPostgres:
		if c.Index.DSN == "" {
			return fmt.Errorf("index.dsn must be set for the postgres driver (or set %sINDEX_DSN)", EnvPrefix)
		}
	default:
		return fmt.Errorf("index.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Index.Driver)
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.FrameRate <= 0 {
		return errors.New("analysis.frame_rate must be positive")
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Search.Limit < 0 {
		return errors.New("search.limit must be positive")
	}
	if c.Top.Limit < 0 {
		return errors.New("top.limit must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
