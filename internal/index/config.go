package index

import "vidup/internal/config"

// OptionsFromConfig maps the [index] configuration section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		Driver:   cfg.Index.Driver,
		Path:     cfg.Index.Path,
		DSN:      cfg.Index.DSN,
		LockPath: cfg.Index.LockPath,
	}
}
