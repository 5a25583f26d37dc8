package config

// Index drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultConfigPath        = "~/.config/vidup/config.toml"
	defaultIndexPathFallback = "~/.local/share/vidup/database"
	defaultFrameRate         = 30
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultSearchLimit       = 10
	defaultTopLimit          = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Index: Index{
			Driver: DriverSQLite,
			Path:   defaultIndexPath(),
		},
		Analysis: Analysis{
			FrameRate: defaultFrameRate,
		},
		Transcoder: Transcoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Search: Search{
			Limit: defaultSearchLimit,
		},
		Top: Top{
			Limit: defaultTopLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
