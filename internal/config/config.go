// Package config handles vrmtool configuration loading and management.
package config

// Config holds all vrmtool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Decode  DecodeConfig  `yaml:"decode" toml:"decode"`
	License LicenseConfig `yaml:"license" toml:"license"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// DecodeConfig holds model loading settings.
type DecodeConfig struct {
	Workers       int `yaml:"workers" toml:"workers"`                   // Files loaded in parallel
	MaxFileSizeMB int `yaml:"max_file_size_mb" toml:"max_file_size_mb"` // 0 disables the limit
	PreviewCount  int `yaml:"preview_count" toml:"preview_count"`       // Elements shown per accessor
}

// LicenseConfig holds licence policy settings.
type LicenseConfig struct {
	Enforce bool `yaml:"enforce" toml:"enforce"`
}

// MaxFileSize returns the file size limit in bytes.
func (c *DecodeConfig) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Decode: DecodeConfig{
			Workers:       4,
			MaxFileSizeMB: 512,
			PreviewCount:  3,
		},
		License: LicenseConfig{
			Enforce: true,
		},
	}
}
