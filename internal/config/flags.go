package config

import "flag"

var (
	flagConfig          = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug           = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers         = flag.Int("workers", 0, "Number of files loaded in parallel")
	flagAllowProhibited = flag.Bool("allow-prohibited", false, "Load models whose licence prohibits modification")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWorkers > 0 {
		cfg.Decode.Workers = *flagWorkers
	}
	if *flagAllowProhibited {
		cfg.License.Enforce = false
	}
}
