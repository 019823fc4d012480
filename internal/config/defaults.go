package config

// Unbounded lets every pattern group run at the same time.
const Unbounded Concurrency = -1

// Concurrency is the number of pattern groups allowed to run at once.
// Unbounded (-1) means no limit; 0 and 1 both mean strictly sequential.
type Concurrency int

// Sequential reports whether groups must run one after another.
func (c Concurrency) Sequential() bool {
	return c == 0 || c == 1
}

// Config holds the linters to run and the options controlling the run.
// Defaults are set in DefaultConfig() and can be overridden via the config file
// and then via command-line flags.
type Config struct {
	Linters []Linter
	Options Options
}

// Linter binds a glob pattern to the commands run on the files it matches.
// Linters keep the order in which they appear in the config file.
type Linter struct {
	Pattern  string
	Commands []string
}

// Options are the run-wide settings accepted next to "linters".
type Options struct {
	Concurrent Concurrency `mapstructure:"concurrent"` // Default: Unbounded
	Relative   bool        `mapstructure:"relative"`   // Default: false (absolute paths)
	Shell      bool        `mapstructure:"shell"`      // Default: false
	FailFast   bool        `mapstructure:"fail_fast"`  // Default: false

	// Command Execution
	MaxOutputSize         int64 `mapstructure:"max_output_size"`         // Default: 10 * 1024 * 1024 (10MB)
	CommandTimeoutSeconds int   `mapstructure:"command_timeout_seconds"` // Default: 0 (no timeout)
	GracefulShutdownMs    int   `mapstructure:"graceful_shutdown_ms"`    // Default: 2000
}

// DefaultConfig returns the default configuration with no linters.
func DefaultConfig() *Config {
	return &Config{
		Options: Options{
			Concurrent:            Unbounded,
			MaxOutputSize:         10 * 1024 * 1024,
			CommandTimeoutSeconds: 0,
			GracefulShutdownMs:    2000,
		},
	}
}
