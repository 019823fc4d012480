package config

import (
	"fmt"
	"strings"
)

const concurrencyProblem = "concurrent must be true, false, -1 (unbounded) or a number >= 0"

// Validate checks config values for correctness.
// Returns an *InvalidError listing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Linters) == 0 {
		errs = append(errs, "at least one glob pattern must be configured")
	}

	seen := make(map[string]bool, len(c.Linters))
	for _, l := range c.Linters {
		if strings.TrimSpace(l.Pattern) == "" {
			errs = append(errs, "glob patterns must not be empty")
			continue
		}
		if seen[l.Pattern] {
			errs = append(errs, fmt.Sprintf("pattern %q is configured more than once", l.Pattern))
		}
		seen[l.Pattern] = true

		if len(l.Commands) == 0 {
			errs = append(errs, fmt.Sprintf("pattern %q has no commands", l.Pattern))
		}
		for _, cmd := range l.Commands {
			if strings.TrimSpace(cmd) == "" {
				errs = append(errs, fmt.Sprintf("pattern %q has an empty command", l.Pattern))
			}
		}
	}

	errs = append(errs, c.Options.problems()...)

	if len(errs) > 0 {
		return &InvalidError{Problems: errs}
	}
	return nil
}

// Validate checks run options on their own, for options merged from flags.
func (o Options) Validate() error {
	if errs := o.problems(); len(errs) > 0 {
		return &InvalidError{Problems: errs}
	}
	return nil
}

func (o Options) problems() []string {
	var errs []string
	if o.Concurrent < Unbounded {
		errs = append(errs, concurrencyProblem)
	}
	if o.MaxOutputSize < 1 {
		errs = append(errs, "max_output_size must be >= 1")
	}
	if o.CommandTimeoutSeconds < 0 {
		errs = append(errs, "command_timeout_seconds must be >= 0")
	}
	if o.GracefulShutdownMs < 1 {
		errs = append(errs, "graceful_shutdown_ms must be >= 1")
	}
	return errs
}
