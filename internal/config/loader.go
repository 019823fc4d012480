package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// SearchPlaces are the file names looked up, in order, in every search directory.
var SearchPlaces = []string{
	".lintitrc",
	".lintitrc.json",
	".lintitrc.yaml",
	".lintitrc.yml",
	"lintit.config.yaml",
}

const lintersKey = "linters"

// FileSystem abstracts file operations for testability
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads the config file at explicitPath, or the first of SearchPlaces found
// in searchDirs when explicitPath is empty, and merges it over the defaults.
// It returns the path the configuration was read from.
//
// Returns ErrConfigNotFound when no file exists, a *ParseError for malformed files
// and an *InvalidError when the merged configuration fails validation.
func (l *Loader) Load(explicitPath string, searchDirs ...string) (*Config, string, error) {
	if explicitPath != "" {
		data, err := l.fs.ReadFile(explicitPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicitPath)
			}
			return nil, "", err
		}
		cfg, err := parseFile(explicitPath, data)
		return cfg, explicitPath, err
	}

	seen := make(map[string]bool)
	for _, dir := range searchDirs {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true

		for _, name := range SearchPlaces {
			path := filepath.Join(dir, name)
			data, err := l.fs.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return nil, "", err // Permission issues are not silently skipped
			}
			cfg, err := parseFile(path, data)
			return cfg, path, err
		}
	}

	return nil, "", ErrConfigNotFound
}

func parseFile(path string, data []byte) (*Config, error) {
	cfg, err := Parse(data)
	if err != nil {
		var invalid *InvalidError
		if errors.As(err, &invalid) {
			return nil, err
		}
		return nil, &ParseError{Path: path, Cause: err}
	}
	return cfg, nil
}

// Parse decodes YAML or JSON config data over the default configuration and validates it.
//
// Two shapes are accepted. The advanced shape carries a "linters" mapping next to the
// run options; the simple shape is a mapping where every key is a glob pattern.
// Patterns keep their file order, which is also their execution order.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &InvalidError{Problems: []string{"config is empty"}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &InvalidError{Problems: []string{"config must be a mapping of glob patterns to commands"}}
	}

	cfg := DefaultConfig()

	lintersNode := root
	if node := mappingValue(root, lintersKey); node != nil {
		lintersNode = node

		options := make(map[string]any)
		for i := 0; i+1 < len(root.Content); i += 2 {
			key := root.Content[i].Value
			if key == lintersKey {
				continue
			}
			var value any
			if err := root.Content[i+1].Decode(&value); err != nil {
				return nil, err
			}
			options[key] = value
		}
		if err := decodeOptions(options, &cfg.Options); err != nil {
			return nil, err
		}
	}

	linters, err := parseLinters(lintersNode)
	if err != nil {
		return nil, err
	}
	cfg.Linters = linters

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeOptions(values map[string]any, opts *Options) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  concurrencyHook,
		ErrorUnused: true,
		Result:      opts,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(values); err != nil {
		return &InvalidError{Problems: []string{err.Error()}}
	}
	return nil
}

// concurrencyHook lets "concurrent" be written as a boolean, a number or a string.
func concurrencyHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(Concurrency(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case bool:
		if v {
			return Unbounded, nil
		}
		return Concurrency(0), nil
	case string:
		return ParseConcurrency(v)
	}
	return data, nil
}

// ParseConcurrency converts "true", "false" or an integer into a Concurrency.
// -1 is accepted as another spelling of "true".
func ParseConcurrency(s string) (Concurrency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return Unbounded, nil
	case "false":
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < int(Unbounded) {
		return 0, &InvalidError{Problems: []string{fmt.Sprintf("%s, got %q", concurrencyProblem, s)}}
	}
	return Concurrency(n), nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func parseLinters(node *yaml.Node) ([]Linter, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &InvalidError{Problems: []string{"linters must be a mapping of glob patterns to commands"}}
	}

	var problems []string
	linters := make([]Linter, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		pattern := node.Content[i].Value
		value := node.Content[i+1]

		var commands []string
		switch value.Kind {
		case yaml.ScalarNode:
			commands = []string{value.Value}
		case yaml.SequenceNode:
			for _, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					problems = append(problems, fmt.Sprintf("commands for %q must be strings", pattern))
					continue
				}
				commands = append(commands, item.Value)
			}
		default:
			problems = append(problems, fmt.Sprintf("commands for %q must be a string or a list of strings", pattern))
			continue
		}
		linters = append(linters, Linter{Pattern: pattern, Commands: commands})
	}

	if len(problems) > 0 {
		return nil, &InvalidError{Problems: problems}
	}
	return linters, nil
}
