package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSystem implements FileSystem for testing.
type MockFileSystem struct {
	Files       map[string][]byte
	ReadFileErr error
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

// --- HAPPY PATH TESTS ---

func TestLoad_SimpleFormat_PreservesPatternOrder(t *testing.T) {
	configYAML := `
"*.js": eslint
"*.css":
  - stylelint
  - prettier --write
"**/*.md": markdownlint
`
	fs := &MockFileSystem{Files: map[string][]byte{
		"/repo/.lintitrc.yaml": []byte(configYAML),
	}}

	cfg, path, err := NewLoaderWithFS(fs).Load("", "/repo")

	require.NoError(t, err)
	assert.Equal(t, "/repo/.lintitrc.yaml", path)
	require.Len(t, cfg.Linters, 3)
	assert.Equal(t, Linter{Pattern: "*.js", Commands: []string{"eslint"}}, cfg.Linters[0])
	assert.Equal(t, Linter{Pattern: "*.css", Commands: []string{"stylelint", "prettier --write"}}, cfg.Linters[1])
	assert.Equal(t, "**/*.md", cfg.Linters[2].Pattern)
	assert.Equal(t, Unbounded, cfg.Options.Concurrent) // Default
}

func TestLoad_AdvancedFormat_DecodesOptions(t *testing.T) {
	configJSON := `{
		"concurrent": false,
		"relative": true,
		"shell": true,
		"fail_fast": true,
		"command_timeout_seconds": 30,
		"linters": {"*.go": ["gofmt -l"], "*.js": "eslint"}
	}`
	fs := &MockFileSystem{Files: map[string][]byte{
		"/repo/.lintitrc.json": []byte(configJSON),
	}}

	cfg, _, err := NewLoaderWithFS(fs).Load("", "/repo")

	require.NoError(t, err)
	assert.Equal(t, Concurrency(0), cfg.Options.Concurrent)
	assert.True(t, cfg.Options.Concurrent.Sequential())
	assert.True(t, cfg.Options.Relative)
	assert.True(t, cfg.Options.Shell)
	assert.True(t, cfg.Options.FailFast)
	assert.Equal(t, 30, cfg.Options.CommandTimeoutSeconds)
	assert.Equal(t, int64(10*1024*1024), cfg.Options.MaxOutputSize) // Default preserved
	require.Len(t, cfg.Linters, 2)
	assert.Equal(t, "*.go", cfg.Linters[0].Pattern)
	assert.Equal(t, "*.js", cfg.Linters[1].Pattern)
}

func TestLoad_ConcurrentNumber(t *testing.T) {
	fs := &MockFileSystem{Files: map[string][]byte{
		"/repo/.lintitrc": []byte("concurrent: 4\nlinters:\n  '*.js': eslint\n"),
	}}

	cfg, _, err := NewLoaderWithFS(fs).Load("", "/repo")

	require.NoError(t, err)
	assert.Equal(t, Concurrency(4), cfg.Options.Concurrent)
	assert.False(t, cfg.Options.Concurrent.Sequential())
}

func TestLoad_SearchOrder_FirstDirWins(t *testing.T) {
	fs := &MockFileSystem{Files: map[string][]byte{
		"/repo/sub/.lintitrc.yml": []byte("'*.js': eslint"),
		"/repo/.lintitrc":         []byte("'*.css': stylelint"),
	}}

	cfg, path, err := NewLoaderWithFS(fs).Load("", "/repo/sub", "/repo")

	require.NoError(t, err)
	assert.Equal(t, "/repo/sub/.lintitrc.yml", path)
	assert.Equal(t, "*.js", cfg.Linters[0].Pattern)
}

func TestLoad_ExplicitPath(t *testing.T) {
	fs := &MockFileSystem{Files: map[string][]byte{
		"/elsewhere/lint.yaml": []byte("'*.py': ruff check"),
		"/repo/.lintitrc":      []byte("'*.css': stylelint"),
	}}

	cfg, path, err := NewLoaderWithFS(fs).Load("/elsewhere/lint.yaml", "/repo")

	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/lint.yaml", path)
	assert.Equal(t, []string{"ruff check"}, cfg.Linters[0].Commands)
}

// --- UNHAPPY PATH TESTS ---

func TestLoad_NoConfigFile_ReturnsNotFound(t *testing.T) {
	fs := &MockFileSystem{Files: map[string][]byte{}}

	cfg, _, err := NewLoaderWithFS(fs).Load("", "/repo")

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_ExplicitPathMissing_ReturnsNotFound(t *testing.T) {
	fs := &MockFileSystem{Files: map[string][]byte{}}

	_, _, err := NewLoaderWithFS(fs).Load("/nope.yaml")

	assert.ErrorIs(t, err, ErrConfigNotFound)
	assert.Contains(t, err.Error(), "/nope.yaml")
}

func TestLoad_MalformedYAML_ReturnsParseError(t *testing.T) {
	fs := &MockFileSystem{Files: map[string][]byte{
		"/repo/.lintitrc": []byte("'*.js': [eslint"),
	}}

	_, _, err := NewLoaderWithFS(fs).Load("", "/repo")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "/repo/.lintitrc", parseErr.Path)
}

func TestLoad_PermissionDenied_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{ReadFileErr: os.ErrPermission}

	cfg, _, err := NewLoaderWithFS(fs).Load("", "/repo")

	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestParse_UnknownOption_IsInvalid(t *testing.T) {
	_, err := Parse([]byte("concurency: 2\nlinters:\n  '*.js': eslint\n"))

	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "concurency")
}

func TestParse_WrongShapes(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Empty", ""},
		{"List", "- eslint\n- stylelint\n"},
		{"LintersNotMapping", "linters: eslint\n"},
		{"NestedCommand", "'*.js':\n  run: eslint\n"},
		{"NestedListItem", "'*.js':\n  - [eslint]\n"},
		{"BadConcurrent", "concurrent: lots\nlinters:\n  '*.js': eslint\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			var invalid *InvalidError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestParseConcurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    Concurrency
		wantErr bool
	}{
		{"true", Unbounded, false},
		{"false", 0, false},
		{"0", 0, false},
		{"8", 8, false},
		{"-1", Unbounded, false},
		{"-2", 0, true},
		{"many", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConcurrency(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "-1 (unbounded)")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeOptions_StringValues(t *testing.T) {
	opts := DefaultConfig().Options

	err := decodeOptions(map[string]any{"concurrent": "3", "relative": true}, &opts)

	require.NoError(t, err)
	assert.Equal(t, Concurrency(3), opts.Concurrent)
	assert.True(t, opts.Relative)
	assert.False(t, opts.Shell)
}
