package configx

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvSource loads configuration from environment variables.
// With prefix "APP_", APP_EXCEPTIONS_DEV=true becomes exceptions.dev.
type EnvSource struct {
	prefix   string
	priority int
}

// NewEnvSource creates a new environment variable source
func NewEnvSource(prefix string, priority int) Source {
	return &EnvSource{prefix: prefix, priority: priority}
}

func (s *EnvSource) Load() (map[string]any, error) {
	result := make(map[string]any)
	for _, env := range os.Environ() {
		key, val, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, s.prefix) {
			continue
		}
		setKey(result, strings.TrimPrefix(key, s.prefix), val)
	}
	return result, nil
}

func (s *EnvSource) Name() string  { return fmt.Sprintf("env(%s)", s.prefix) }
func (s *EnvSource) Priority() int { return s.priority }

// DotEnvSource loads configuration from a .env file with the same key
// mapping as EnvSource
type DotEnvSource struct {
	path     string
	priority int
}

// NewDotEnvSource creates a new .env file source
func NewDotEnvSource(path string, priority int) Source {
	return &DotEnvSource{path: path, priority: priority}
}

func (s *DotEnvSource) Load() (map[string]any, error) {
	env, err := godotenv.Read(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	result := make(map[string]any)
	for k, v := range env {
		setKey(result, k, v)
	}
	return result, nil
}

func (s *DotEnvSource) Name() string  { return fmt.Sprintf("dotenv(%s)", s.path) }
func (s *DotEnvSource) Priority() int { return s.priority }

// FileSource loads a YAML document. JSON files parse too.
type FileSource struct {
	path     string
	priority int
}

// NewFileSource creates a new file source
func NewFileSource(path string, priority int) Source {
	return &FileSource{path: path, priority: priority}
}

func (s *FileSource) Load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return result, nil
}

func (s *FileSource) Name() string  { return fmt.Sprintf("file(%s)", s.path) }
func (s *FileSource) Priority() int { return s.priority }

// MapSource loads configuration from an in-memory map
type MapSource struct {
	values   map[string]any
	name     string
	priority int
}

// NewMapSource creates a new map source. The map is copied.
func NewMapSource(values map[string]any, name string, priority int) Source {
	return &MapSource{values: deepCopyMap(values), name: name, priority: priority}
}

func (s *MapSource) Load() (map[string]any, error) { return deepCopyMap(s.values), nil }
func (s *MapSource) Name() string                    { return s.name }
func (s *MapSource) Priority() int                   { return s.priority }

// setKey maps SERVER_PORT to server.port and converts the value
func setKey(dst map[string]any, key, val string) {
	key = strings.ToLower(key)
	if key == "" {
		return
	}
	setNested(dst, strings.Split(key, "_"), convertValue(val))
}

// convertValue turns env strings into bool, int or float where they parse
func convertValue(val string) any {
	switch strings.ToLower(val) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}
	if i, err := strconv.Atoi(val); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	return val
}
