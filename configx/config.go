package configx

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Config represents the main configuration interface
type Config interface {
	// Get retrieves a configuration value by dotted key
	Get(key string) Value

	// Set sets a configuration value
	Set(key string, val any)

	// Has checks if a configuration key exists
	Has(key string) bool

	// AllSettings returns a copy of all settings
	AllSettings() map[string]any

	// LoadAll reloads every source in priority order
	LoadAll() error
}

// Source represents a configuration source
type Source interface {
	// Load loads configuration values from the source
	Load() (map[string]any, error)

	// Name returns the name of the source
	Name() string

	// Priority returns the priority of the source (higher values override lower)
	Priority() int
}

const (
	PriorityDefault = 10
	PriorityEnv     = 20
	PriorityDotEnv  = 25
	PriorityFile    = 30
	PriorityMap     = 40
)

// configuration is the concrete implementation of Config
type configuration struct {
	sync.RWMutex
	values  map[string]any
	sources []Source
}

// New creates a Config from sources and loads them
func New(sources ...Source) (Config, error) {
	cfg := &configuration{
		values:  make(map[string]any),
		sources: append([]Source(nil), sources...),
	}
	sort.SliceStable(cfg.sources, func(i, j int) bool {
		return cfg.sources[i].Priority() < cfg.sources[j].Priority()
	})
	if err := cfg.LoadAll(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *configuration) Get(key string) Value {
	c.RLock()
	defer c.RUnlock()

	if key == "" {
		return newValue("", c.values)
	}
	return newValue(key, c.findValue(key))
}

// findValue walks dotted keys through nested maps
func (c *configuration) findValue(key string) any {
	current := c.values
	parts := strings.Split(key, ".")
	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return nil
		}
		if i == len(parts)-1 {
			return v
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		current = m
	}
	return nil
}

func (c *configuration) Set(key string, val any) {
	c.Lock()
	defer c.Unlock()
	setNested(c.values, strings.Split(key, "."), val)
}

func (c *configuration) Has(key string) bool {
	c.RLock()
	defer c.RUnlock()
	return c.findValue(key) != nil
}

func (c *configuration) AllSettings() map[string]any {
	c.RLock()
	defer c.RUnlock()
	return deepCopyMap(c.values)
}

func (c *configuration) LoadAll() error {
	values := make(map[string]any)
	for _, source := range c.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("loading config source %s: %w", source.Name(), err)
		}
		mergeMap(values, data)
	}

	c.Lock()
	c.values = values
	c.Unlock()
	return nil
}

// setNested creates intermediate maps as needed, replacing non-map values
func setNested(dst map[string]any, parts []string, val any) {
	for _, part := range parts[:len(parts)-1] {
		next, ok := dst[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			dst[part] = next
		}
		dst = next
	}
	dst[parts[len(parts)-1]] = val
}

// mergeMap merges src into dst; nested maps merge, anything else replaces
func mergeMap(dst, src map[string]any) {
	for k, v := range src {
		srcMap, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		if dstMap, ok := dst[k].(map[string]any); ok {
			mergeMap(dstMap, srcMap)
			continue
		}
		dst[k] = deepCopyMap(srcMap)
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = deepCopyValue(v)
	}
	return result
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return val
	}
}

// Builder provides a fluent API for building configuration
type Builder interface {
	// FromFile adds a YAML (or JSON) file source
	FromFile(path string) Builder

	// FromDotEnv adds a .env file source
	FromDotEnv(path string) Builder

	// FromEnv adds an environment variable source
	FromEnv(prefix string) Builder

	// FromMap adds a map source
	FromMap(values map[string]any, name string) Builder

	// WithDefaults adds default values
	WithDefaults(defaults map[string]any) Builder

	// RequireEnv specifies environment variables that must be present
	RequireEnv(envVars ...string) Builder

	// Build loads every source
	Build() (Config, error)
}

type builder struct {
	sources     []Source
	requiredEnv []string
}

// NewBuilder creates a new configuration builder
func NewBuilder() Builder {
	return &builder{}
}

func (b *builder) FromFile(path string) Builder {
	b.sources = append(b.sources, NewFileSource(path, PriorityFile))
	return b
}

func (b *builder) FromDotEnv(path string) Builder {
	b.sources = append(b.sources, NewDotEnvSource(path, PriorityDotEnv))
	return b
}

func (b *builder) FromEnv(prefix string) Builder {
	b.sources = append(b.sources, NewEnvSource(prefix, PriorityEnv))
	return b
}

func (b *builder) FromMap(values map[string]any, name string) Builder {
	b.sources = append(b.sources, NewMapSource(values, name, PriorityMap))
	return b
}

func (b *builder) WithDefaults(defaults map[string]any) Builder {
	b.sources = append(b.sources, NewMapSource(defaults, "defaults", PriorityDefault))
	return b
}

func (b *builder) RequireEnv(envVars ...string) Builder {
	b.requiredEnv = append(b.requiredEnv, envVars...)
	return b
}

func (b *builder) Build() (Config, error) {
	if err := RequireEnv(b.requiredEnv...); err != nil {
		return nil, err
	}
	return New(b.sources...)
}

// RequireEnv returns an error naming every variable that is unset or empty
func RequireEnv(envVars ...string) error {
	var missing []string
	seen := make(map[string]bool, len(envVars))
	for _, env := range envVars {
		if seen[env] {
			continue
		}
		seen[env] = true
		if os.Getenv(env) == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
