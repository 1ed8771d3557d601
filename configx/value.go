package configx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Value wraps a configuration value and provides type conversion methods
type Value interface {
	IsSet() bool
	AsString() string
	AsStringDefault(def string) string
	AsInt() int
	AsIntDefault(def int) int
	AsBool() bool
	AsBoolDefault(def bool) bool
	AsDuration() time.Duration
	AsDurationDefault(def time.Duration) time.Duration
	AsSlice() []Value
	AsStringSlice() []string
	AsMap() map[string]Value

	// AsStruct decodes the value into target using its json tags
	AsStruct(target any) error
}

type value struct {
	key string
	val any
}

func newValue(key string, val any) Value {
	return &value{key: key, val: val}
}

func (v *value) IsSet() bool { return v.val != nil }

func (v *value) AsString() string { return v.AsStringDefault("") }

func (v *value) AsStringDefault(def string) string {
	switch val := v.val.(type) {
	case nil:
		return def
	case string:
		return val
	case int, int64, uint, uint64, float32, float64, bool:
		return fmt.Sprint(val)
	}
	return def
}

func (v *value) AsInt() int { return v.AsIntDefault(0) }

func (v *value) AsIntDefault(def int) int {
	switch val := v.val.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case uint64:
		return int(val)
	case float64:
		return int(val)
	case string:
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func (v *value) AsBool() bool { return v.AsBoolDefault(false) }

func (v *value) AsBoolDefault(def bool) bool {
	switch val := v.val.(type) {
	case bool:
		return val
	case int:
		return val != 0
	case string:
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
		switch val {
		case "yes", "y", "Y", "YES":
			return true
		case "no", "n", "N", "NO":
			return false
		}
	}
	return def
}

func (v *value) AsDuration() time.Duration { return v.AsDurationDefault(0) }

// AsDurationDefault treats bare numbers as milliseconds
func (v *value) AsDurationDefault(def time.Duration) time.Duration {
	switch val := v.val.(type) {
	case time.Duration:
		return val
	case int, int64, float64:
		return time.Duration(v.AsInt()) * time.Millisecond
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return def
}

func (v *value) AsSlice() []Value {
	switch val := v.val.(type) {
	case nil:
		return []Value{}
	case []any:
		result := make([]Value, len(val))
		for i, item := range val {
			result[i] = newValue(fmt.Sprintf("%s[%d]", v.key, i), item)
		}
		return result
	}
	return []Value{v}
}

func (v *value) AsStringSlice() []string {
	values := v.AsSlice()
	result := make([]string, len(values))
	for i, val := range values {
		result[i] = val.AsString()
	}
	return result
}

func (v *value) AsMap() map[string]Value {
	m, ok := v.val.(map[string]any)
	if !ok {
		return map[string]Value{}
	}
	result := make(map[string]Value, len(m))
	for k, item := range m {
		result[k] = newValue(v.key+"."+k, item)
	}
	return result
}

func (v *value) AsStruct(target any) error {
	if !v.IsSet() {
		return fmt.Errorf("config key %q not set", v.key)
	}
	data, err := json.Marshal(v.val)
	if err != nil {
		return fmt.Errorf("encoding config key %q: %w", v.key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding config key %q: %w", v.key, err)
	}
	return nil
}
