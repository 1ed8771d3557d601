package logx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level is the minimum severity a Logger writes
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	// OffLevel disables output entirely
	OffLevel
)

// ErrInvalidLevel is returned for a level name no Level answers to
var ErrInvalidLevel = errors.New("invalid log level")

type levelInfo struct {
	name    string
	aliases []string
	attrs   []color.Attribute
}

var levels = [...]levelInfo{
	TraceLevel: {name: "TRACE", attrs: []color.Attribute{color.FgHiBlack}},
	DebugLevel: {name: "DEBUG", attrs: []color.Attribute{color.FgCyan}},
	InfoLevel:  {name: "INFO", attrs: []color.Attribute{color.FgGreen}},
	WarnLevel:  {name: "WARN", aliases: []string{"WARNING"}, attrs: []color.Attribute{color.FgYellow}},
	ErrorLevel: {name: "ERROR", attrs: []color.Attribute{color.FgRed, color.Bold}},
	OffLevel:   {name: "OFF", aliases: []string{"NONE", "SILENT"}},
}

func (l Level) valid() bool { return l >= TraceLevel && l <= OffLevel }

func (l Level) String() string {
	if !l.valid() {
		return "UNKNOWN"
	}
	return levels[l].name
}

// ParseLevel resolves a level name or alias, ignoring case and surrounding
// space. Unknown names return InfoLevel and ErrInvalidLevel.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for l, info := range levels {
		if info.name == name {
			return Level(l), nil
		}
		for _, alias := range info.aliases {
			if alias == name {
				return Level(l), nil
			}
		}
	}
	return InfoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// MarshalText encodes the level by name
func (l Level) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name, so a Level can sit directly in YAML,
// JSON or env-backed config structs.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l Level) paint() *color.Color {
	if !l.valid() || len(levels[l].attrs) == 0 {
		return color.New(color.Reset)
	}
	return color.New(levels[l].attrs...)
}
