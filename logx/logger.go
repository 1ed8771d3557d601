package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// OutputFormat defines the log output format
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// Fields are structured key/value pairs attached to a log line
type Fields map[string]any

// Logger represents a logger instance
type Logger struct {
	mu      sync.Mutex
	level   Level
	out     io.Writer
	prefix  string
	colored bool
	format  OutputFormat
	now     func() time.Time
}

// New creates a new logger with default settings
func New() *Logger {
	return &Logger{
		level:   InfoLevel,
		out:     os.Stdout,
		colored: true,
		format:  FormatConsole,
		now:     time.Now,
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output destination
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// SetPrefix sets a prefix for all log messages
func (l *Logger) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = prefix
}

// SetColored enables or disables colored output
func (l *Logger) SetColored(colored bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colored = colored
}

// SetFormat sets the output format. JSON output is never colored.
func (l *Logger) SetFormat(format OutputFormat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
	if format == FormatJSON {
		l.colored = false
	}
}

// IsLevelEnabled checks if a level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level != OffLevel && level >= l.level
}

func (l *Logger) log(level Level, msg string, fields Fields) {
	if !l.IsLevelEnabled(level) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.format {
	case FormatJSON:
		l.writeJSON(level, msg, fields)
	default:
		l.writeConsole(level, msg, fields)
	}
}

// writeJSON emits one JSON object per line with fields flattened in.
// Fields never override timestamp, level, message or prefix.
func (l *Logger) writeJSON(level Level, msg string, fields Fields) {
	entry := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["timestamp"] = l.now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["message"] = msg
	if l.prefix != "" {
		entry["prefix"] = l.prefix
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.out, `{"level":"ERROR","message":"logx: unencodable fields: %s"}`+"\n", err)
		return
	}
	fmt.Fprintln(l.out, string(data))
}

func (l *Logger) writeConsole(level Level, msg string, fields Fields) {
	levelStr := level.String()
	if l.colored {
		levelStr = level.paint().Sprint(levelStr)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", l.now().Format("2006-01-02 15:04:05"))
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s]: %s", levelStr, msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fields[k]
		if s, ok := v.(string); ok && strings.ContainsAny(s, " \n\t") {
			fmt.Fprintf(&b, " %s=%q", k, s)
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	b.WriteByte('\n')

	io.WriteString(l.out, b.String())
}

// Trace logs a message at trace level
func (l *Logger) Trace(msg string, args ...any) {
	l.log(TraceLevel, fmt.Sprintf(msg, args...), nil)
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, args ...any) {
	l.log(DebugLevel, fmt.Sprintf(msg, args...), nil)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, args ...any) {
	l.log(InfoLevel, fmt.Sprintf(msg, args...), nil)
}

// Warn logs a message at warn level
func (l *Logger) Warn(msg string, args ...any) {
	l.log(WarnLevel, fmt.Sprintf(msg, args...), nil)
}

// Error logs a message at error level
func (l *Logger) Error(msg string, args ...any) {
	l.log(ErrorLevel, fmt.Sprintf(msg, args...), nil)
}

// Fatal logs a message at error level and exits
func (l *Logger) Fatal(msg string, args ...any) {
	l.log(ErrorLevel, fmt.Sprintf(msg, args...), nil)
	os.Exit(1)
}

// InfoFields logs msg with structured fields at info level
func (l *Logger) InfoFields(msg string, fields Fields) {
	l.log(InfoLevel, msg, fields)
}

// WarnFields logs msg with structured fields at warn level
func (l *Logger) WarnFields(msg string, fields Fields) {
	l.log(WarnLevel, msg, fields)
}

// ErrorFields logs msg with structured fields at error level
func (l *Logger) ErrorFields(msg string, fields Fields) {
	l.log(ErrorLevel, msg, fields)
}
