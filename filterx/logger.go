package filterx

import (
	"github.com/rs/zerolog"

	"github.com/Abraxas-365/exceptionx/logx"
)

// Record is the structured log entry emitted for a normalized error.
// IncidentID correlates log lines and is never sent to clients.
type Record struct {
	Message    string `json:"message"`
	ErrorCode  string `json:"errorCode"`
	Path       string `json:"path"`
	Trace      string `json:"trace,omitempty"`
	IncidentID string `json:"incidentId"`
}

// Fields returns the record as logx fields, without the message
func (r Record) Fields() logx.Fields {
	fields := logx.Fields{
		"errorCode":  r.ErrorCode,
		"path":       r.Path,
		"incidentId": r.IncidentID,
	}
	if r.Trace != "" {
		fields["trace"] = r.Trace
	}
	return fields
}

// Logger receives error records. Implementations must not block for long;
// the filter calls them inline before writing the response.
type Logger interface {
	Error(record Record)
}

// LoggerFunc adapts a function to Logger
type LoggerFunc func(Record)

func (fn LoggerFunc) Error(record Record) { fn(record) }

// LogxLogger writes records through a logx.Logger; nil uses the global logger
func LogxLogger(l *logx.Logger) Logger {
	if l == nil {
		l = logx.GetLogger()
	}
	return LoggerFunc(func(r Record) {
		l.ErrorFields(r.Message, r.Fields())
	})
}

// ZerologLogger writes records through a zerolog.Logger
func ZerologLogger(zl zerolog.Logger) Logger {
	return LoggerFunc(func(r Record) {
		ev := zl.Error().
			Str("errorCode", r.ErrorCode).
			Str("path", r.Path).
			Str("incidentId", r.IncidentID)
		if r.Trace != "" {
			ev = ev.Str("trace", r.Trace)
		}
		ev.Msg(r.Message)
	})
}
