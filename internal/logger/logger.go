// Package logger writes one JSON object per line for cfp-search.
//
// Entries carry a timestamp, a level, a message and optional Fields. The package-level
// functions log through Default, which the CLI replaces once the config is loaded:
//
//	logger.Info("Search finished", logger.Fields{
//	    "keyword": "machine learning",
//	    "matched": 42,
//	})
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a config string such as "info" into a Level
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[level]; !ok {
		return "", fmt.Errorf("invalid log level: %q", s)
	}
	return level, nil
}

// Fields holds structured values attached to an entry
type Fields map[string]interface{}

// Entry is the JSON shape of one log line
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// sink is shared by a Logger and the children created with With
type sink struct {
	mu  sync.Mutex
	out io.Writer
}

// Logger filters entries below its level and writes the rest to its output
type Logger struct {
	level  Level
	sink   *sink
	fields Fields
	now    func() time.Time
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(LevelInfo, os.Stderr)
)

// New creates a Logger writing to output
func New(level Level, output io.Writer) *Logger {
	return &Logger{
		level: level,
		sink:  &sink{out: output},
		now:   time.Now,
	}
}

// SetDefault replaces the logger used by the package-level functions
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default returns the logger used by the package-level functions
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// With returns a child logger that adds fields to every entry.
// Fields given to a single call win over the child's fields.
func (l *Logger) With(fields Fields) *Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{level: l.level, sink: l.sink, fields: merged, now: l.now}
}

// Enabled reports whether entries at level are written
func (l *Logger) Enabled(level Level) bool {
	return levelRank[level] >= levelRank[l.level]
}

func (l *Logger) write(level Level, message string, fields Fields, err error) {
	if !l.Enabled(level) {
		return
	}

	entry := Entry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   message,
		Fields:    l.merge(fields),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if marshalErr != nil {
		fmt.Fprintf(l.sink.out, "%s %s %s (unencodable fields: %v)\n",
			entry.Timestamp, entry.Level, entry.Message, marshalErr)
		return
	}
	l.sink.out.Write(append(data, '\n'))
}

func (l *Logger) merge(fields Fields) Fields {
	if len(l.fields) == 0 {
		return fields
	}
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

func (l *Logger) Debug(message string, fields Fields) {
	l.write(LevelDebug, message, fields, nil)
}

func (l *Logger) Info(message string, fields Fields) {
	l.write(LevelInfo, message, fields, nil)
}

func (l *Logger) Warn(message string, fields Fields) {
	l.write(LevelWarn, message, fields, nil)
}

func (l *Logger) Error(message string, fields Fields, err error) {
	l.write(LevelError, message, fields, err)
}

// StdLogger adapts l for APIs that want a *log.Logger, such as http.Server.ErrorLog.
// Each printed line becomes one entry at level.
func (l *Logger) StdLogger(level Level) *log.Logger {
	return log.New(lineWriter{logger: l, level: level}, "", 0)
}

type lineWriter struct {
	logger *Logger
	level  Level
}

func (w lineWriter) Write(p []byte) (int, error) {
	w.logger.write(w.level, strings.TrimSpace(string(p)), nil, nil)
	return len(p), nil
}

func Debug(message string, fields Fields) {
	Default().Debug(message, fields)
}

func Info(message string, fields Fields) {
	Default().Info(message, fields)
}

func Warn(message string, fields Fields) {
	Default().Warn(message, fields)
}

func Error(message string, fields Fields, err error) {
	Default().Error(message, fields, err)
}
