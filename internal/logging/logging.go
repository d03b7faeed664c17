// Package logging adapts logrus and slog loggers to the key/value Logger the
// client uses.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/sirupsen/logrus"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

// Logrus adapts a logrus logger
type Logrus struct {
	entry *logrus.Entry
}

// NewLogrus wraps l. A nil logger creates an SDK-owned logger at debug level
// writing to stderr.
func NewLogrus(l *logrus.Logger) *Logrus {
	if l == nil {
		l = logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.DebugLevel)
	}
	return &Logrus{entry: logrus.NewEntry(l).WithField("component", "ubeu")}
}

func (l *Logrus) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l *Logrus) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Info(msg)
}

func (l *Logrus) Warn(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Warn(msg)
}

func (l *Logrus) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Error(msg)
}

// fields pairs up keys and values. A trailing key without a value is kept
// under "!BADKEY", matching slog.
func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if i+1 >= len(keysAndValues) {
			f["!BADKEY"] = key
			break
		}
		f[key] = keysAndValues[i+1]
	}
	return f
}

// Slog adapts an slog logger
type Slog struct {
	logger *slog.Logger
}

// NewSlog wraps l. A nil logger uses slog.Default().
func NewSlog(l *slog.Logger) *Slog {
	if l == nil {
		l = slog.Default()
	}
	return &Slog{logger: l}
}

func (l *Slog) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *Slog) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *Slog) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}

func (l *Slog) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

// NewTint builds a colorized slog logger for terminals
func NewTint(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// New returns the logger for a log format: "tint", "json" or "logrus"
func New(format string, w io.Writer, debug bool) types.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	switch format {
	case "json":
		return NewSlog(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
	case "logrus":
		l := logrus.New()
		l.SetOutput(w)
		if debug {
			l.SetLevel(logrus.DebugLevel)
		}
		return NewLogrus(l)
	default:
		return NewSlog(NewTint(w, level))
	}
}

var (
	_ types.Logger = (*Logrus)(nil)
	_ types.Logger = (*Slog)(nil)
)
