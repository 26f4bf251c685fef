package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

var (
	baseOnce sync.Once
	base     *logrus.Logger
)

func shared() *logrus.Logger {
	baseOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		apply(base, os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
	})
	return base
}

// Setup reconfigures the shared logger once config has been resolved.
func Setup(env, level string) {
	apply(shared(), env, level)
}

// SetOutput redirects the shared logger, mostly for tests.
func SetOutput(w io.Writer) {
	shared().SetOutput(w)
}

func apply(l *logrus.Logger, env, level string) {
	// Local env = pretty console; others = JSON
	env = strings.TrimSpace(env)
	if env == "" || env == "local" {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
}

func New() *Logger {
	return &Logger{Entry: logrus.NewEntry(shared())}
}

// Component is shorthand for New().WithField("component", name).
func Component(name string) *Logger {
	return &Logger{Entry: New().Entry.WithField("component", name)}
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *Logger {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.New().String()
	}

	return &Logger{Entry: l.Entry.WithFields(logrus.Fields{
		"req_id":     reqID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})}
}

// WithSession tags entries with a dashboard session id.
func (l *Logger) WithSession(id string) *Logger {
	return &Logger{Entry: l.Entry.WithField("session_id", id)}
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
