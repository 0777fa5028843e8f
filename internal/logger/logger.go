// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/iliyamo/hotel-booking/internal/config"
)

// New returns a logger writing to stderr (console or JSON) and, when
// cfg.File is set, to a rotating file as JSON.  The returned closer releases
// the file and is never nil.  The global zerolog logger is replaced too so
// packages that log through zerolog/log pick up the same sinks.
func New(cfg config.LogConfig) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var stderr io.Writer = os.Stderr
	if cfg.Console {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	out := stderr
	if cfg.File != "" {
		_ = os.MkdirAll(filepath.Dir(cfg.File), 0o755)
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		out = zerolog.MultiLevelWriter(stderr, lj)
		closer = lj
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = l
	zerolog.SetGlobalLevel(level)
	return l, closer
}

// NewFile returns a JSON logger that only writes to a rotating file at path.
// The booking consumer uses it for the booking log.
func NewFile(path string, maxSizeMB, maxBackups int) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		LocalTime:  true,
	}
	return zerolog.New(lj).With().Timestamp().Logger(), lj, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
