package obs

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	loggerMu sync.Mutex
	logger   *zerolog.Logger
)

// Logger returns the shared structured logger used across the service.
func Logger() zerolog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		l := newLogger(os.Stdout)
		logger = &l
	}
	return *logger
}

// SetOutput redirects the shared logger, primarily for tests capturing log lines.
func SetOutput(w io.Writer) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	l := newLogger(w)
	logger = &l
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().
		Timestamp().
		Str("service", "coopra-api").
		Logger()
}
