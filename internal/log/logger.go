package log

import (
	"context"
	stdlog "log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}

func WithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// New returns a stdr backed logger writing to stderr. Verbosity follows logr levels,
// so V(1) lines are printed only when verbosity >= 1.
func New(name string, verbosity int) logr.Logger {
	stdr.SetVerbosity(verbosity)
	return stdr.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags)).WithName(name)
}
