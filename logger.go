package memio

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	logger.Store(&nop)
}

// SetLogger installs the logger used for failures that cannot be returned to
// the caller, such as a close error while tearing down a handle. The default
// logger discards everything.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// Logger returns the logger installed with SetLogger.
func Logger() *zerolog.Logger {
	return logger.Load()
}
