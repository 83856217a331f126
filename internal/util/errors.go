package util

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"
)

// RecoverPanic logs a recovered panic with the stack of the panic site and
// exits. Deferred at the top of the goroutines the serve command runs.
func RecoverPanic(log logger.Logger) {
	if r := recover(); r != nil {
		log.Error("a panic has occurred: %+v", panicError(r))
		os.Exit(2) // same exit code as panic
	}
}

// panicError normalizes a recovered value into an error. The captured stack
// skips the recovery frames so it points at the panic site.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return errors.WithStackDepth(err, 3)
	}
	return errors.NewWithDepthf(3, "panic: %v", r)
}
