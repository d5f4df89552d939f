package osutil

import (
	"context"
	"os/signal"
	"syscall"
)

// Returns a context that will live until Ctrl+C is pressed, and a function
// to release the signal handler once the program is done.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
