package main

import (
	"context"
	"os/signal"
)

// notifyContext derives a context cancelled on the first shutdown signal.
// A second signal falls through to the default handler and exits.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
