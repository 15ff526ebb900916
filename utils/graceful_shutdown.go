package utils

import "context"

// GracefulShutdown waits for ctx to end, runs cleanup, and cancels the session context.
func GracefulShutdown(ctx context.Context, cancel context.CancelFunc, cleanup func()) {
	<-ctx.Done()

	if cleanup != nil {
		cleanup()
	}
	cancel()
}
