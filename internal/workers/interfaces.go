// Package workers runs the client's background jobs in a unified way.
// It defines the Worker interface and a Workers aggregate; the periodic
// synchronization job is registered here by the client entrypoint.
package workers

import "context"

// Worker is a long-running background job. Run is expected to return
// quickly, spawning goroutines internally; Stop blocks until the
// worker's goroutines have exited.
type Worker interface {
	Run(ctx context.Context)
	Stop()
}
