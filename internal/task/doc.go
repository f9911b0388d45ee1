// Package task runs background work off the request path.
//
// Tasks are queued in memory on a bounded TaskQueue and executed by a
// WorkerPool; TaskRunner ties the two together. Nothing is persisted:
// work lost on shutdown is picked up again by the periodic sweep that
// SweepScheduler drives.
package task
