// Package workers implements the bounded worker pool that hosts blocking
// workflow entry points.
//
// The pool manages a fixed number of goroutines fed by a bounded queue:
//   - Submit enqueues a job and hands back a result channel the dispatcher
//     awaits cooperatively
//   - a full queue rejects with a timeout instead of queueing unboundedly
//   - jobs capture their execution context explicitly in the closure
//
// The health monitor tracks worker status and records metrics.
package workers
