// Package citation implements the submission orchestrator.
//
// The service layer owns every Submission, QueueItem, and Batch transition:
// it queues domains against providers (deduplicating via content hash and
// status), drains due queue items by dispatching to the matching provider
// adapter, and maintains batch progress counters. Adapters only return
// results; they never touch this shared state.
//
// Repository implementations live in repository/postgres/.
package citation
