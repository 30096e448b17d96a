// Package store defines the persistence contracts for users and tasks, the
// sentinel errors every implementation returns, and the transaction helpers
// services use to group reads and writes.
//
// Implementations live in internal/platform/postgres; in-memory doubles for
// tests live in internal/mocks.
package store
