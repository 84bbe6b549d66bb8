// Package store defines the workflow persistence interface used by the
// service layer, with interchangeable backends in the subpackages:
// store/memory for tests and embedding, store/sqlite for single-file
// deployments, store/redis for shared caches and store/postgres for
// production databases.
//
// Persist canonicalizes the stored workflow: an empty id gets a generated
// one and UpdatedAt is stamped. Fetch of an unknown id fails with
// ErrWorkflowNotFound.
package store
