// Package backup implements the pre-mutation snapshot collaborator: before
// a diff is applied, the service layer asks Service.Snapshot to store a
// deep copy of the current workflow as a numbered version, pruning history
// beyond a configurable cap.
//
// Backup failures are non-fatal by contract: the caller logs them and
// proceeds with the diff.
package backup
