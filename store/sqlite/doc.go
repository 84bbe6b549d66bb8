// Package sqlite provides a SQLite-backed workflow store.
//
// Workflows are stored as JSON documents in a single table, created on
// first use. Suitable for single-process deployments and local tooling.
//
// # Usage
//
//	s, err := sqlite.NewSqliteWorkflowStore(sqlite.SqliteOptions{
//		Path: "workflows.db",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	g, err := s.Fetch(ctx, workflowID)
//
// Use Path ":memory:" for an ephemeral store in tests.
package sqlite
