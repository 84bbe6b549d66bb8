// Package service composes the diff engine with its external
// collaborators: the workflow store (fetch/persist), the backup service
// (pre-mutation snapshots, non-fatal on failure) and the whole-graph
// structural validator (blocks persistence unless the operator override is
// set).
//
// Control flow per request: fetch the workflow, snapshot it, run the diff
// batch under the requested policy, structurally validate the committed
// graph, then persist. Validate-only requests stop after the diff phase
// and never touch the store or the backup history.
//
//	svc, err := service.New(service.Config{
//		Store:  memory.NewMemoryWorkflowStore(),
//		Backup: backup.NewService(backup.Options{MaxVersions: 10}),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	resp, err := svc.ApplyDiff(ctx, service.Request{
//		WorkflowID: id,
//		Operations: ops,
//	})
package service
