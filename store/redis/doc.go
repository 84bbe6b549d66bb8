// Package redis provides a Redis-backed workflow store.
//
// Each workflow is stored as a JSON document under a prefixed key, with a
// set-based index of known workflow ids. An optional TTL expires workflows
// (and the index) for cache-style deployments.
//
// # Usage
//
//	s := redis.NewRedisWorkflowStore(redis.RedisOptions{
//		Addr:   "localhost:6379",
//		Prefix: "flowdiff:",
//	})
//
//	g, err := s.Fetch(ctx, workflowID)
//
// Tests run against github.com/alicebob/miniredis so no server is needed.
package redis
