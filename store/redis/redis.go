package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smallnest/flowdiff/store"
	"github.com/smallnest/flowdiff/workflow"
)

// RedisWorkflowStore implements store.WorkflowStore using Redis
type RedisWorkflowStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.WorkflowStore = (*RedisWorkflowStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "flowdiff:"
	TTL      time.Duration // Expiration for workflows, default 0 (no expiration)
}

// NewRedisWorkflowStore creates a new Redis workflow store
func NewRedisWorkflowStore(opts RedisOptions) *RedisWorkflowStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "flowdiff:"
	}

	return &RedisWorkflowStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

func (s *RedisWorkflowStore) workflowKey(id string) string {
	return fmt.Sprintf("%sworkflow:%s", s.prefix, id)
}

func (s *RedisWorkflowStore) indexKey() string {
	return s.prefix + "workflows"
}

// Fetch retrieves a workflow by id
func (s *RedisWorkflowStore) Fetch(ctx context.Context, id string) (*workflow.Graph, error) {
	data, err := s.client.Get(ctx, s.workflowKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", store.ErrWorkflowNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch workflow from redis: %w", err)
	}

	var g workflow.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}
	return &g, nil
}

// Persist stores the workflow and returns the canonicalized result
func (s *RedisWorkflowStore) Persist(ctx context.Context, g *workflow.Graph) (*workflow.Graph, error) {
	stored := g.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.workflowKey(stored.ID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), stored.ID)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to persist workflow to redis: %w", err)
	}

	return stored, nil
}

// Delete removes a workflow
func (s *RedisWorkflowStore) Delete(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, s.workflowKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", store.ErrWorkflowNotFound, id)
	}
	if err := s.client.SRem(ctx, s.indexKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to remove workflow from index: %w", err)
	}
	return nil
}

// List returns the ids of all stored workflows
func (s *RedisWorkflowStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return ids, nil
}
