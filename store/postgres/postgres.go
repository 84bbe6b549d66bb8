package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/flowdiff/store"
	"github.com/smallnest/flowdiff/workflow"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresWorkflowStore implements store.WorkflowStore using PostgreSQL
type PostgresWorkflowStore struct {
	pool      DBPool
	tableName string
}

var _ store.WorkflowStore = (*PostgresWorkflowStore)(nil)

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "workflows"
}

// NewPostgresWorkflowStore creates a new Postgres workflow store
func NewPostgresWorkflowStore(ctx context.Context, opts PostgresOptions) (*PostgresWorkflowStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "workflows"
	}

	return &PostgresWorkflowStore{
		pool:      pool,
		tableName: tableName,
	}, nil
}

// NewPostgresWorkflowStoreWithPool creates a new Postgres workflow store with an existing pool
// Useful for testing with mocks
func NewPostgresWorkflowStoreWithPool(pool DBPool, tableName string) *PostgresWorkflowStore {
	if tableName == "" {
		tableName = "workflows"
	}
	return &PostgresWorkflowStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *PostgresWorkflowStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			document JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresWorkflowStore) Close() {
	s.pool.Close()
}

// Fetch retrieves a workflow by id
func (s *PostgresWorkflowStore) Fetch(ctx context.Context, id string) (*workflow.Graph, error) {
	query := fmt.Sprintf("SELECT document FROM %s WHERE id = $1", s.tableName)

	var document []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrWorkflowNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch workflow: %w", err)
	}

	var g workflow.Graph
	if err := json.Unmarshal(document, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}
	return &g, nil
}

// Persist stores the workflow and returns the canonicalized result
func (s *PostgresWorkflowStore) Persist(ctx context.Context, g *workflow.Graph) (*workflow.Graph, error) {
	stored := g.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = time.Now().UTC()

	document, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, document, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query, stored.ID, stored.Name, document, stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to persist workflow: %w", err)
	}

	return stored, nil
}

// Delete removes a workflow
func (s *PostgresWorkflowStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrWorkflowNotFound, id)
	}
	return nil
}

// List returns the ids of all stored workflows
func (s *PostgresWorkflowStore) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT id FROM %s ORDER BY updated_at ASC", s.tableName)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow rows: %w", err)
	}

	return ids, nil
}
