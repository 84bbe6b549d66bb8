package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/flowdiff/store"
	"github.com/smallnest/flowdiff/workflow"
)

// SqliteWorkflowStore implements store.WorkflowStore using SQLite
type SqliteWorkflowStore struct {
	db        *sql.DB
	tableName string
}

var _ store.WorkflowStore = (*SqliteWorkflowStore)(nil)

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path      string
	TableName string // Default "workflows"
}

// NewSqliteWorkflowStore creates a new SQLite workflow store
func NewSqliteWorkflowStore(opts SqliteOptions) (*SqliteWorkflowStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "workflows"
	}

	s := &SqliteWorkflowStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *SqliteWorkflowStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			document TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`, s.tableName)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteWorkflowStore) Close() error {
	return s.db.Close()
}

// Fetch retrieves a workflow by id
func (s *SqliteWorkflowStore) Fetch(ctx context.Context, id string) (*workflow.Graph, error) {
	query := fmt.Sprintf("SELECT document FROM %s WHERE id = ?", s.tableName)

	var document string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&document)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", store.ErrWorkflowNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch workflow: %w", err)
	}

	var g workflow.Graph
	if err := json.Unmarshal([]byte(document), &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}
	return &g, nil
}

// Persist stores the workflow and returns the canonicalized result
func (s *SqliteWorkflowStore) Persist(ctx context.Context, g *workflow.Graph) (*workflow.Graph, error) {
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
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			document = excluded.document,
			updated_at = excluded.updated_at
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query, stored.ID, stored.Name, string(document), stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to persist workflow: %w", err)
	}

	return stored, nil
}

// Delete removes a workflow
func (s *SqliteWorkflowStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrWorkflowNotFound, id)
	}
	return nil
}

// List returns the ids of all stored workflows
func (s *SqliteWorkflowStore) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT id FROM %s ORDER BY updated_at ASC", s.tableName)

	rows, err := s.db.QueryContext(ctx, query)
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
