package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/flytta/internal/app"
	"github.com/hylla/flytta/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate. Position columns are REAL: ordering keys are
// fractional between reorders and only renumbered to clean values on commit.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			position REAL NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			archived_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS columns (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			name TEXT NOT NULL,
			position REAL NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			archived_at TEXT,
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			column_id TEXT NOT NULL,
			position REAL NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL,
			due_at TEXT,
			labels_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			archived_at TEXT,
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE,
			FOREIGN KEY(column_id) REFERENCES columns(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_boards_position ON boards(position);`,
		`CREATE INDEX IF NOT EXISTS idx_columns_board_position ON columns(board_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_board_column_position ON tasks(board_id, column_id, position);`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateBoard creates board.
func (r *Repository) CreateBoard(ctx context.Context, b domain.Board) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO boards(id, slug, name, description, position, created_at, updated_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Slug, b.Name, b.Description, b.Position, ts(b.CreatedAt), ts(b.UpdatedAt), nullableTS(b.ArchivedAt))
	return err
}

// UpdateBoard updates state for the requested operation.
func (r *Repository) UpdateBoard(ctx context.Context, b domain.Board) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE boards
		SET slug = ?, name = ?, description = ?, position = ?, updated_at = ?, archived_at = ?
		WHERE id = ?
	`, b.Slug, b.Name, b.Description, b.Position, ts(b.UpdatedAt), nullableTS(b.ArchivedAt), b.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetBoard returns board.
func (r *Repository) GetBoard(ctx context.Context, id string) (domain.Board, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, slug, name, description, position, created_at, updated_at, archived_at
		FROM boards
		WHERE id = ?
	`, id)
	return scanBoard(row)
}

// ListBoards lists boards.
func (r *Repository) ListBoards(ctx context.Context, includeArchived bool) ([]domain.Board, error) {
	query := `
		SELECT id, slug, name, description, position, created_at, updated_at, archived_at
		FROM boards
	`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY position ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Board{}
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, board)
	}
	return out, rows.Err()
}

// CreateColumn creates column.
func (r *Repository) CreateColumn(ctx context.Context, c domain.Column) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO columns(id, board_id, name, position, created_at, updated_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.BoardID, c.Name, c.Position, ts(c.CreatedAt), ts(c.UpdatedAt), nullableTS(c.ArchivedAt))
	return err
}

// UpdateColumn updates state for the requested operation.
func (r *Repository) UpdateColumn(ctx context.Context, c domain.Column) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE columns
		SET name = ?, position = ?, updated_at = ?, archived_at = ?
		WHERE id = ?
	`, c.Name, c.Position, ts(c.UpdatedAt), nullableTS(c.ArchivedAt), c.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetColumn returns column.
func (r *Repository) GetColumn(ctx context.Context, id string) (domain.Column, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, board_id, name, position, created_at, updated_at, archived_at
		FROM columns
		WHERE id = ?
	`, id)
	return scanColumn(row)
}

// ListColumns lists columns.
func (r *Repository) ListColumns(ctx context.Context, boardID string, includeArchived bool) ([]domain.Column, error) {
	query := `
		SELECT id, board_id, name, position, created_at, updated_at, archived_at
		FROM columns
		WHERE board_id = ?
	`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Column{}
	for rows.Next() {
		column, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, column)
	}
	return out, rows.Err()
}

// CreateTask creates task.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) error {
	labelsJSON, err := json.Marshal(t.Labels)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks(id, board_id, column_id, position, title, description, priority, due_at, labels_json, created_at, updated_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.BoardID,
		t.ColumnID,
		t.Position,
		t.Title,
		t.Description,
		string(t.Priority),
		nullableTS(t.DueAt),
		string(labelsJSON),
		ts(t.CreatedAt),
		ts(t.UpdatedAt),
		nullableTS(t.ArchivedAt),
	)
	return err
}

// UpdateTask updates state for the requested operation.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) error {
	labelsJSON, err := json.Marshal(t.Labels)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET board_id = ?, column_id = ?, position = ?, title = ?, description = ?, priority = ?, due_at = ?, labels_json = ?, updated_at = ?, archived_at = ?
		WHERE id = ?
	`,
		t.BoardID,
		t.ColumnID,
		t.Position,
		t.Title,
		t.Description,
		string(t.Priority),
		nullableTS(t.DueAt),
		string(labelsJSON),
		ts(t.UpdatedAt),
		nullableTS(t.ArchivedAt),
		t.ID,
	)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, board_id, column_id, position, title, description, priority, due_at, labels_json, created_at, updated_at, archived_at
		FROM tasks
		WHERE id = ?
	`, id)
	return scanTask(row)
}

// ListTasks lists tasks.
func (r *Repository) ListTasks(ctx context.Context, boardID string, includeArchived bool) ([]domain.Task, error) {
	query := `
		SELECT id, board_id, column_id, position, title, description, priority, due_at, labels_json, created_at, updated_at, archived_at
		FROM tasks
		WHERE board_id = ?
	`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY column_id ASC, position ASC`

	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// DeleteTask deletes task.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// SaveTaskPositions applies a batched position update in one transaction.
// Either every row of the batch lands or none do, which is what lets the
// in-memory rollback above this layer stay truthful.
func (r *Repository) SaveTaskPositions(ctx context.Context, updates []app.TaskPositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := ts(time.Now())
	for _, u := range updates {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE tasks
			SET column_id = ?, position = ?, updated_at = ?
			WHERE id = ?
		`, u.ColumnID, u.Position, now, u.TaskID)
		if err != nil {
			return err
		}
		if err = translateNoRows(res); err != nil {
			return fmt.Errorf("save position of task %s: %w", u.TaskID, err)
		}
	}

	err = tx.Commit()
	return err
}

// SaveColumnPositions applies a batched column order update in one
// transaction, mirroring SaveTaskPositions.
func (r *Repository) SaveColumnPositions(ctx context.Context, updates []app.ColumnPositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := ts(time.Now())
	for _, u := range updates {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE columns
			SET position = ?, updated_at = ?
			WHERE id = ?
		`, u.Position, now, u.ColumnID)
		if err != nil {
			return err
		}
		if err = translateNoRows(res); err != nil {
			return fmt.Errorf("save position of column %s: %w", u.ColumnID, err)
		}
	}

	err = tx.Commit()
	return err
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanBoard handles scan board.
func scanBoard(s scanner) (domain.Board, error) {
	var (
		b          domain.Board
		createdRaw string
		updatedRaw string
		archived   sql.NullString
	)
	if err := s.Scan(&b.ID, &b.Slug, &b.Name, &b.Description, &b.Position, &createdRaw, &updatedRaw, &archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, app.ErrNotFound
		}
		return domain.Board{}, err
	}
	b.CreatedAt = parseTS(createdRaw)
	b.UpdatedAt = parseTS(updatedRaw)
	b.ArchivedAt = parseNullTS(archived)
	return b, nil
}

// scanColumn handles scan column.
func scanColumn(s scanner) (domain.Column, error) {
	var (
		c          domain.Column
		createdRaw string
		updatedRaw string
		archived   sql.NullString
	)
	if err := s.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &createdRaw, &updatedRaw, &archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Column{}, app.ErrNotFound
		}
		return domain.Column{}, err
	}
	c.CreatedAt = parseTS(createdRaw)
	c.UpdatedAt = parseTS(updatedRaw)
	c.ArchivedAt = parseNullTS(archived)
	return c, nil
}

// scanTask handles scan task.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t           domain.Task
		priority    string
		dueRaw      sql.NullString
		labelsRaw   string
		createdRaw  string
		updatedRaw  string
		archivedRaw sql.NullString
	)
	if err := s.Scan(
		&t.ID,
		&t.BoardID,
		&t.ColumnID,
		&t.Position,
		&t.Title,
		&t.Description,
		&priority,
		&dueRaw,
		&labelsRaw,
		&createdRaw,
		&updatedRaw,
		&archivedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.Priority = domain.Priority(priority)
	t.DueAt = parseNullTS(dueRaw)
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	t.ArchivedAt = parseNullTS(archivedRaw)
	if err := json.Unmarshal([]byte(labelsRaw), &t.Labels); err != nil {
		return domain.Task{}, fmt.Errorf("decode labels_json: %w", err)
	}
	return t, nil
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS handles nullable ts.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses input into a normalized form.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
