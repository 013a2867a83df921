package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/flytta/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "flytta.snapshot.v1"

// Snapshot represents snapshot data used by this package.
type Snapshot struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Boards     []SnapshotBoard  `json:"boards"`
	Columns    []SnapshotColumn `json:"columns"`
	Tasks      []SnapshotTask   `json:"tasks"`
}

// SnapshotBoard represents snapshot board data used by this package.
type SnapshotBoard struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Position    float64    `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID         string     `json:"id"`
	BoardID    string     `json:"board_id"`
	Name       string     `json:"name"`
	Position   float64    `json:"position"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID          string          `json:"id"`
	BoardID     string          `json:"board_id"`
	ColumnID    string          `json:"column_id"`
	Position    float64         `json:"position"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
	Labels      []string        `json:"labels"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ArchivedAt  *time.Time      `json:"archived_at,omitempty"`
}

// ExportSnapshot handles export snapshot.
func (s *Service) ExportSnapshot(ctx context.Context, includeArchived bool) (Snapshot, error) {
	boards, err := s.repo.ListBoards(ctx, includeArchived)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Boards:     make([]SnapshotBoard, 0, len(boards)),
		Columns:    make([]SnapshotColumn, 0),
		Tasks:      make([]SnapshotTask, 0),
	}
	for _, board := range boards {
		snap.Boards = append(snap.Boards, snapshotBoardFromDomain(board))

		columns, listErr := s.repo.ListColumns(ctx, board.ID, includeArchived)
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, column := range columns {
			snap.Columns = append(snap.Columns, snapshotColumnFromDomain(column))
		}

		tasks, listErr := s.repo.ListTasks(ctx, board.ID, includeArchived)
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, task := range tasks {
			snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
		}
	}

	snap.sort()
	return snap, nil
}

// ImportSnapshot handles import snapshot.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	for _, board := range snap.Boards {
		if err := s.upsertBoard(ctx, board.toDomain()); err != nil {
			return err
		}
	}

	existingColumnsByBoard := map[string]map[string]struct{}{}
	for _, board := range snap.Boards {
		columns, err := s.repo.ListColumns(ctx, board.ID, true)
		if err != nil {
			return err
		}
		byID := map[string]struct{}{}
		for _, column := range columns {
			byID[column.ID] = struct{}{}
		}
		existingColumnsByBoard[board.ID] = byID
	}

	for _, column := range snap.Columns {
		dc := column.toDomain()
		if _, ok := existingColumnsByBoard[dc.BoardID][dc.ID]; ok {
			if err := s.repo.UpdateColumn(ctx, dc); err != nil {
				return err
			}
			continue
		}
		if err := s.repo.CreateColumn(ctx, dc); err != nil {
			return err
		}
		existingColumnsByBoard[dc.BoardID][dc.ID] = struct{}{}
	}

	for _, task := range snap.Tasks {
		dt := task.toDomain()
		if _, err := s.repo.GetTask(ctx, dt.ID); err == nil {
			if err := s.repo.UpdateTask(ctx, dt); err != nil {
				return err
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateTask(ctx, dt); err != nil {
			return err
		}
	}

	return nil
}

// Validate validates the requested operation.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	boardIDs := map[string]struct{}{}
	for i, b := range s.Boards {
		if strings.TrimSpace(b.ID) == "" {
			return fmt.Errorf("boards[%d].id is required", i)
		}
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("boards[%d].name is required", i)
		}
		if b.Position < 0 {
			return fmt.Errorf("boards[%d].position must be >= 0", i)
		}
		if b.CreatedAt.IsZero() || b.UpdatedAt.IsZero() {
			return fmt.Errorf("boards[%d] timestamps are required", i)
		}
		if _, exists := boardIDs[b.ID]; exists {
			return fmt.Errorf("duplicate board id: %q", b.ID)
		}
		boardIDs[b.ID] = struct{}{}
	}

	columnIDs := map[string]struct{}{}
	for i, c := range s.Columns {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("columns[%d].id is required", i)
		}
		if strings.TrimSpace(c.BoardID) == "" {
			return fmt.Errorf("columns[%d].board_id is required", i)
		}
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("columns[%d].name is required", i)
		}
		if c.Position < 0 {
			return fmt.Errorf("columns[%d].position must be >= 0", i)
		}
		if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
			return fmt.Errorf("columns[%d] timestamps are required", i)
		}
		if _, ok := boardIDs[c.BoardID]; !ok {
			return fmt.Errorf("columns[%d] references unknown board_id %q", i, c.BoardID)
		}
		if _, exists := columnIDs[c.ID]; exists {
			return fmt.Errorf("duplicate column id: %q", c.ID)
		}
		columnIDs[c.ID] = struct{}{}
	}

	taskIDs := map[string]struct{}{}
	for i, t := range s.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("tasks[%d].id is required", i)
		}
		if strings.TrimSpace(t.BoardID) == "" {
			return fmt.Errorf("tasks[%d].board_id is required", i)
		}
		if strings.TrimSpace(t.ColumnID) == "" {
			return fmt.Errorf("tasks[%d].column_id is required", i)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("tasks[%d].title is required", i)
		}
		if t.Position < 0 {
			return fmt.Errorf("tasks[%d].position must be >= 0", i)
		}
		switch t.Priority {
		case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
		default:
			return fmt.Errorf("tasks[%d].priority must be low|medium|high", i)
		}
		if t.CreatedAt.IsZero() || t.UpdatedAt.IsZero() {
			return fmt.Errorf("tasks[%d] timestamps are required", i)
		}
		if _, ok := boardIDs[t.BoardID]; !ok {
			return fmt.Errorf("tasks[%d] references unknown board_id %q", i, t.BoardID)
		}
		if _, ok := columnIDs[t.ColumnID]; !ok {
			return fmt.Errorf("tasks[%d] references unknown column_id %q", i, t.ColumnID)
		}
		if _, exists := taskIDs[t.ID]; exists {
			return fmt.Errorf("duplicate task id: %q", t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}

	return nil
}

// upsertBoard handles upsert board.
func (s *Service) upsertBoard(ctx context.Context, b domain.Board) error {
	if _, err := s.repo.GetBoard(ctx, b.ID); err == nil {
		return s.repo.UpdateBoard(ctx, b)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.repo.CreateBoard(ctx, b)
}

// sort handles sort.
func (s *Snapshot) sort() {
	sort.Slice(s.Boards, func(i, j int) bool {
		a := s.Boards[i]
		b := s.Boards[j]
		if a.Position == b.Position {
			return a.ID < b.ID
		}
		return a.Position < b.Position
	})
	sort.Slice(s.Columns, func(i, j int) bool {
		a := s.Columns[i]
		b := s.Columns[j]
		if a.BoardID == b.BoardID {
			if a.Position == b.Position {
				return a.ID < b.ID
			}
			return a.Position < b.Position
		}
		return a.BoardID < b.BoardID
	})
	sort.Slice(s.Tasks, func(i, j int) bool {
		a := s.Tasks[i]
		b := s.Tasks[j]
		if a.BoardID == b.BoardID {
			if a.ColumnID == b.ColumnID {
				if a.Position == b.Position {
					return a.ID < b.ID
				}
				return a.Position < b.Position
			}
			return a.ColumnID < b.ColumnID
		}
		return a.BoardID < b.BoardID
	})
}

// snapshotBoardFromDomain handles snapshot board from domain.
func snapshotBoardFromDomain(b domain.Board) SnapshotBoard {
	return SnapshotBoard{
		ID:          b.ID,
		Slug:        b.Slug,
		Name:        b.Name,
		Description: b.Description,
		Position:    b.Position,
		CreatedAt:   b.CreatedAt.UTC(),
		UpdatedAt:   b.UpdatedAt.UTC(),
		ArchivedAt:  copyTimePtr(b.ArchivedAt),
	}
}

// snapshotColumnFromDomain handles snapshot column from domain.
func snapshotColumnFromDomain(c domain.Column) SnapshotColumn {
	return SnapshotColumn{
		ID:         c.ID,
		BoardID:    c.BoardID,
		Name:       c.Name,
		Position:   c.Position,
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
		ArchivedAt: copyTimePtr(c.ArchivedAt),
	}
}

// snapshotTaskFromDomain handles snapshot task from domain.
func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:          t.ID,
		BoardID:     t.BoardID,
		ColumnID:    t.ColumnID,
		Position:    t.Position,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		DueAt:       copyTimePtr(t.DueAt),
		Labels:      append([]string(nil), t.Labels...),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		ArchivedAt:  copyTimePtr(t.ArchivedAt),
	}
}

// toDomain converts domain.
func (b SnapshotBoard) toDomain() domain.Board {
	slug := strings.TrimSpace(b.Slug)
	if slug == "" {
		slug = fallbackSlug(b.Name)
	}
	return domain.Board{
		ID:          strings.TrimSpace(b.ID),
		Slug:        slug,
		Name:        strings.TrimSpace(b.Name),
		Description: strings.TrimSpace(b.Description),
		Position:    b.Position,
		CreatedAt:   b.CreatedAt.UTC(),
		UpdatedAt:   b.UpdatedAt.UTC(),
		ArchivedAt:  copyTimePtr(b.ArchivedAt),
	}
}

// toDomain converts domain.
func (c SnapshotColumn) toDomain() domain.Column {
	return domain.Column{
		ID:         strings.TrimSpace(c.ID),
		BoardID:    strings.TrimSpace(c.BoardID),
		Name:       strings.TrimSpace(c.Name),
		Position:   c.Position,
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
		ArchivedAt: copyTimePtr(c.ArchivedAt),
	}
}

// toDomain converts domain.
func (t SnapshotTask) toDomain() domain.Task {
	priority := t.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	return domain.Task{
		ID:          strings.TrimSpace(t.ID),
		BoardID:     strings.TrimSpace(t.BoardID),
		ColumnID:    strings.TrimSpace(t.ColumnID),
		Position:    t.Position,
		Title:       strings.TrimSpace(t.Title),
		Description: strings.TrimSpace(t.Description),
		Priority:    priority,
		DueAt:       copyTimePtr(t.DueAt),
		Labels:      append([]string(nil), t.Labels...),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		ArchivedAt:  copyTimePtr(t.ArchivedAt),
	}
}

// fallbackSlug provides fallback slug.
func fallbackSlug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	return strings.Trim(name, "-")
}

// copyTimePtr copies time ptr.
func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	t := in.UTC().Truncate(time.Second)
	return &t
}
