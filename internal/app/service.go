package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/flytta/internal/domain"
	"github.com/hylla/flytta/internal/drag"
)

// DeleteMode represents a selectable mode.
type DeleteMode string

// DeleteModeArchive and related constants define package defaults.
const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultDeleteMode      DeleteMode
	ColumnTemplates        []ColumnTemplate
	AutoCreateBoardColumns bool
	Allocator              drag.Allocator
}

// ColumnTemplate represents column template data used by this package.
type ColumnTemplate struct {
	Name     string
	Position float64
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package. It owns all create
// and update flows, and implements the durable-update surface the drag
// executor persists through.
type Service struct {
	repo              Repository
	idGen             IDGenerator
	clock             Clock
	defaultDeleteMode DeleteMode
	columnTemplates   []ColumnTemplate
	autoBoardCols     bool
	alloc             drag.Allocator
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.DefaultDeleteMode == "" {
		cfg.DefaultDeleteMode = DeleteModeArchive
	}
	templates := sanitizeColumnTemplates(cfg.ColumnTemplates)
	if len(templates) == 0 {
		templates = defaultColumnTemplates()
	}

	return &Service{
		repo:              repo,
		idGen:             idGen,
		clock:             clock,
		defaultDeleteMode: cfg.DefaultDeleteMode,
		columnTemplates:   templates,
		autoBoardCols:     cfg.AutoCreateBoardColumns,
		alloc:             cfg.Allocator,
	}
}

// EnsureDefaultBoard ensures at least one board exists and returns the
// first board by tab position.
func (s *Service) EnsureDefaultBoard(ctx context.Context) (domain.Board, error) {
	boards, err := s.ListBoards(ctx, false)
	if err != nil {
		return domain.Board{}, err
	}
	if len(boards) > 0 {
		return boards[0], nil
	}

	now := s.clock()
	board, err := domain.NewBoard(s.idGen(), "Main", "Default board", 0, now)
	if err != nil {
		return domain.Board{}, err
	}
	if err := s.repo.CreateBoard(ctx, board); err != nil {
		return domain.Board{}, err
	}
	if err := s.createDefaultColumns(ctx, board.ID, now); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

// CreateBoard creates board. Its tab is appended after the last board.
func (s *Service) CreateBoard(ctx context.Context, name, description string) (domain.Board, error) {
	boards, err := s.ListBoards(ctx, true)
	if err != nil {
		return domain.Board{}, err
	}
	position := s.alloc.InsertionPosition(boardPositions(boards), len(boards))

	now := s.clock()
	board, err := domain.NewBoard(s.idGen(), name, description, position, now)
	if err != nil {
		return domain.Board{}, err
	}
	if err := s.repo.CreateBoard(ctx, board); err != nil {
		return domain.Board{}, err
	}
	if s.autoBoardCols {
		if err := s.createDefaultColumns(ctx, board.ID, now); err != nil {
			return domain.Board{}, err
		}
	}
	return board, nil
}

// RenameBoard renames board.
func (s *Service) RenameBoard(ctx context.Context, boardID, name string) (domain.Board, error) {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return domain.Board{}, err
	}
	if err := board.Rename(name, s.clock()); err != nil {
		return domain.Board{}, err
	}
	if err := s.repo.UpdateBoard(ctx, board); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

// ListBoards lists boards ordered by tab position.
func (s *Service) ListBoards(ctx context.Context, includeArchived bool) ([]domain.Board, error) {
	boards, err := s.repo.ListBoards(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(boards, func(a, b domain.Board) int {
		return comparePositions(a.Position, b.Position)
	})
	return boards, nil
}

// CreateColumn creates column, appended after the board's last column.
func (s *Service) CreateColumn(ctx context.Context, boardID, name string) (domain.Column, error) {
	columns, err := s.ListColumns(ctx, boardID, true)
	if err != nil {
		return domain.Column{}, err
	}
	position := s.alloc.InsertionPosition(columnPositions(columns), len(columns))

	column, err := domain.NewColumn(s.idGen(), boardID, name, position, s.clock())
	if err != nil {
		return domain.Column{}, err
	}
	if err := s.repo.CreateColumn(ctx, column); err != nil {
		return domain.Column{}, err
	}
	return column, nil
}

// RenameColumn renames column.
func (s *Service) RenameColumn(ctx context.Context, columnID, name string) (domain.Column, error) {
	column, err := s.repo.GetColumn(ctx, columnID)
	if err != nil {
		return domain.Column{}, err
	}
	if err := column.Rename(name, s.clock()); err != nil {
		return domain.Column{}, err
	}
	if err := s.repo.UpdateColumn(ctx, column); err != nil {
		return domain.Column{}, err
	}
	return column, nil
}

// ListColumns lists columns ordered by position.
func (s *Service) ListColumns(ctx context.Context, boardID string, includeArchived bool) ([]domain.Column, error) {
	columns, err := s.repo.ListColumns(ctx, boardID, includeArchived)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(columns, func(a, b domain.Column) int {
		return comparePositions(a.Position, b.Position)
	})
	return columns, nil
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	BoardID     string
	ColumnID    string
	Title       string
	Description string
	Priority    domain.Priority
	DueAt       *time.Time
	Labels      []string
}

// CreateTask creates task, appended after the column's last task.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, in.BoardID, false)
	if err != nil {
		return domain.Task{}, err
	}
	var positions []float64
	for _, t := range tasks {
		if t.ColumnID == in.ColumnID {
			positions = append(positions, t.Position)
		}
	}
	slices.Sort(positions)
	position := s.alloc.InsertionPosition(positions, len(positions))

	task, err := domain.NewTask(domain.TaskInput{
		ID:          s.idGen(),
		BoardID:     in.BoardID,
		ColumnID:    in.ColumnID,
		Position:    position,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueAt:       in.DueAt,
		Labels:      in.Labels,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// UpdateTaskInput holds input values for update task operations.
type UpdateTaskInput struct {
	TaskID      string
	Title       string
	Description string
	Priority    domain.Priority
	DueAt       *time.Time
	Labels      []string
}

// UpdateTask updates state for the requested operation.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, in.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.UpdateDetails(in.Title, in.Description, in.Priority, in.DueAt, in.Labels, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// RenameTask renames task.
func (s *Service) RenameTask(ctx context.Context, taskID, title string) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.UpdateDetails(title, task.Description, task.Priority, task.DueAt, task.Labels, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// GetTask returns one task.
func (s *Service) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	return s.repo.GetTask(ctx, taskID)
}

// DeleteTask deletes task.
func (s *Service) DeleteTask(ctx context.Context, taskID string, mode DeleteMode) error {
	if mode == "" {
		mode = s.defaultDeleteMode
	}

	switch mode {
	case DeleteModeArchive:
		task, err := s.repo.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		task.Archive(s.clock())
		return s.repo.UpdateTask(ctx, task)
	case DeleteModeHard:
		return s.repo.DeleteTask(ctx, taskID)
	default:
		return ErrInvalidDeleteMode
	}
}

// RestoreTask restores task.
func (s *Service) RestoreTask(ctx context.Context, taskID string) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	task.Restore(s.clock())
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// ListTasks lists tasks grouped by column and ordered by position.
func (s *Service) ListTasks(ctx context.Context, boardID string, includeArchived bool) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, boardID, includeArchived)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(tasks, func(a, b domain.Task) int {
		if a.ColumnID == b.ColumnID {
			return comparePositions(a.Position, b.Position)
		}
		return strings.Compare(a.ColumnID, b.ColumnID)
	})
	return tasks, nil
}

// LoadBoard returns one board with its columns and tasks, the snapshot the
// drag engine's in-memory state is rebuilt from.
func (s *Service) LoadBoard(ctx context.Context, boardID string) (domain.Board, []domain.Column, []domain.Task, error) {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return domain.Board{}, nil, nil, err
	}
	columns, err := s.ListColumns(ctx, boardID, false)
	if err != nil {
		return domain.Board{}, nil, nil, err
	}
	tasks, err := s.ListTasks(ctx, boardID, false)
	if err != nil {
		return domain.Board{}, nil, nil, err
	}
	return board, columns, tasks, nil
}

// SaveTaskPositions implements drag.Store. The batch is handed to the
// repository as one transactional write.
func (s *Service) SaveTaskPositions(ctx context.Context, updates []drag.TaskPosition) error {
	batch := make([]TaskPositionUpdate, 0, len(updates))
	for _, u := range updates {
		batch = append(batch, TaskPositionUpdate{
			TaskID:   u.TaskID,
			ColumnID: u.ColumnID,
			Position: u.Position,
		})
	}
	return s.repo.SaveTaskPositions(ctx, batch)
}

// SaveColumnPosition implements drag.Store.
func (s *Service) SaveColumnPosition(ctx context.Context, columnID string, position float64) error {
	column, err := s.repo.GetColumn(ctx, columnID)
	if err != nil {
		return err
	}
	if err := column.SetPosition(position, s.clock()); err != nil {
		return err
	}
	return s.repo.UpdateColumn(ctx, column)
}

// SaveColumnPositions implements drag.Store. The batch is handed to the
// repository as one transactional write so the board's column order is
// never half-updated on disk.
func (s *Service) SaveColumnPositions(ctx context.Context, updates []drag.ColumnPosition) error {
	batch := make([]ColumnPositionUpdate, 0, len(updates))
	for _, u := range updates {
		batch = append(batch, ColumnPositionUpdate{
			ColumnID: u.ColumnID,
			Position: u.Position,
		})
	}
	return s.repo.SaveColumnPositions(ctx, batch)
}

// MoveTaskToBoard implements drag.Store: the task lands at the end of the
// target board's first column.
func (s *Service) MoveTaskToBoard(ctx context.Context, taskID, boardID string) error {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	columns, err := s.ListColumns(ctx, boardID, false)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return fmt.Errorf("move task %s to board %s: %w", taskID, boardID, ErrNoColumns)
	}
	target := columns[0]

	tasks, err := s.repo.ListTasks(ctx, boardID, false)
	if err != nil {
		return err
	}
	var positions []float64
	for _, t := range tasks {
		if t.ColumnID == target.ID {
			positions = append(positions, t.Position)
		}
	}
	slices.Sort(positions)
	position := s.alloc.InsertionPosition(positions, len(positions))

	if err := task.MoveToBoard(boardID, target.ID, position, s.clock()); err != nil {
		return err
	}
	return s.repo.UpdateTask(ctx, task)
}

// RenumberColumns rewrites a board's column positions to clean contiguous
// keys, preserving order. Fractional keys accumulate from repeated drag
// insertions; this is the maintenance pass that resets them.
func (s *Service) RenumberColumns(ctx context.Context, boardID string) error {
	columns, err := s.ListColumns(ctx, boardID, true)
	if err != nil {
		return err
	}
	renumbered := s.alloc.Renumber(columnPositions(columns))
	now := s.clock()
	for i := range columns {
		if columns[i].Position == renumbered[i] {
			continue
		}
		if err := columns[i].SetPosition(renumbered[i], now); err != nil {
			return err
		}
		if err := s.repo.UpdateColumn(ctx, columns[i]); err != nil {
			return err
		}
	}
	return nil
}

// RenumberTasks rewrites every column's task positions on a board to clean
// contiguous keys, preserving order.
func (s *Service) RenumberTasks(ctx context.Context, boardID string) error {
	columns, err := s.ListColumns(ctx, boardID, true)
	if err != nil {
		return err
	}
	tasks, err := s.ListTasks(ctx, boardID, true)
	if err != nil {
		return err
	}
	batch := make([]TaskPositionUpdate, 0, len(tasks))
	for _, column := range columns {
		var columnTasks []domain.Task
		for _, t := range tasks {
			if t.ColumnID == column.ID {
				columnTasks = append(columnTasks, t)
			}
		}
		positions := make([]float64, len(columnTasks))
		for i, t := range columnTasks {
			positions[i] = t.Position
		}
		renumbered := s.alloc.Renumber(positions)
		for i, t := range columnTasks {
			if t.Position == renumbered[i] {
				continue
			}
			batch = append(batch, TaskPositionUpdate{
				TaskID:   t.ID,
				ColumnID: t.ColumnID,
				Position: renumbered[i],
			})
		}
	}
	if len(batch) == 0 {
		return nil
	}
	return s.repo.SaveTaskPositions(ctx, batch)
}

// comparePositions orders float ordering keys.
func comparePositions(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boardPositions(boards []domain.Board) []float64 {
	out := make([]float64, len(boards))
	for i, b := range boards {
		out[i] = b.Position
	}
	slices.Sort(out)
	return out
}

func columnPositions(columns []domain.Column) []float64 {
	out := make([]float64, len(columns))
	for i, c := range columns {
		out[i] = c.Position
	}
	return out
}

// defaultColumnTemplates returns default column templates.
func defaultColumnTemplates() []ColumnTemplate {
	return []ColumnTemplate{
		{Name: "To Do", Position: 0},
		{Name: "In Progress", Position: 1},
		{Name: "Done", Position: 2},
	}
}

// sanitizeColumnTemplates handles sanitize column templates.
func sanitizeColumnTemplates(in []ColumnTemplate) []ColumnTemplate {
	if len(in) == 0 {
		return nil
	}
	out := make([]ColumnTemplate, 0, len(in))
	seen := map[string]struct{}{}
	for idx, tpl := range in {
		tpl.Name = strings.TrimSpace(tpl.Name)
		if tpl.Name == "" {
			continue
		}
		key := strings.ToLower(tpl.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if tpl.Position < 0 {
			tpl.Position = float64(idx)
		}
		out = append(out, tpl)
	}
	slices.SortStableFunc(out, func(a, b ColumnTemplate) int {
		if a.Position == b.Position {
			return strings.Compare(a.Name, b.Name)
		}
		return comparePositions(a.Position, b.Position)
	})
	return out
}

// createDefaultColumns creates default columns.
func (s *Service) createDefaultColumns(ctx context.Context, boardID string, now time.Time) error {
	for _, tpl := range s.columnTemplates {
		column, err := domain.NewColumn(s.idGen(), boardID, tpl.Name, tpl.Position, now)
		if err != nil {
			return fmt.Errorf("create default column %q: %w", tpl.Name, err)
		}
		if err := s.repo.CreateColumn(ctx, column); err != nil {
			return fmt.Errorf("persist default column %q: %w", tpl.Name, err)
		}
	}
	return nil
}
