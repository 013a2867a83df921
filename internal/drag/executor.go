package drag

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/hylla/flytta/internal/domain"
)

// Clock returns the current time.
type Clock func() time.Time

// TaskPosition is one entry of a durable batch position update. ColumnID
// carries column membership so a cross-column move persists atomically with
// the recomputed positions.
type TaskPosition struct {
	TaskID   string
	ColumnID string
	Position float64
}

// ColumnPosition is one entry of a durable column order update.
type ColumnPosition struct {
	ColumnID string
	Position float64
}

// Store is the durable update API the executor persists moves through.
// Every call may fail; failures roll the optimistic mutation back.
type Store interface {
	SaveTaskPositions(ctx context.Context, updates []TaskPosition) error
	SaveColumnPosition(ctx context.Context, columnID string, position float64) error
	SaveColumnPositions(ctx context.Context, updates []ColumnPosition) error
	MoveTaskToBoard(ctx context.Context, taskID, boardID string) error
}

// DefaultCooldown is the window after a successful commit during which
// externally-sourced refreshes are suppressed for the affected region, so a
// stale confirmation cannot snap the optimistic update back.
const DefaultCooldown = 2 * time.Second

// Executor applies resolved moves: optimistic in-memory mutation first,
// durable persistence second, full rollback of the affected columns on
// failure. It is the only writer of BoardState during a drag.
type Executor struct {
	store    Store
	state    *BoardState
	clock    Clock
	log      Logger
	cooldown time.Duration

	cooldownUntil map[string]time.Time
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock overrides the executor's time source.
func WithClock(clock Clock) ExecutorOption {
	return func(e *Executor) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithCooldown overrides the post-commit refresh suppression window.
func WithCooldown(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.cooldown = d
		}
	}
}

// WithExecutorLogger overrides the executor's logger.
func WithExecutorLogger(log Logger) ExecutorOption {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// NewExecutor constructs an executor over the given store and board state.
func NewExecutor(store Store, state *BoardState, opts ...ExecutorOption) *Executor {
	e := &Executor{
		store:         store,
		state:         state,
		clock:         time.Now,
		log:           NopLogger{},
		cooldown:      DefaultCooldown,
		cooldownUntil: map[string]time.Time{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// MoveTask commits a task move to (targetColumnID, targetPosition). The
// affected column lists are resequenced contiguously, swapped into board
// state, and persisted as one batch; on failure every affected column is
// restored to its pre-move snapshot and the error is surfaced.
func (e *Executor) MoveTask(ctx context.Context, taskID, targetColumnID string, targetPosition float64) error {
	task, ok := e.state.Task(taskID)
	if !ok {
		return fmt.Errorf("move task %s: %w", taskID, ErrTaskNotFound)
	}
	if _, ok := e.state.Column(targetColumnID); !ok {
		return fmt.Errorf("move task %s: target column %s: %w", taskID, targetColumnID, ErrColumnNotFound)
	}
	if task.ColumnID == targetColumnID {
		return e.reorderWithinColumn(ctx, task, targetPosition)
	}
	return e.moveAcrossColumns(ctx, task, targetColumnID, targetPosition)
}

// reorderWithinColumn recomputes the whole column as one contiguous
// resequencing rather than touching only the moved task.
func (e *Executor) reorderWithinColumn(ctx context.Context, task domain.Task, targetPosition float64) error {
	columnID := task.ColumnID
	before := e.state.ColumnTasks(columnID)

	reordered, err := placeTask(removeTask(before, task.ID), task, targetPosition, e.clock())
	if err != nil {
		return fmt.Errorf("move task %s: %w", task.ID, err)
	}
	updates, err := e.resequence(reordered)
	if err != nil {
		return fmt.Errorf("move task %s: %w", task.ID, err)
	}
	e.state.setColumnTasks(columnID, reordered)

	if err := e.store.SaveTaskPositions(ctx, updates); err != nil {
		e.state.setColumnTasks(columnID, before)
		return fmt.Errorf("persist reorder of column %s: %w", columnID, err)
	}
	e.beginCooldown(columnID)
	e.log.Debug("task reordered", "task", task.ID, "column", columnID)
	return nil
}

// moveAcrossColumns removes the task from its source list, inserts it into
// the target list, resequences both, and persists all changed positions
// plus the moved task's column membership in a single batch.
func (e *Executor) moveAcrossColumns(ctx context.Context, task domain.Task, targetColumnID string, targetPosition float64) error {
	sourceColumnID := task.ColumnID
	beforeSource := e.state.ColumnTasks(sourceColumnID)
	beforeTarget := e.state.ColumnTasks(targetColumnID)

	source := removeTask(beforeSource, task.ID)
	if err := task.Move(targetColumnID, targetPosition, e.clock()); err != nil {
		return fmt.Errorf("move task %s: %w", task.ID, err)
	}
	target, err := placeTask(e.state.ColumnTasks(targetColumnID), task, targetPosition, e.clock())
	if err != nil {
		return fmt.Errorf("move task %s: %w", task.ID, err)
	}

	sourceUpdates, err := e.resequence(source)
	if err != nil {
		return fmt.Errorf("move task %s: %w", task.ID, err)
	}
	targetUpdates, err := e.resequence(target)
	if err != nil {
		return fmt.Errorf("move task %s: %w", task.ID, err)
	}
	updates := append(sourceUpdates, targetUpdates...)
	e.state.setColumnTasks(sourceColumnID, source)
	e.state.setColumnTasks(targetColumnID, target)

	if err := e.store.SaveTaskPositions(ctx, updates); err != nil {
		e.state.setColumnTasks(sourceColumnID, beforeSource)
		e.state.setColumnTasks(targetColumnID, beforeTarget)
		return fmt.Errorf("persist move into column %s: %w", targetColumnID, err)
	}
	e.beginCooldown(sourceColumnID, targetColumnID)
	e.log.Debug("task moved", "task", task.ID, "from", sourceColumnID, "to", targetColumnID)
	return nil
}

// MoveColumn commits a column reorder. When the target key is free only the
// moved column's position is persisted and siblings keep their existing
// keys; when a sibling already holds the key the whole order is resequenced
// so no two durable rows ever share a position.
func (e *Executor) MoveColumn(ctx context.Context, columnID string, targetPosition float64) error {
	column, ok := e.state.Column(columnID)
	if !ok {
		return fmt.Errorf("move column %s: %w", columnID, ErrColumnNotFound)
	}
	before := e.state.Columns()

	if err := column.SetPosition(targetPosition, e.clock()); err != nil {
		return fmt.Errorf("move column %s: %w", columnID, err)
	}
	siblings := make([]domain.Column, 0, len(before))
	for _, c := range before {
		if c.ID != columnID {
			siblings = append(siblings, c)
		}
	}
	reordered := insertColumn(siblings, column)

	if positionOccupied(siblings, targetPosition) {
		// Committing only the moved column would leave two rows at the
		// same durable key, and a reload ordering by position alone could
		// then put the moved column back behind the sibling it displaced.
		resequenced, updates, err := resequenceColumns(reordered, e.clock())
		if err != nil {
			return fmt.Errorf("move column %s: %w", columnID, err)
		}
		e.state.setColumns(resequenced)
		if err := e.store.SaveColumnPositions(ctx, updates); err != nil {
			e.state.setColumns(before)
			return fmt.Errorf("persist column order: %w", err)
		}
	} else {
		e.state.setColumns(reordered)
		if err := e.store.SaveColumnPosition(ctx, columnID, targetPosition); err != nil {
			e.state.setColumns(before)
			return fmt.Errorf("persist column %s position: %w", columnID, err)
		}
	}
	e.beginCooldown(e.state.Board().ID)
	e.log.Debug("column moved", "column", columnID, "position", targetPosition)
	return nil
}

// MoveTaskToBoard commits a cross-board move: the task leaves this board's
// in-memory state and the durable relocation is persisted. On failure the
// source column is restored.
func (e *Executor) MoveTaskToBoard(ctx context.Context, taskID, targetBoardID string) error {
	task, ok := e.state.Task(taskID)
	if !ok {
		return fmt.Errorf("move task %s to board: %w", taskID, ErrTaskNotFound)
	}
	sourceColumnID := task.ColumnID
	before := e.state.ColumnTasks(sourceColumnID)

	e.state.setColumnTasks(sourceColumnID, removeTask(before, taskID))

	if err := e.store.MoveTaskToBoard(ctx, taskID, targetBoardID); err != nil {
		e.state.setColumnTasks(sourceColumnID, before)
		return fmt.Errorf("persist cross-board move of task %s: %w", taskID, err)
	}
	e.beginCooldown(sourceColumnID)
	e.log.Debug("task moved across boards", "task", taskID, "board", targetBoardID)
	return nil
}

// RefreshAllowed reports whether an externally-sourced refresh may be
// applied to the given region (a column ID, or the board ID for column
// order). During the cooldown window after a commit it returns false.
func (e *Executor) RefreshAllowed(region string) bool {
	until, ok := e.cooldownUntil[region]
	if !ok {
		return true
	}
	if e.clock().Before(until) {
		return false
	}
	delete(e.cooldownUntil, region)
	return true
}

func (e *Executor) beginCooldown(regions ...string) {
	until := e.clock().Add(e.cooldown)
	for _, region := range regions {
		e.cooldownUntil[region] = until
	}
}

// resequence assigns clean contiguous positions to an ordered task list and
// returns the matching persistence batch.
func (e *Executor) resequence(tasks []domain.Task) ([]TaskPosition, error) {
	now := e.clock()
	updates := make([]TaskPosition, 0, len(tasks))
	for i := range tasks {
		if err := tasks[i].Move(tasks[i].ColumnID, float64(i), now); err != nil {
			return nil, fmt.Errorf("resequence task %s: %w", tasks[i].ID, err)
		}
		updates = append(updates, TaskPosition{
			TaskID:   tasks[i].ID,
			ColumnID: tasks[i].ColumnID,
			Position: tasks[i].Position,
		})
	}
	return updates, nil
}

// resequenceColumns assigns clean contiguous integer keys to an ordered
// column list and returns the matching persistence batch.
func resequenceColumns(columns []domain.Column, now time.Time) ([]domain.Column, []ColumnPosition, error) {
	out := slices.Clone(columns)
	updates := make([]ColumnPosition, 0, len(out))
	for i := range out {
		if err := out[i].SetPosition(float64(i), now); err != nil {
			return nil, nil, fmt.Errorf("resequence column %s: %w", out[i].ID, err)
		}
		updates = append(updates, ColumnPosition{ColumnID: out[i].ID, Position: out[i].Position})
	}
	return out, updates, nil
}

// positionOccupied reports whether any column already holds the given key.
func positionOccupied(columns []domain.Column, position float64) bool {
	for _, c := range columns {
		if math.Abs(c.Position-position) < DefaultEpsilon {
			return true
		}
	}
	return false
}

// removeTask returns a copy of the list without the given task.
func removeTask(tasks []domain.Task, taskID string) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != taskID {
			out = append(out, t)
		}
	}
	return out
}

// placeTask inserts the task into the list at its target position. On an
// exact position tie the inserted task sorts first, which is what
// "insert before" means for a drop landing on an existing key.
func placeTask(tasks []domain.Task, task domain.Task, position float64, now time.Time) ([]domain.Task, error) {
	if err := task.Move(task.ColumnID, position, now); err != nil {
		return nil, fmt.Errorf("place task %s: %w", task.ID, err)
	}
	idx := len(tasks)
	for i, existing := range tasks {
		if position <= existing.Position {
			idx = i
			break
		}
	}
	return slices.Insert(slices.Clone(tasks), idx, task), nil
}

// insertColumn places the moved column before the first sibling at or past
// its new position.
func insertColumn(columns []domain.Column, column domain.Column) []domain.Column {
	idx := len(columns)
	for i, existing := range columns {
		if column.Position <= existing.Position {
			idx = i
			break
		}
	}
	return slices.Insert(slices.Clone(columns), idx, column)
}
