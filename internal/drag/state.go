package drag

import (
	"slices"

	"github.com/hylla/flytta/internal/domain"
)

// BoardState is the in-memory view of one board the engine reads for
// position computation and mutates optimistically on drop. The host owns
// it and refreshes it from durable storage; the executor is the only
// writer during a drag. Readers always observe either the pre-move or the
// fully post-move state because resequenced lists are swapped in whole.
type BoardState struct {
	board   domain.Board
	columns []domain.Column
	tasks   map[string][]domain.Task
}

// NewBoardState builds board state from a storage snapshot.
func NewBoardState(board domain.Board, columns []domain.Column, tasks []domain.Task) *BoardState {
	s := &BoardState{}
	s.Replace(board, columns, tasks)
	return s
}

// Replace swaps in a fresh snapshot, regrouping tasks by owning column.
func (s *BoardState) Replace(board domain.Board, columns []domain.Column, tasks []domain.Task) {
	s.board = board
	s.columns = slices.Clone(columns)
	sortColumns(s.columns)
	s.tasks = make(map[string][]domain.Task)
	for _, task := range tasks {
		s.tasks[task.ColumnID] = append(s.tasks[task.ColumnID], task)
	}
	for id := range s.tasks {
		sortTasks(s.tasks[id])
	}
}

// Board returns the board this state belongs to.
func (s *BoardState) Board() domain.Board {
	return s.board
}

// Columns returns the board's columns ordered by position.
func (s *BoardState) Columns() []domain.Column {
	return slices.Clone(s.columns)
}

// Column returns one column by ID.
func (s *BoardState) Column(id string) (domain.Column, bool) {
	for _, c := range s.columns {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Column{}, false
}

// ColumnTasks returns one column's tasks ordered by position.
func (s *BoardState) ColumnTasks(columnID string) []domain.Task {
	return slices.Clone(s.tasks[columnID])
}

// Task returns one task by ID, searching all columns.
func (s *BoardState) Task(id string) (domain.Task, bool) {
	for _, list := range s.tasks {
		for _, task := range list {
			if task.ID == id {
				return task, true
			}
		}
	}
	return domain.Task{}, false
}

// TaskColumns returns the IDs of columns currently holding the task. Used
// by exclusivity checks; after any successful move the result has exactly
// one element.
func (s *BoardState) TaskColumns(id string) []string {
	var owners []string
	for columnID, list := range s.tasks {
		for _, task := range list {
			if task.ID == id {
				owners = append(owners, columnID)
			}
		}
	}
	slices.Sort(owners)
	return owners
}

// setColumnTasks swaps one column's task list wholesale.
func (s *BoardState) setColumnTasks(columnID string, tasks []domain.Task) {
	s.tasks[columnID] = tasks
}

// setColumns swaps the column ordering wholesale.
func (s *BoardState) setColumns(columns []domain.Column) {
	s.columns = columns
}

func sortColumns(columns []domain.Column) {
	slices.SortStableFunc(columns, func(a, b domain.Column) int {
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		default:
			return 0
		}
	})
}

func sortTasks(tasks []domain.Task) {
	slices.SortStableFunc(tasks, func(a, b domain.Task) int {
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		default:
			return 0
		}
	})
}
