package app

import (
	"context"

	"github.com/hylla/flytta/internal/domain"
)

// TaskPositionUpdate is one row of a batched position write. Updates in a
// batch are applied in a single transaction.
type TaskPositionUpdate struct {
	TaskID   string
	ColumnID string
	Position float64
}

// ColumnPositionUpdate is one row of a batched column order write. Updates
// in a batch are applied in a single transaction.
type ColumnPositionUpdate struct {
	ColumnID string
	Position float64
}

// Repository represents repository data used by this package.
type Repository interface {
	CreateBoard(context.Context, domain.Board) error
	UpdateBoard(context.Context, domain.Board) error
	GetBoard(context.Context, string) (domain.Board, error)
	ListBoards(context.Context, bool) ([]domain.Board, error)

	CreateColumn(context.Context, domain.Column) error
	UpdateColumn(context.Context, domain.Column) error
	GetColumn(context.Context, string) (domain.Column, error)
	ListColumns(context.Context, string, bool) ([]domain.Column, error)

	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	ListTasks(context.Context, string, bool) ([]domain.Task, error)
	DeleteTask(context.Context, string) error

	SaveTaskPositions(context.Context, []TaskPositionUpdate) error
	SaveColumnPositions(context.Context, []ColumnPositionUpdate) error
}
