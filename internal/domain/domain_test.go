package domain

import (
	"testing"
	"time"
)

func TestNewBoardAndSlug(t *testing.T) {
	now := time.Date(2026, 5, 12, 12, 0, 0, 0, time.UTC)
	b, err := NewBoard("b1", "  My Big Board!  ", " desc ", 0, now)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	if b.Slug != "my-big-board" {
		t.Fatalf("unexpected slug %q", b.Slug)
	}
	if b.Name != "My Big Board!" {
		t.Fatalf("unexpected name %q", b.Name)
	}
}

func TestNewBoardValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewBoard("", "ok", "", 0, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewBoard("id", "   ", "", 0, now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := NewBoard("id", "ok", "", -1, now); err != ErrInvalidPosition {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestBoardArchiveRestore(t *testing.T) {
	now := time.Now()
	b, err := NewBoard("b1", "test", "", 0, now)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	later := now.Add(time.Minute)
	b.Archive(later)
	if b.ArchivedAt == nil {
		t.Fatal("expected archived_at to be set")
	}
	b.Restore(later.Add(time.Minute))
	if b.ArchivedAt != nil {
		t.Fatal("expected archived_at to be nil")
	}
}

func TestNewColumnValidation(t *testing.T) {
	now := time.Now()
	_, err := NewColumn("c1", "b1", "todo", -1, now)
	if err != ErrInvalidPosition {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
	_, err = NewColumn("c1", "  ", "todo", 0, now)
	if err != ErrInvalidBoardID {
		t.Fatalf("expected ErrInvalidBoardID, got %v", err)
	}
}

func TestColumnMutations(t *testing.T) {
	now := time.Now()
	c, err := NewColumn("c1", "b1", "todo", 0, now)
	if err != nil {
		t.Fatalf("NewColumn() error = %v", err)
	}
	if err := c.Rename("  done ", now.Add(time.Minute)); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if c.Name != "done" {
		t.Fatalf("unexpected column name %q", c.Name)
	}
	if err := c.SetPosition(2.5, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if c.Position != 2.5 {
		t.Fatalf("unexpected position %v", c.Position)
	}
}

func TestNewTaskDefaultsAndLabels(t *testing.T) {
	now := time.Now()
	due := now.Add(24 * time.Hour)
	task, err := NewTask(TaskInput{
		ID:       "t1",
		BoardID:  "b1",
		ColumnID: "c1",
		Position: 0,
		Title:    "  Ship feature ",
		DueAt:    &due,
		Labels:   []string{"Backend", "backend", "  ", "Urgent"},
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("expected default medium, got %q", task.Priority)
	}
	if task.Title != "Ship feature" {
		t.Fatalf("unexpected title %q", task.Title)
	}
	if len(task.Labels) != 2 || task.Labels[0] != "backend" || task.Labels[1] != "urgent" {
		t.Fatalf("unexpected labels %#v", task.Labels)
	}
}

func TestNewTaskValidation(t *testing.T) {
	now := time.Now()
	_, err := NewTask(TaskInput{
		ID:       "t1",
		BoardID:  "b1",
		ColumnID: "c1",
		Position: 0,
		Title:    "x",
		Priority: Priority("bad"),
	}, now)
	if err != ErrInvalidPriority {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	_, err = NewTask(TaskInput{
		ID:       "t1",
		ColumnID: "c1",
		Title:    "x",
	}, now)
	if err != ErrInvalidBoardID {
		t.Fatalf("expected ErrInvalidBoardID, got %v", err)
	}
}

func TestTaskMoveUpdateArchiveRestore(t *testing.T) {
	now := time.Now()
	task, err := NewTask(TaskInput{
		ID:       "t1",
		BoardID:  "b1",
		ColumnID: "c1",
		Position: 0,
		Title:    "x",
		Priority: PriorityLow,
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}

	if err := task.Move("c2", 1.5, now.Add(time.Minute)); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if task.ColumnID != "c2" || task.Position != 1.5 {
		t.Fatalf("unexpected move state: %#v", task)
	}

	if err := task.MoveToBoard("b2", "c9", 0, now.Add(time.Minute)); err != nil {
		t.Fatalf("MoveToBoard() error = %v", err)
	}
	if task.BoardID != "b2" || task.ColumnID != "c9" {
		t.Fatalf("unexpected cross-board state: %#v", task)
	}

	due := now.Add(2 * time.Hour)
	err = task.UpdateDetails("new", "desc", PriorityHigh, &due, []string{"A", "a", "B"}, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("UpdateDetails() error = %v", err)
	}
	if task.Title != "new" || task.Priority != PriorityHigh {
		t.Fatalf("unexpected task update state %#v", task)
	}
	task.Archive(now.Add(3 * time.Minute))
	if task.ArchivedAt == nil {
		t.Fatal("expected archived_at to be set")
	}
	task.Restore(now.Add(4 * time.Minute))
	if task.ArchivedAt != nil {
		t.Fatal("expected archived_at nil")
	}
}
