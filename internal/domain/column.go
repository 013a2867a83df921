package domain

import (
	"strings"
	"time"
)

// Column belongs to exactly one board. Position is a real-number ordering
// key: column order within a board is ascending position, and values are
// not required to be contiguous integers.
type Column struct {
	ID         string
	BoardID    string
	Name       string
	Position   float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

// NewColumn constructs a new value for this package.
func NewColumn(id, boardID, name string, position float64, now time.Time) (Column, error) {
	id = strings.TrimSpace(id)
	boardID = strings.TrimSpace(boardID)
	name = strings.TrimSpace(name)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if boardID == "" {
		return Column{}, ErrInvalidBoardID
	}
	if name == "" {
		return Column{}, ErrInvalidName
	}
	if position < 0 {
		return Column{}, ErrInvalidPosition
	}

	return Column{
		ID:        id,
		BoardID:   boardID,
		Name:      name,
		Position:  position,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// Rename renames the requested operation.
func (c *Column) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	c.Name = name
	c.UpdatedAt = now.UTC()
	return nil
}

// SetPosition handles set position.
func (c *Column) SetPosition(position float64, now time.Time) error {
	if position < 0 {
		return ErrInvalidPosition
	}
	c.Position = position
	c.UpdatedAt = now.UTC()
	return nil
}

// Archive archives the requested operation.
func (c *Column) Archive(now time.Time) {
	ts := now.UTC()
	c.ArchivedAt = &ts
	c.UpdatedAt = ts
}

// Restore restores the requested operation.
func (c *Column) Restore(now time.Time) {
	c.ArchivedAt = nil
	c.UpdatedAt = now.UTC()
}
