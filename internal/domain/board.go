package domain

import (
	"strings"
	"time"
)

// Board owns an ordered set of columns. Position orders the board's tab
// among its siblings.
type Board struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Position    float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ArchivedAt  *time.Time
}

// NewBoard constructs a new value for this package.
func NewBoard(id, name, description string, position float64, now time.Time) (Board, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Board{}, ErrInvalidID
	}
	if name == "" {
		return Board{}, ErrInvalidName
	}
	if position < 0 {
		return Board{}, ErrInvalidPosition
	}

	return Board{
		ID:          id,
		Slug:        normalizeSlug(name),
		Name:        name,
		Description: strings.TrimSpace(description),
		Position:    position,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// Rename renames the requested operation.
func (b *Board) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	b.Name = name
	b.Slug = normalizeSlug(name)
	b.UpdatedAt = now.UTC()
	return nil
}

// SetPosition handles set position.
func (b *Board) SetPosition(position float64, now time.Time) error {
	if position < 0 {
		return ErrInvalidPosition
	}
	b.Position = position
	b.UpdatedAt = now.UTC()
	return nil
}

// Archive archives the requested operation.
func (b *Board) Archive(now time.Time) {
	ts := now.UTC()
	b.ArchivedAt = &ts
	b.UpdatedAt = ts
}

// Restore restores the requested operation.
func (b *Board) Restore(now time.Time) {
	b.ArchivedAt = nil
	b.UpdatedAt = now.UTC()
}

// normalizeSlug normalizes slug.
func normalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	prevDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
