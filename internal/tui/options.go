package tui

import (
	"time"

	"github.com/hylla/flytta/internal/drag"
)

// TaskFieldConfig controls which task attributes render on a card.
type TaskFieldConfig struct {
	ShowPriority bool
	ShowDueDate  bool
	ShowLabels   bool
}

// DragTuning carries the reorder-engine parameters the host exposes through
// configuration. Zero values fall back to the engine defaults.
type DragTuning struct {
	GapUnit       float64
	TieBreak      float64
	Epsilon       float64
	Cooldown      time.Duration
	TabMargin     float64
	HoverDebounce int
}

type Option func(*Model)

func DefaultTaskFieldConfig() TaskFieldConfig {
	return TaskFieldConfig{
		ShowPriority: true,
		ShowDueDate:  true,
		ShowLabels:   true,
	}
}

func DefaultDragTuning() DragTuning {
	return DragTuning{
		GapUnit:       drag.DefaultGapUnit,
		TieBreak:      drag.DefaultTieBreak,
		Epsilon:       drag.DefaultEpsilon,
		Cooldown:      drag.DefaultCooldown,
		TabMargin:     drag.DefaultTabMargin,
		HoverDebounce: drag.DefaultHoverDebounce,
	}
}

func WithTaskFieldConfig(cfg TaskFieldConfig) Option {
	return func(m *Model) {
		m.taskFields = cfg
	}
}

func WithDragTuning(t DragTuning) Option {
	return func(m *Model) {
		m.tuning = t
	}
}

// WithRefreshInterval overrides how often the board reloads from storage.
// Zero or negative disables the periodic refresh.
func WithRefreshInterval(every time.Duration) Option {
	return func(m *Model) {
		m.refreshEvery = every
	}
}

func WithLogger(log drag.Logger) Option {
	return func(m *Model) {
		if log != nil {
			m.logger = log
		}
	}
}
