package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type DeleteMode string

const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Delete     DeleteConfig     `toml:"delete"`
	Board      BoardConfig      `toml:"board"`
	Drag       DragConfig       `toml:"drag"`
	TaskFields TaskFieldsConfig `toml:"task_fields"`
	Keys       KeyConfig        `toml:"keys"`
	Logging    LoggingConfig    `toml:"logging"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type DeleteConfig struct {
	DefaultMode DeleteMode `toml:"default_mode"`
}

type BoardConfig struct {
	Columns           []ColumnConfig `toml:"columns"`
	AutoCreateColumns bool           `toml:"auto_create_columns"`
}

type ColumnConfig struct {
	Name     string  `toml:"name"`
	Position float64 `toml:"position"`
}

// DragConfig tunes the reorder engine. Zero values fall back to the engine
// defaults, so an empty [drag] table is valid.
type DragConfig struct {
	GapUnit             float64 `toml:"gap_unit"`
	TieBreak            float64 `toml:"tie_break"`
	Epsilon             float64 `toml:"epsilon"`
	CooldownMS          int     `toml:"cooldown_ms"`
	TabMarginRows       float64 `toml:"tab_margin_rows"`
	HoverDebounceFrames int     `toml:"hover_debounce_frames"`
}

type TaskFieldsConfig struct {
	ShowPriority bool `toml:"show_priority"`
	ShowDueDate  bool `toml:"show_due_date"`
	ShowLabels   bool `toml:"show_labels"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type KeyConfig struct {
	Quit      string `toml:"quit"`
	Help      string `toml:"help"`
	Peek      string `toml:"peek"`
	YankTitle string `toml:"yank_title"`
	NextBoard string `toml:"next_board"`
	PrevBoard string `toml:"prev_board"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{Name: "To Do", Position: 0},
		{Name: "In Progress", Position: 1},
		{Name: "Done", Position: 2},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Delete: DeleteConfig{
			DefaultMode: DeleteModeArchive,
		},
		Board: BoardConfig{
			Columns:           defaultColumns(),
			AutoCreateColumns: true,
		},
		Drag: DragConfig{
			GapUnit:             1.0,
			TieBreak:            0.5,
			Epsilon:             0.0001,
			CooldownMS:          2000,
			TabMarginRows:       1.0,
			HoverDebounceFrames: 2,
		},
		TaskFields: TaskFieldsConfig{
			ShowPriority: true,
			ShowDueDate:  true,
			ShowLabels:   true,
		},
		Keys: KeyConfig{
			Quit:      "q",
			Help:      "?",
			Peek:      "enter",
			YankTitle: "y",
			NextBoard: "tab",
			PrevBoard: "shift+tab",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	switch c.Delete.DefaultMode {
	case DeleteModeArchive, DeleteModeHard:
	default:
		return fmt.Errorf("invalid delete.default_mode: %q", c.Delete.DefaultMode)
	}

	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seenName := map[string]struct{}{}
	for idx := range c.Board.Columns {
		column := c.Board.Columns[idx]
		column.Name = strings.TrimSpace(column.Name)
		if column.Name == "" {
			return fmt.Errorf("board.columns[%d].name is required", idx)
		}
		if column.Position < 0 {
			return fmt.Errorf("board.columns[%d].position must be >= 0", idx)
		}
		key := strings.ToLower(column.Name)
		if _, ok := seenName[key]; ok {
			return fmt.Errorf("board.columns[%d].name is duplicated: %s", idx, column.Name)
		}
		seenName[key] = struct{}{}
		c.Board.Columns[idx] = column
	}

	if c.Drag.GapUnit < 0 {
		return errors.New("drag.gap_unit must be >= 0")
	}
	if c.Drag.TieBreak < 0 {
		return errors.New("drag.tie_break must be >= 0")
	}
	if c.Drag.Epsilon < 0 {
		return errors.New("drag.epsilon must be >= 0")
	}
	if c.Drag.CooldownMS < 0 {
		return errors.New("drag.cooldown_ms must be >= 0")
	}
	if c.Drag.TabMarginRows < 0 {
		return errors.New("drag.tab_margin_rows must be >= 0")
	}
	if c.Drag.HoverDebounceFrames < 0 {
		return errors.New("drag.hover_debounce_frames must be >= 0")
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
