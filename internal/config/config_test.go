package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/flytta.db")
	if cfg.Database.Path != "/tmp/flytta.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Delete.DefaultMode != DeleteModeArchive {
		t.Fatalf("unexpected delete mode %q", cfg.Delete.DefaultMode)
	}
	if len(cfg.Board.Columns) != 3 || cfg.Board.Columns[0].Name != "To Do" {
		t.Fatalf("unexpected default columns %#v", cfg.Board.Columns)
	}
	if cfg.Drag.GapUnit != 1.0 || cfg.Drag.CooldownMS != 2000 || cfg.Drag.HoverDebounceFrames != 2 {
		t.Fatalf("unexpected drag defaults %#v", cfg.Drag)
	}
	if !cfg.TaskFields.ShowPriority || !cfg.TaskFields.ShowDueDate || !cfg.TaskFields.ShowLabels {
		t.Fatal("expected priority/due_date/labels enabled by default")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/flytta.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/flytta.db"

[delete]
default_mode = "hard"

[drag]
gap_unit = 10.0
cooldown_ms = 500
tab_margin_rows = 2.0

[task_fields]
show_priority = true
show_due_date = false
show_labels = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/flytta.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Delete.DefaultMode != DeleteModeHard {
		t.Fatalf("unexpected delete mode %q", cfg.Delete.DefaultMode)
	}
	if cfg.Drag.GapUnit != 10.0 || cfg.Drag.CooldownMS != 500 || cfg.Drag.TabMarginRows != 2.0 {
		t.Fatalf("unexpected drag override %#v", cfg.Drag)
	}
	if cfg.Drag.HoverDebounceFrames != 2 {
		t.Fatalf("expected untouched drag default to survive, got %d", cfg.Drag.HoverDebounceFrames)
	}
	if cfg.TaskFields.ShowDueDate {
		t.Fatal("expected due_date hidden from config override")
	}
}

func TestLoadRejectsInvalidDeleteMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/flytta.db"

[delete]
default_mode = "weird"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	_, err := Load(path, Default("/tmp/default.db"))
	if err == nil {
		t.Fatal("expected error for invalid delete mode")
	}
}

func TestLoadRejectsNegativeDragValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/flytta.db"

[drag]
cooldown_ms = -1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	_, err := Load(path, Default("/tmp/default.db"))
	if err == nil {
		t.Fatal("expected error for negative cooldown")
	}
}

func TestLoadRejectsDuplicateColumnNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/flytta.db"

[[board.columns]]
name = "To Do"
position = 0.0

[[board.columns]]
name = "to do"
position = 1.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	_, err := Load(path, Default("/tmp/default.db"))
	if err == nil {
		t.Fatal("expected error for duplicate column names")
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
