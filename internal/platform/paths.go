// Package platform resolves the per-OS filesystem locations flytta reads
// and writes: the TOML config file and the sqlite database.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName is the directory name used under the platform config and
// data roots.
const DefaultAppName = "flytta"

// Paths is the resolved location set: config file, data directory, and the
// sqlite database inside the data directory.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options tune path resolution. DevMode suffixes the app directory so a
// development sandbox never touches the real install's data.
type Options struct {
	AppName string
	DevMode bool
}

// Env looks up one environment variable. Production code passes os.Getenv;
// tests pass a map lookup.
type Env func(key string) string

// DefaultPaths resolves paths for the standard app name on the current OS.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions resolves paths on the current OS. Linux keeps
// config and data apart (XDG convention); Windows splits them across
// roaming and local app data; macOS and everything else put both under the
// os.UserConfigDir root.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configRoot, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataRoot := configRoot
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		dataRoot = filepath.Join(home, ".local", "share")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			dataRoot = v
		}
	}
	return Resolve(runtime.GOOS, os.Getenv, configRoot, dataRoot, opts)
}

// Resolve computes the path set for an explicit OS and environment. The
// roots are the fallbacks applied when no overriding variable is set, so
// the result is fully deterministic given its arguments.
func Resolve(goos string, env Env, configRoot, dataRoot string, opts Options) (Paths, error) {
	if configRoot == "" || dataRoot == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	if env == nil {
		env = func(string) string { return "" }
	}
	dir := appDir(opts)

	switch goos {
	case "linux":
		if v := env("XDG_CONFIG_HOME"); v != "" {
			configRoot = v
		}
		if v := env("XDG_DATA_HOME"); v != "" {
			dataRoot = v
		}
	case "windows":
		if v := env("APPDATA"); v != "" {
			configRoot = v
		}
		if v := env("LOCALAPPDATA"); v != "" {
			dataRoot = v
		}
	}

	dataDir := filepath.Join(dataRoot, dir)
	return Paths{
		ConfigPath: filepath.Join(configRoot, dir, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, dir+".db"),
	}, nil
}

// appDir derives the per-app directory name from the options.
func appDir(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if opts.DevMode {
		name += "-dev"
	}
	return name
}
