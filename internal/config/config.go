/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the user-editable configuration persisted to a YAML file in the
// user scope. Environment variables are treated as read-only overrides at
// runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type StorageConfig struct {
	DataDir    string `yaml:"data_dir"`    // empty = platform default
	Backups    bool   `yaml:"backups"`     // copy the database before mutations
	BackupKeep int    `yaml:"backup_keep"` // rotation depth; 0 keeps everything
}

type DisplayConfig struct {
	Recent int    `yaml:"recent"` // picker depth
	Color  string `yaml:"color"`  // "auto" | "always" | "never"
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type Config struct {
	ConfigVersion int           `yaml:"config_version"`
	Storage       StorageConfig `yaml:"storage"`
	Display       DisplayConfig `yaml:"display"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() Config {
	return Config{
		ConfigVersion: 1,
		Storage:       StorageConfig{DataDir: "", Backups: true, BackupKeep: 20},
		Display:       DisplayConfig{Recent: 5, Color: "auto"},
		Logging:       LoggingConfig{Level: "warn", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvDataDir    = "THREADS_DATA_DIR"
	EnvBackups    = "THREADS_BACKUPS"
	EnvBackupKeep = "THREADS_BACKUP_KEEP"
	EnvRecent     = "THREADS_RECENT"
	EnvColor      = "THREADS_COLOR"

	// Logging envs, shared with internal/log FromEnv.
	EnvLogLevel  = "THREADS_LOG_LEVEL"
	EnvLogFormat = "THREADS_LOG_FORMAT"
	EnvLogSource = "THREADS_LOG_SOURCE"
	EnvLogFile   = "THREADS_LOG_FILE"
)

// DefaultDataDir returns the per-user data directory, which holds the
// database, config file, backups and crash reports.
func DefaultDataDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Threads")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Threads")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "threads")
	}
	if base == "" {
		return "", errors.New("cannot resolve data directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir resolves the effective data directory: the configured override when
// set, the platform default otherwise.
func (c Config) DataDir() (string, error) {
	if strings.TrimSpace(c.Storage.DataDir) != "" {
		return c.Storage.DataDir, nil
	}
	return DefaultDataDir()
}

// DatabasePath resolves the SQLite file location inside the data directory.
func (c Config) DatabasePath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "threads.db"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (Config, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		// Seed from defaults so keys absent from the file keep their
		// defaults; yaml would otherwise zero the booleans.
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML under the data directory.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *Config, src *Config) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.Storage.DataDir) != "" {
		dst.Storage.DataDir = strings.TrimSpace(src.Storage.DataDir)
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Storage.Backups = src.Storage.Backups
	if src.Storage.BackupKeep != 0 {
		dst.Storage.BackupKeep = src.Storage.BackupKeep
	}
	if src.Display.Recent != 0 {
		dst.Display.Recent = src.Display.Recent
	}
	if strings.TrimSpace(src.Display.Color) != "" {
		dst.Display.Color = strings.ToLower(strings.TrimSpace(src.Display.Color))
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackups)); v != "" {
		cfg.Storage.Backups = boolValue(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackupKeep)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Storage.BackupKeep = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRecent)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Display.Recent = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvColor)); v != "" {
		cfg.Display.Color = strings.ToLower(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = boolValue(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func boolValue(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}
