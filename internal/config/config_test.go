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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnvOverridesDataDir(t *testing.T) {
	old := os.Getenv(EnvDataDir)
	_ = os.Setenv(EnvDataDir, "/tmp/threads-test-data")
	t.Cleanup(func() { _ = os.Setenv(EnvDataDir, old) })
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Storage.DataDir, "/tmp/threads-test-data"; got != want {
		t.Fatalf("Storage.DataDir = %q, want %q", got, want)
	}
	db, err := cfg.DatabasePath()
	if err != nil {
		t.Fatalf("DatabasePath() error: %v", err)
	}
	if db != filepath.Join("/tmp/threads-test-data", "threads.db") {
		t.Fatalf("DatabasePath = %q", db)
	}
}

func TestEnvOverridesRecentAndBackups(t *testing.T) {
	oldRecent := os.Getenv(EnvRecent)
	oldBackups := os.Getenv(EnvBackups)
	oldKeep := os.Getenv(EnvBackupKeep)
	_ = os.Setenv(EnvRecent, "8")
	_ = os.Setenv(EnvBackups, "no")
	_ = os.Setenv(EnvBackupKeep, "3")
	t.Cleanup(func() {
		_ = os.Setenv(EnvRecent, oldRecent)
		_ = os.Setenv(EnvBackups, oldBackups)
		_ = os.Setenv(EnvBackupKeep, oldKeep)
	})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Display.Recent != 8 {
		t.Fatalf("Display.Recent = %d, want 8 from env override", cfg.Display.Recent)
	}
	if cfg.Storage.Backups {
		t.Fatalf("Storage.Backups expected false from env override")
	}
	if cfg.Storage.BackupKeep != 3 {
		t.Fatalf("Storage.BackupKeep = %d, want 3", cfg.Storage.BackupKeep)
	}
}

func TestMergeIncludesStorage(t *testing.T) {
	// Given a file config that sets a data dir, mergeInto should carry it through
	dst := Defaults()
	src := Defaults()
	src.Storage.DataDir = "/var/lib/threads"
	src.Storage.Backups = false
	mergeInto(&dst, &src)
	if dst.Storage.DataDir != "/var/lib/threads" {
		t.Fatalf("DataDir was not merged from file config")
	}
	if dst.Storage.Backups {
		t.Fatalf("Backups=false was not merged from file config")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/threads.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/threads.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	oldLevel := os.Getenv(EnvLogLevel)
	oldFmt := os.Getenv(EnvLogFormat)
	oldSrc := os.Getenv(EnvLogSource)
	oldFile := os.Getenv(EnvLogFile)
	_ = os.Setenv(EnvLogLevel, "error")
	_ = os.Setenv(EnvLogFormat, "json")
	_ = os.Setenv(EnvLogSource, "1")
	_ = os.Setenv(EnvLogFile, "X:/threads.log")
	t.Cleanup(func() {
		_ = os.Setenv(EnvLogLevel, oldLevel)
		_ = os.Setenv(EnvLogFormat, oldFmt)
		_ = os.Setenv(EnvLogSource, oldSrc)
		_ = os.Setenv(EnvLogFile, oldFile)
	})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/threads.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestDefaultDataDirNonEmpty(t *testing.T) {
	dir, err := DefaultDataDir()
	if err != nil {
		t.Fatalf("DefaultDataDir() error: %v", err)
	}
	if strings.TrimSpace(dir) == "" {
		t.Fatalf("DefaultDataDir() returned empty path")
	}
}
