/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "threads/internal/log"
)

const BackupsDirName = "backups"

// Backup copies the database file into the backups directory under a
// timestamped name and prunes old copies down to the configured keep count.
// The WAL is checkpointed first so the copy holds every committed write;
// a failed checkpoint only degrades freshness, so it is logged and ignored.
// Returns the path of the new backup file.
func (s *Store) Backup(ctx context.Context) (string, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "backup").With(
		slog.String("db", s.path),
	)
	if _, err := os.Stat(s.path); err != nil {
		return "", fmt.Errorf("stat database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE);`); err != nil {
		l.Warn("wal checkpoint before backup failed", slog.String("error", err.Error()))
	}

	bdir := filepath.Join(s.dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	bname := fmt.Sprintf("threads_%s.db", stamp)
	bpath := filepath.Join(bdir, bname)
	if err := copyFile(s.path, bpath); err != nil {
		return "", fmt.Errorf("copy database: %w", err)
	}
	l.Debug("backup written", slog.String("file", bpath))

	if err := s.pruneBackups(bdir); err != nil {
		l.Warn("prune old backups failed", slog.String("error", err.Error()))
	}
	return bpath, nil
}

// pruneBackups removes the oldest backup files beyond the keep count.
func (s *Store) pruneBackups(bdir string) error {
	keep := s.backupKeep
	if keep <= 0 {
		return nil
	}
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, "threads_") && strings.HasSuffix(name, ".db") {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) <= keep {
		return nil
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	for _, name := range candidates[:len(candidates)-keep] {
		if err := os.Remove(filepath.Join(bdir, name)); err != nil {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}
