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
	"strings"
	"time"

	"threads/internal/domain"
)

// language=SQL
// dialect=SQLite
const selectAllThreadsSQL = `SELECT id, question, created_at, last_active_at, archived FROM threads ORDER BY id ASC`

// restoreThreadSQL keeps the archived bit, unlike insertThreadSQL which
// always creates live threads.
// language=SQL
// dialect=SQLite
const restoreThreadSQL = `INSERT INTO threads(question, created_at, last_active_at, archived) VALUES (?, ?, ?, ?)`

// RestoreResult reports how many records a Restore call created.
type RestoreResult struct {
	Threads   int
	Resources int
	Tags      int
}

// Dump reads the whole database, archived threads included, into a portable
// archive ordered by thread ID. Each thread carries its resources and tags.
func (s *Store) Dump(ctx context.Context) (domain.Archive, error) {
	rows, err := s.db.QueryContext(ctx, selectAllThreadsSQL)
	if err != nil {
		return domain.Archive{}, fmt.Errorf("dump threads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var threads []domain.Thread
	for rows.Next() {
		var (
			th       domain.Thread
			created  int64
			active   int64
			archived int
		)
		if err := rows.Scan(&th.ID, &th.Question, &created, &active, &archived); err != nil {
			return domain.Archive{}, fmt.Errorf("scan thread row: %w", err)
		}
		th.CreatedAt = fromNanos(created)
		th.LastActive = fromNanos(active)
		th.Archived = archived != 0
		threads = append(threads, th)
	}
	if err := rows.Err(); err != nil {
		return domain.Archive{}, fmt.Errorf("dump threads: %w", err)
	}

	for i := range threads {
		threads[i].Resources, err = s.resourcesForThread(ctx, threads[i].ID)
		if err != nil {
			return domain.Archive{}, err
		}
		threads[i].Tags, err = s.Tags(ctx, threads[i].ID)
		if err != nil {
			return domain.Archive{}, err
		}
	}
	if threads == nil {
		threads = []domain.Thread{} // keep "threads" an array in JSON, never null
	}

	return domain.Archive{
		SchemaVersion: schemaVersion,
		ExportedAt:    time.Now().UTC(),
		Threads:       threads,
	}, nil
}

// Restore inserts every thread from the archive with a freshly assigned ID,
// re-parenting its resources and tags, in one transaction. Existing rows are
// untouched; restoring into a non-empty database merges. IDs inside the
// archive are ignored.
func (s *Store) Restore(ctx context.Context, a domain.Archive) (RestoreResult, error) {
	if a.SchemaVersion < 1 || a.SchemaVersion > schemaVersion {
		return RestoreResult{}, fmt.Errorf("%w: archive schema %d is not supported (current %d)", ErrInvalid, a.SchemaVersion, schemaVersion)
	}
	for _, th := range a.Threads {
		if strings.TrimSpace(th.Question) == "" {
			return RestoreResult{}, fmt.Errorf("%w: archive thread with empty question", ErrInvalid)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RestoreResult{}, fmt.Errorf("begin restore: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var out RestoreResult
	tagStamp := nowNanos()
	for _, th := range a.Threads {
		res, err := tx.ExecContext(ctx, restoreThreadSQL,
			strings.TrimSpace(th.Question), th.CreatedAt.UnixNano(), th.LastActive.UnixNano(), boolToInt(th.Archived))
		if err != nil {
			return RestoreResult{}, fmt.Errorf("restore thread: %w", err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return RestoreResult{}, fmt.Errorf("restored thread id: %w", err)
		}
		out.Threads++

		for _, r := range th.Resources {
			if r.Content == "" {
				return RestoreResult{}, fmt.Errorf("%w: archive resource with empty content", ErrInvalid)
			}
			if _, err := tx.ExecContext(ctx, insertResourceSQL, newID, r.Content, r.CreatedAt.UnixNano()); err != nil {
				return RestoreResult{}, fmt.Errorf("restore resource: %w", err)
			}
			out.Resources++
		}
		for _, name := range th.Tags {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, insertTagSQL, newID, name, tagStamp); err != nil {
				return RestoreResult{}, fmt.Errorf("restore tag %q: %w", name, err)
			}
			out.Tags++
		}
	}

	if err := tx.Commit(); err != nil {
		return RestoreResult{}, fmt.Errorf("commit restore: %w", err)
	}
	return out, nil
}
