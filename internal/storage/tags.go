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
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// INSERT OR IGNORE rides the UNIQUE(thread_id, name) constraint, making
// repeated tagging a no-op.
// language=SQL
// dialect=SQLite
const insertTagSQL = `INSERT OR IGNORE INTO tags(thread_id, name, created_at) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectTagsSQL = `SELECT name FROM tags WHERE thread_id = ? ORDER BY name ASC`

// TagThread attaches each name to the thread. Names are trimmed and
// lowercased before storing; blanks are skipped; duplicates are ignored.
func (s *Store) TagThread(ctx context.Context, threadID int64, names ...string) error {
	if threadID <= 0 {
		return fmt.Errorf("%w: thread id must be positive", ErrInvalid)
	}
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		cleaned = append(cleaned, n)
	}
	if len(cleaned) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tag: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, threadExistsSQL, threadID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("thread %d: %w", threadID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check thread %d: %w", threadID, err)
	}

	now := nowNanos()
	for _, n := range cleaned {
		if _, err := tx.ExecContext(ctx, insertTagSQL, threadID, n, now); err != nil {
			return fmt.Errorf("insert tag %q: %w", n, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tag: %w", err)
	}
	return nil
}

// Tags returns the thread's tag names sorted alphabetically. A thread with
// no tags yields an empty slice, not an error.
func (s *Store) Tags(ctx context.Context, threadID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, selectTagsSQL, threadID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out, nil
}
