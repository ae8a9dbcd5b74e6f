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

	"threads/internal/domain"
)

// language=SQL
// dialect=SQLite
const insertThreadSQL = `INSERT INTO threads(question, created_at, last_active_at, archived) VALUES (?, ?, ?, 0)`

// language=SQL
// dialect=SQLite
const selectThreadSQL = `SELECT id, question, created_at, last_active_at, archived FROM threads WHERE id = ?`

// listThreadsSQL carries the derived resource count; LIMIT -1 means no limit.
// language=SQL
// dialect=SQLite
const listThreadsSQL = `SELECT t.id, t.question, t.last_active_at, t.archived,
	(SELECT COUNT(*) FROM resources r WHERE r.thread_id = t.id) AS resource_count
FROM threads t
WHERE (t.archived = 0 OR ? = 1)
ORDER BY t.last_active_at DESC
LIMIT ?`

// language=SQL
// dialect=SQLite
const selectCurrentThreadIDSQL = `SELECT id FROM threads WHERE (archived = 0 OR ? = 1) ORDER BY last_active_at DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const touchThreadSQL = `UPDATE threads SET last_active_at = ? WHERE id = ?`

// language=SQL
// dialect=SQLite
const setArchivedSQL = `UPDATE threads SET archived = ? WHERE id = ?`

// CreateThread inserts a new thread titled question with both timestamps set
// to now and archived false, and returns the stored record including its
// assigned ID. A blank question is ErrInvalid.
func (s *Store) CreateThread(ctx context.Context, question string) (domain.Thread, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Thread{}, fmt.Errorf("%w: question must not be empty", ErrInvalid)
	}
	now := nowNanos()
	res, err := s.db.ExecContext(ctx, insertThreadSQL, question, now, now)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("insert thread: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Thread{}, fmt.Errorf("thread id: %w", err)
	}
	return domain.Thread{
		ID:         id,
		Question:   question,
		CreatedAt:  fromNanos(now),
		LastActive: fromNanos(now),
		Archived:   false,
	}, nil
}

// ListThreads returns threads ordered most recently active first, skipping
// archived ones unless includeArchived. limit <= 0 returns all. Each summary
// carries the derived resource count and the thread's tags.
func (s *Store) ListThreads(ctx context.Context, includeArchived bool, limit int) ([]domain.ThreadSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, listThreadsSQL, boolToInt(includeArchived), limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.ThreadSummary
	for rows.Next() {
		var (
			ts       domain.ThreadSummary
			active   int64
			archived int
		)
		if err := rows.Scan(&ts.ID, &ts.Question, &active, &archived, &ts.ResourceCount); err != nil {
			return nil, fmt.Errorf("scan thread row: %w", err)
		}
		ts.LastActive = fromNanos(active)
		ts.Archived = archived != 0
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	for i := range out {
		tags, err := s.Tags(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Tags = tags
	}
	return out, nil
}

// RecentThreads returns the n most recently active non-archived threads, the
// feed for the interactive picker.
func (s *Store) RecentThreads(ctx context.Context, n int) ([]domain.ThreadSummary, error) {
	if n <= 0 {
		n = 5
	}
	return s.ListThreads(ctx, false, n)
}

// GetThread fetches a single thread with its resources (oldest first) and
// tags. ErrNotFound when no thread has that ID.
func (s *Store) GetThread(ctx context.Context, id int64) (domain.Thread, error) {
	if id <= 0 {
		return domain.Thread{}, fmt.Errorf("%w: thread id must be positive", ErrInvalid)
	}
	th, err := s.threadByID(ctx, id)
	if err != nil {
		return domain.Thread{}, err
	}
	th.Resources, err = s.resourcesForThread(ctx, id)
	if err != nil {
		return domain.Thread{}, err
	}
	th.Tags, err = s.Tags(ctx, id)
	if err != nil {
		return domain.Thread{}, err
	}
	return th, nil
}

// CurrentThread returns the most recently active thread under the archived
// filter, fully loaded. ErrNotFound when no thread qualifies.
func (s *Store) CurrentThread(ctx context.Context, includeArchived bool) (domain.Thread, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, selectCurrentThreadIDSQL, boolToInt(includeArchived)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Thread{}, fmt.Errorf("no threads yet: %w", ErrNotFound)
	}
	if err != nil {
		return domain.Thread{}, fmt.Errorf("current thread: %w", err)
	}
	return s.GetThread(ctx, id)
}

// TouchThread moves the thread's last_active_at to now. Used when a thread
// is viewed so "current" tracks attention, not only writes.
func (s *Store) TouchThread(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: thread id must be positive", ErrInvalid)
	}
	res, err := s.db.ExecContext(ctx, touchThreadSQL, nowNanos(), id)
	if err != nil {
		return fmt.Errorf("touch thread: %w", err)
	}
	return requireThreadHit(res, id)
}

// ArchiveThread soft-deletes the thread. Archiving an already archived
// thread is a no-op, not an error.
func (s *Store) ArchiveThread(ctx context.Context, id int64) error {
	return s.setArchived(ctx, id, true)
}

// UnarchiveThread brings an archived thread back into default listings.
// Idempotent like ArchiveThread.
func (s *Store) UnarchiveThread(ctx context.Context, id int64) error {
	return s.setArchived(ctx, id, false)
}

func (s *Store) setArchived(ctx context.Context, id int64, archived bool) error {
	if id <= 0 {
		return fmt.Errorf("%w: thread id must be positive", ErrInvalid)
	}
	res, err := s.db.ExecContext(ctx, setArchivedSQL, boolToInt(archived), id)
	if err != nil {
		return fmt.Errorf("set archived: %w", err)
	}
	return requireThreadHit(res, id)
}

func (s *Store) threadByID(ctx context.Context, id int64) (domain.Thread, error) {
	var (
		th       domain.Thread
		created  int64
		active   int64
		archived int
	)
	err := s.db.QueryRowContext(ctx, selectThreadSQL, id).Scan(&th.ID, &th.Question, &created, &active, &archived)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Thread{}, fmt.Errorf("thread %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Thread{}, fmt.Errorf("read thread %d: %w", id, err)
	}
	th.CreatedAt = fromNanos(created)
	th.LastActive = fromNanos(active)
	th.Archived = archived != 0
	return th, nil
}

// requireThreadHit maps a zero-row UPDATE to ErrNotFound. SQLite counts rows
// matched by the WHERE clause even when the stored value is unchanged, so
// idempotent state changes still report a hit.
func requireThreadHit(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("thread %d: %w", id, ErrNotFound)
	}
	return nil
}
