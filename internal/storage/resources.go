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

	"threads/internal/domain"
)

// language=SQL
// dialect=SQLite
const threadExistsSQL = `SELECT 1 FROM threads WHERE id = ?`

// language=SQL
// dialect=SQLite
const insertResourceSQL = `INSERT INTO resources(thread_id, content, created_at) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectResourcesSQL = `SELECT id, thread_id, content, created_at FROM resources WHERE thread_id = ? ORDER BY created_at ASC, id ASC`

// AttachResource stores content on the thread and bumps its last_active_at,
// both in one transaction so a failed insert never moves the activity clock.
// Empty content is ErrInvalid; a missing thread is ErrNotFound.
func (s *Store) AttachResource(ctx context.Context, threadID int64, content string) (domain.Resource, error) {
	if threadID <= 0 {
		return domain.Resource{}, fmt.Errorf("%w: thread id must be positive", ErrInvalid)
	}
	if content == "" {
		return domain.Resource{}, fmt.Errorf("%w: resource content must not be empty", ErrInvalid)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("begin attach: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, threadExistsSQL, threadID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Resource{}, fmt.Errorf("thread %d: %w", threadID, ErrNotFound)
	}
	if err != nil {
		return domain.Resource{}, fmt.Errorf("check thread %d: %w", threadID, err)
	}

	now := nowNanos()
	res, err := tx.ExecContext(ctx, insertResourceSQL, threadID, content, now)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("insert resource: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Resource{}, fmt.Errorf("resource id: %w", err)
	}
	if _, err := tx.ExecContext(ctx, touchThreadSQL, now, threadID); err != nil {
		return domain.Resource{}, fmt.Errorf("touch thread: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Resource{}, fmt.Errorf("commit attach: %w", err)
	}

	return domain.Resource{
		ID:        id,
		ThreadID:  threadID,
		Content:   content,
		CreatedAt: fromNanos(now),
	}, nil
}

func (s *Store) resourcesForThread(ctx context.Context, threadID int64) ([]domain.Resource, error) {
	rows, err := s.db.QueryContext(ctx, selectResourcesSQL, threadID)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Resource
	for rows.Next() {
		var (
			r       domain.Resource
			created int64
		)
		if err := rows.Scan(&r.ID, &r.ThreadID, &r.Content, &created); err != nil {
			return nil, fmt.Errorf("scan resource row: %w", err)
		}
		r.CreatedAt = fromNanos(created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return out, nil
}
