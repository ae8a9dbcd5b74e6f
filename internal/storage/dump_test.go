/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"threads/internal/domain"
)

func TestDumpRestoreRoundTrip(t *testing.T) {
	ctx := testContext(t)
	src := openTestStore(t)

	a, _ := src.CreateThread(ctx, "kept thread")
	if _, err := src.AttachResource(ctx, a.ID, "https://example.com"); err != nil {
		t.Fatalf("AttachResource error: %v", err)
	}
	if _, err := src.AttachResource(ctx, a.ID, "plain note"); err != nil {
		t.Fatalf("AttachResource error: %v", err)
	}
	if err := src.TagThread(ctx, a.ID, "go", "db"); err != nil {
		t.Fatalf("TagThread error: %v", err)
	}
	b, _ := src.CreateThread(ctx, "archived thread")
	if err := src.ArchiveThread(ctx, b.ID); err != nil {
		t.Fatalf("ArchiveThread error: %v", err)
	}

	arch, err := src.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	if arch.SchemaVersion != schemaVersion {
		t.Fatalf("archive schema = %d, want %d", arch.SchemaVersion, schemaVersion)
	}
	if len(arch.Threads) != 2 {
		t.Fatalf("expected 2 threads in archive, got %d", len(arch.Threads))
	}

	dst := openTestStore(t)
	res, err := dst.Restore(ctx, arch)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if res.Threads != 2 || res.Resources != 2 || res.Tags != 2 {
		t.Fatalf("restore counts = %+v, want 2/2/2", res)
	}

	all, err := dst.ListThreads(ctx, true, 0)
	if err != nil {
		t.Fatalf("ListThreads error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 restored threads, got %d", len(all))
	}

	var kept domain.Thread
	found := false
	for _, ts := range all {
		if ts.Question == "kept thread" {
			kept, err = dst.GetThread(ctx, ts.ID)
			if err != nil {
				t.Fatalf("GetThread error: %v", err)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("restored store is missing the kept thread")
	}
	if len(kept.Resources) != 2 {
		t.Fatalf("expected 2 restored resources, got %d", len(kept.Resources))
	}
	if kept.Resources[0].Content != "https://example.com" || kept.Resources[1].Content != "plain note" {
		t.Fatalf("restored resources out of order or altered: %+v", kept.Resources)
	}
	if len(kept.Tags) != 2 {
		t.Fatalf("expected 2 restored tags, got %v", kept.Tags)
	}
	if !kept.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("restore should preserve created_at: %v != %v", kept.CreatedAt, a.CreatedAt)
	}
}

func TestRestoreAssignsFreshIDs(t *testing.T) {
	ctx := testContext(t)
	st := openTestStore(t)

	if _, err := st.CreateThread(ctx, "already here"); err != nil {
		t.Fatalf("CreateThread error: %v", err)
	}
	arch := domain.Archive{
		SchemaVersion: schemaVersion,
		Threads: []domain.Thread{
			{ID: 1, Question: "incoming", CreatedAt: fromNanos(1000), LastActive: fromNanos(2000)},
		},
	}
	if _, err := st.Restore(ctx, arch); err != nil {
		t.Fatalf("Restore error: %v", err)
	}

	all, err := st.ListThreads(ctx, true, 0)
	if err != nil {
		t.Fatalf("ListThreads error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("restore should merge, got %d threads", len(all))
	}
	seen := map[int64]bool{}
	for _, ts := range all {
		if seen[ts.ID] {
			t.Fatalf("duplicate thread ID %d after restore", ts.ID)
		}
		seen[ts.ID] = true
	}
}

func TestRestoreRejectsBadArchives(t *testing.T) {
	ctx := testContext(t)
	st := openTestStore(t)

	for _, arch := range []domain.Archive{
		{SchemaVersion: 0},
		{SchemaVersion: schemaVersion + 1},
		{SchemaVersion: schemaVersion, Threads: []domain.Thread{{Question: "   "}}},
	} {
		if _, err := st.Restore(ctx, arch); !errors.Is(err, ErrInvalid) {
			t.Fatalf("archive %+v: expected ErrInvalid, got %v", arch, err)
		}
	}

	// A rejected archive must not leave partial rows behind.
	all, err := st.ListThreads(ctx, true, 0)
	if err != nil {
		t.Fatalf("ListThreads error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("failed restore left %d threads behind", len(all))
	}
}

func TestDumpEmptyStore(t *testing.T) {
	ctx := testContext(t)
	st := openTestStore(t)

	arch, err := st.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	if arch.Threads == nil || len(arch.Threads) != 0 {
		t.Fatalf("empty dump should carry an empty slice, got %#v", arch.Threads)
	}
	data, err := json.Marshal(arch)
	if err != nil {
		t.Fatalf("marshal archive: %v", err)
	}
	if !bytes.Contains(data, []byte(`"threads":[]`)) {
		t.Fatalf("empty dump should serialize threads as [], got %s", data)
	}
}
