/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"reflect"
	"testing"
)

func TestTagThreadNormalizesAndDedupes(t *testing.T) {
	ctx := testContext(t)
	st := openTestStore(t)

	th, _ := st.CreateThread(ctx, "tagging")
	if err := st.TagThread(ctx, th.ID, "Go", " sqlite ", "", "go"); err != nil {
		t.Fatalf("TagThread error: %v", err)
	}
	// Tagging again with a known name must stay silent.
	if err := st.TagThread(ctx, th.ID, "GO"); err != nil {
		t.Fatalf("repeat TagThread error: %v", err)
	}

	tags, err := st.Tags(ctx, th.ID)
	if err != nil {
		t.Fatalf("Tags error: %v", err)
	}
	want := []string{"go", "sqlite"}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
}

func TestTagThreadMissingThread(t *testing.T) {
	ctx := testContext(t)
	st := openTestStore(t)

	if err := st.TagThread(ctx, 999999, "lost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTagsEmptyByDefault(t *testing.T) {
	ctx := testContext(t)
	st := openTestStore(t)

	th, _ := st.CreateThread(ctx, "untagged")
	tags, err := st.Tags(ctx, th.ID)
	if err != nil {
		t.Fatalf("Tags error: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("expected no tags, got %v", tags)
	}
}

func TestListThreadsCarriesTags(t *testing.T) {
	ctx := testContext(t)
	st := openTestStore(t)

	th, _ := st.CreateThread(ctx, "tagged listing")
	if err := st.TagThread(ctx, th.ID, "db", "perf"); err != nil {
		t.Fatalf("TagThread error: %v", err)
	}
	list, err := st.ListThreads(ctx, false, 0)
	if err != nil {
		t.Fatalf("ListThreads error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 thread, got %d", len(list))
	}
	want := []string{"db", "perf"}
	if !reflect.DeepEqual(list[0].Tags, want) {
		t.Fatalf("summary tags = %v, want %v", list[0].Tags, want)
	}
}
