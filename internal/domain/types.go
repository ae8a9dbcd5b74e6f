/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for the threads tool: a thread is a
// tracked research question, a resource is a snippet or URL attached to it.
// The structs double as the JSON shape of archive dumps.

import (
	"strings"
	"time"
)

// Thread is a tracked question/topic with an ordered collection of attached
// resources. Archived is a soft-delete flag; threads are never physically
// deleted.
type Thread struct {
	ID         int64      `json:"id"`
	Question   string     `json:"question"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastActive time.Time  `json:"lastActiveAt"`
	Archived   bool       `json:"archived"`
	Tags       []string   `json:"tags,omitempty"`
	Resources  []Resource `json:"resources,omitempty"`
}

// Resource is a piece of text or URL content attached to a thread. Immutable
// once created.
type Resource struct {
	ID        int64     `json:"id"`
	ThreadID  int64     `json:"threadId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ThreadSummary is a listing row: the thread's headline fields plus the
// derived resource count. The count is computed at query time, never stored.
type ThreadSummary struct {
	ID            int64     `json:"id"`
	Question      string    `json:"question"`
	LastActive    time.Time `json:"lastActiveAt"`
	Archived      bool      `json:"archived"`
	ResourceCount int       `json:"resourceCount"`
	Tags          []string  `json:"tags,omitempty"`
}

// Archive is a full-store dump suitable for JSON serialization, one thread
// per entry with its resources and tags inlined.
type Archive struct {
	SchemaVersion int       `json:"schemaVersion"`
	ExportedAt    time.Time `json:"exportedAt"`
	Threads       []Thread  `json:"threads"`
}

// ResourceKind is a display-time classification of resource content. The
// store keeps content untyped; the kind is always derived, never persisted.
type ResourceKind string

const (
	ResourceURL  ResourceKind = "url"
	ResourceText ResourceKind = "text"
)

// Kind classifies the resource's content: anything starting with http(s) is
// a URL, everything else is free text.
func (r Resource) Kind() ResourceKind {
	return ClassifyContent(r.Content)
}

// ClassifyContent applies the URL-or-text rule to raw content.
func ClassifyContent(content string) ResourceKind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(content)), "http") {
		return ResourceURL
	}
	return ResourceText
}
