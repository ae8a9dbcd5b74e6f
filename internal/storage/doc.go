/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements durable persistence for research threads.
// It owns the per‑user SQLite database (threads.db), its schema, timestamped
// file backups with rotation, and all read/write operations on threads,
// resources and tags. The store is a single‑connection embedded database;
// one CLI invocation opens it, performs one logical operation and closes it.
package storage
