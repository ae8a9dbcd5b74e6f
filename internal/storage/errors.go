/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import "errors"

// Sentinel errors callers branch on with errors.Is. Any other error leaving
// this package is the underlying driver failure wrapped with operation
// context and must be surfaced as-is.
var (
	// ErrInvalid marks caller input that fails validation (blank question or
	// content, non-positive IDs). Recoverable by re-prompting.
	ErrInvalid = errors.New("invalid input")

	// ErrNotFound marks a reference to a thread that does not exist.
	ErrNotFound = errors.New("thread not found")

	// ErrUnavailable marks an environment failure: the data directory cannot
	// be created or the database file cannot be opened. Fatal for the
	// invocation.
	ErrUnavailable = errors.New("storage unavailable")
)
