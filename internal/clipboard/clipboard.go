/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package clipboard is a thin seam over the system clipboard so commands can
// be tested without one.
package clipboard

import (
	"fmt"

	atotto "github.com/atotto/clipboard"
)

// Swappable in tests.
var (
	readAll  = atotto.ReadAll
	writeAll = atotto.WriteAll
)

// Supported reports whether a system clipboard is reachable on this host.
func Supported() bool { return !atotto.Unsupported }

// Read returns the clipboard text as-is; callers decide what blank means.
func Read() (string, error) {
	s, err := readAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return s, nil
}

// Write replaces the clipboard with text.
func Write(text string) error {
	if err := writeAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
