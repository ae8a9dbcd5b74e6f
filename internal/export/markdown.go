/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a thread into shareable documents: a markdown-style
// text form and a PDF rendition of the same content.
package export

import (
	"fmt"
	"strings"
	"time"

	"threads/internal/domain"
)

// timeStamp is the human-readable form used in exported documents.
const timeStamp = time.ANSIC

// codeExtensions marks text resources that read better inside a code fence.
var codeExtensions = []string{".py", ".js", ".ts", ".java", ".c", ".cpp", ".html", ".css", ".sh", ".go"}

// Document renders the thread as a markdown-style text document: a title
// line, status/created/tags metadata, then one numbered block per resource
// labeled URL or TEXT. Text that ends in a code file extension is fenced.
func Document(th domain.Thread) string {
	status := "ACTIVE"
	if th.Archived {
		status = "ARCHIVED"
	}
	lines := []string{
		fmt.Sprintf("# Thread #%d: %s", th.ID, th.Question),
		fmt.Sprintf("Status: %s", status),
		fmt.Sprintf("Created: %s", th.CreatedAt.Format(timeStamp)),
	}
	if len(th.Tags) > 0 {
		lines = append(lines, fmt.Sprintf("Tags: %s", strings.Join(th.Tags, ", ")))
	}
	lines = append(lines, "\n## Resources:\n")
	for i, r := range th.Resources {
		label := "TEXT"
		if r.Kind() == domain.ResourceURL {
			label = "URL"
		}
		lines = append(lines, fmt.Sprintf("### %d. [%s] - %s", i+1, label, r.CreatedAt.Format(timeStamp)))
		if label == "TEXT" && looksLikeCode(r.Content) {
			lines = append(lines, fmt.Sprintf("```\n%s\n```", r.Content))
		} else {
			lines = append(lines, r.Content)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// looksLikeCode reports whether the content ends with a known code file
// extension, compared case-insensitively.
func looksLikeCode(content string) bool {
	c := strings.ToLower(strings.TrimSpace(content))
	for _, ext := range codeExtensions {
		if strings.HasSuffix(c, ext) {
			return true
		}
	}
	return false
}
