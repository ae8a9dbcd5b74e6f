/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"threads/internal/domain"
)

// stampFormat matches the timestamps in exported documents.
const stampFormat = time.ANSIC

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7aa2f7"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7aa2f7"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	archivedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#565f89"))
)

// splitArgs separates plain words from --flags. --all is the listing switch;
// --deep and every other unknown --name become tags, so `thread new why is
// the build slow --ci` tags the thread "ci" without any flag table.
func splitArgs(args []string) (words, tags []string, all bool) {
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			name := strings.TrimPrefix(arg, "--")
			switch name {
			case "all":
				all = true
			case "":
				// bare "--", ignore
			default:
				tags = append(tags, name)
			}
			continue
		}
		words = append(words, arg)
	}
	return words, tags, all
}

func statusLabel(archived bool) string {
	if archived {
		return "ARCHIVED"
	}
	return "ACTIVE"
}

// renderTable lays out thread summaries in fixed-width columns, archived
// rows dimmed.
func renderTable(rows []domain.ThreadSummary) string {
	const rowFormat = "%-5s %-44s %-18s %4s  %-13s %s"

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf(rowFormat, "ID", "QUESTION", "TAGS", "RES", "LAST ACTIVE", "STATUS")))
	b.WriteString("\n")
	for _, r := range rows {
		line := fmt.Sprintf(rowFormat,
			fmt.Sprintf("%d", r.ID),
			truncate(r.Question, 42),
			truncate(strings.Join(r.Tags, ","), 16),
			fmt.Sprintf("%d", r.ResourceCount),
			domain.TimeSince(r.LastActive)+" ago",
			statusLabel(r.Archived),
		)
		if r.Archived {
			b.WriteString(archivedRowStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderThread prints one thread in full: metadata block, then the numbered
// resources with first-line previews.
func renderThread(th domain.Thread, justUpdated bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Thread #%d: %s", th.ID, th.Question)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Status: %s\n", statusLabel(th.Archived)))
	b.WriteString(fmt.Sprintf("Created: %s\n", th.CreatedAt.Format(stampFormat)))

	ago := domain.TimeSince(th.LastActive) + " ago"
	if justUpdated {
		ago += " (just updated)"
	}
	b.WriteString(fmt.Sprintf("Last active: %s\n", ago))
	if len(th.Tags) > 0 {
		b.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(th.Tags, ", ")))
	}
	b.WriteString("\n")

	if len(th.Resources) == 0 {
		b.WriteString("No resources attached. Add one with: thread attach <content>\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Resources (%d):\n", len(th.Resources)))
	for i, r := range th.Resources {
		label := "TEXT"
		if r.Kind() == domain.ResourceURL {
			label = "URL"
		}
		b.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, label, dimStyle.Render(r.CreatedAt.Format(stampFormat))))
		b.WriteString(fmt.Sprintf("     %s\n", truncate(firstLine(r.Content), 76)))
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
