/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package picker

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"threads/internal/domain"
)

func pickerRows() []domain.ThreadSummary {
	now := time.Now()
	return []domain.ThreadSummary{
		{ID: 7, Question: "how does WAL work?", LastActive: now, Tags: []string{"db"}},
		{ID: 9, Question: "why is DNS slow here?", LastActive: now.Add(-time.Hour)},
		{ID: 12, Question: "pick a TUI library", LastActive: now.Add(-26 * time.Hour)},
	}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	nm, cmd := m.Update(msg)
	out, ok := nm.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", nm)
	}
	return out, cmd
}

func key(s string) tea.Msg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func mustQuit(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a quit command, got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.Quit, got %T", cmd())
	}
}

func TestListNavigationClampsCursor(t *testing.T) {
	m := New(pickerRows())

	m, _ = press(t, m, key("k"))
	if m.Cursor != 0 {
		t.Fatalf("cursor should not move above the first row, got %d", m.Cursor)
	}
	m, _ = press(t, m, key("j"))
	m, _ = press(t, m, key("down"))
	m, _ = press(t, m, key("j"))
	if m.Cursor != 2 {
		t.Fatalf("cursor should stop at the last row, got %d", m.Cursor)
	}
	m, _ = press(t, m, key("up"))
	if m.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor)
	}
}

func TestEnterPicksThreadUnderCursor(t *testing.T) {
	m := New(pickerRows())
	m, _ = press(t, m, key("j"))
	m, cmd := press(t, m, key("enter"))

	if !m.Done {
		t.Fatalf("model should be done after picking")
	}
	if m.Outcome.Action != ActionPick || m.Outcome.ThreadID != 9 {
		t.Fatalf("outcome = %+v, want pick of thread 9", m.Outcome)
	}
	mustQuit(t, cmd)
}

func TestCancelKeys(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		m := New(pickerRows())
		m, cmd := press(t, m, key(k))
		if !m.Done || m.Outcome.Action != ActionCancel {
			t.Fatalf("key %q: outcome = %+v, want cancel", k, m.Outcome)
		}
		mustQuit(t, cmd)
	}
}

func TestNewThreadFlow(t *testing.T) {
	m := New(pickerRows())
	m, _ = press(t, m, key("n"))
	if m.Screen != ScreenQuestion {
		t.Fatalf("screen = %v, want question entry", m.Screen)
	}
	if !m.Input.Focused() {
		t.Fatalf("question input should be focused")
	}

	m, _ = press(t, m, key("  why does gc pause?  "))
	m, cmd := press(t, m, key("enter"))
	if !m.Done {
		t.Fatalf("model should be done after accepting a question")
	}
	if m.Outcome.Action != ActionNew || m.Outcome.Question != "why does gc pause?" {
		t.Fatalf("outcome = %+v, want trimmed new-thread question", m.Outcome)
	}
	mustQuit(t, cmd)
}

func TestBlankQuestionIsIgnored(t *testing.T) {
	m := New(pickerRows())
	m, _ = press(t, m, key("n"))
	m, cmd := press(t, m, key("enter"))
	if m.Done {
		t.Fatalf("blank question must not finish the picker")
	}
	if cmd != nil {
		t.Fatalf("blank question should not emit a command")
	}
	if m.Screen != ScreenQuestion {
		t.Fatalf("should stay on the question screen")
	}
}

func TestEscReturnsToList(t *testing.T) {
	m := New(pickerRows())
	m, _ = press(t, m, key("n"))
	m, _ = press(t, m, key("esc"))
	if m.Screen != ScreenList {
		t.Fatalf("esc should return to the list, got screen %v", m.Screen)
	}
	if m.Done {
		t.Fatalf("esc from question entry must not cancel the picker")
	}
}

func TestEnterOnEmptyListDoesNothing(t *testing.T) {
	m := New(nil)
	m, cmd := press(t, m, key("enter"))
	if m.Done || cmd != nil {
		t.Fatalf("enter with no rows should be a no-op")
	}
}

func TestViewRendersRowsAndHelp(t *testing.T) {
	m := New(pickerRows())
	out := m.View()
	for _, want := range []string{"Attach to which thread?", "(#7)", "how does WAL work?", "[db]", "new thread"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}

	m.Done = true
	if m.View() != "" {
		t.Fatalf("finished picker should render nothing")
	}
}
