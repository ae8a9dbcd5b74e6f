/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package picker implements the small Bubbletea prompt used by `thread
// attach`: pick one of the recent threads, or type a question to start a
// new one.
//
// One Model struct holds all state, Update() routes by screen, and vim keys
// (j/k) move the cursor.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"threads/internal/domain"
)

type Screen int

const (
	ScreenList Screen = iota
	ScreenQuestion
)

// Action is what the user decided in the picker.
type Action int

const (
	ActionCancel Action = iota
	ActionPick
	ActionNew
)

// Outcome carries the decision out of the program: the chosen thread ID for
// ActionPick, the typed question for ActionNew.
type Outcome struct {
	Action   Action
	ThreadID int64
	Question string
}

var (
	colorAccent = lipgloss.Color("#7aa2f7")
	colorText   = lipgloss.Color("#c0caf5")
	colorDim    = lipgloss.Color("#565f89")
	colorTag    = lipgloss.Color("#e0af68")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	itemStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			PaddingLeft(1)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorTag)

	agoStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			MarginTop(1)
)

// Model is the picker state: the rows on offer, the cursor, and the
// question input for the new-thread screen.
type Model struct {
	Screen  Screen
	Cursor  int
	Rows    []domain.ThreadSummary
	Input   textinput.Model
	Outcome Outcome
	Done    bool
}

// New builds a picker over the given thread summaries.
func New(rows []domain.ThreadSummary) Model {
	ti := textinput.New()
	ti.Placeholder = "What are you trying to figure out?"
	ti.CharLimit = 256
	ti.Width = 60

	return Model{
		Screen: ScreenList,
		Rows:   rows,
		Input:  ti,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// ctrl+c quits from any screen
		if msg.String() == "ctrl+c" {
			m.Outcome = Outcome{Action: ActionCancel}
			m.Done = true
			return m, tea.Quit
		}
		if m.Screen == ScreenQuestion && m.Input.Focused() {
			return m.handleQuestionInputKeys(msg)
		}
		return m.handleKeyPress(msg.String())
	}
	return m, nil
}

func (m Model) handleKeyPress(key string) (tea.Model, tea.Cmd) {
	switch m.Screen {
	case ScreenList:
		return m.handleListKeys(key)
	case ScreenQuestion:
		if key == "esc" || key == "q" {
			m.Screen = ScreenList
			return m, nil
		}
	}
	return m, nil
}

func (m Model) handleListKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Rows)-1 {
			m.Cursor++
		}
	case "enter", " ":
		if len(m.Rows) == 0 {
			return m, nil
		}
		m.Outcome = Outcome{Action: ActionPick, ThreadID: m.Rows[m.Cursor].ID}
		m.Done = true
		return m, tea.Quit
	case "n":
		m.Screen = ScreenQuestion
		m.Input.SetValue("")
		return m, m.Input.Focus()
	case "q", "esc":
		m.Outcome = Outcome{Action: ActionCancel}
		m.Done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleQuestionInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		question := strings.TrimSpace(m.Input.Value())
		if question == "" {
			return m, nil
		}
		m.Outcome = Outcome{Action: ActionNew, Question: question}
		m.Done = true
		return m, tea.Quit
	case "esc":
		m.Input.Blur()
		m.Screen = ScreenList
		return m, nil
	}

	// Let the text input component handle everything else
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Done {
		return ""
	}
	switch m.Screen {
	case ScreenQuestion:
		return m.viewQuestion()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Attach to which thread?"))
	b.WriteString("\n")
	if len(m.Rows) == 0 {
		b.WriteString(itemStyle.Render("no recent threads"))
		b.WriteString("\n")
	}
	for i, row := range m.Rows {
		line := fmt.Sprintf("(#%d) %s", row.ID, row.Question)
		if len(row.Tags) > 0 {
			line += " " + tagStyle.Render("["+strings.Join(row.Tags, ", ")+"]")
		}
		line += " " + agoStyle.Render(domain.TimeSince(row.LastActive)+" ago")
		if i == m.Cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("j/k move · enter select · n new thread · q cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewQuestion() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New thread"))
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter create · esc back"))
	b.WriteString("\n")
	return b.String()
}

// Run shows the picker and blocks until the user decides.
func Run(rows []domain.ThreadSummary) (Outcome, error) {
	p := tea.NewProgram(New(rows))
	final, err := p.Run()
	if err != nil {
		return Outcome{}, fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Outcome{}, fmt.Errorf("unexpected picker model %T", final)
	}
	return m.Outcome, nil
}
