// ============================================================================
// sexpr - Infix to S-expression converter
// ============================================================================
//
// Package:     tui
// Description: Interactive REPL with live preview and conversion history
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/sexpr/foundation/sexpr"
	"github.com/msto63/sexpr/foundation/sexpr/parser"
	"github.com/msto63/sexpr/internal/diagnostic"
	"github.com/msto63/sexpr/internal/store"
)

// View represents the tabs of the REPL
type View int

const (
	ViewREPL View = iota
	ViewHistory
)

const historyPageSize = 50

// Entry is one submitted line in the scrollback
type Entry struct {
	Input  string
	Result *sexpr.Result
	Err    error
}

// Options configures the REPL model
type Options struct {
	Engine *sexpr.Engine

	// History is optional; without it the History tab stays empty
	History store.Store
}

// Model is the REPL model
type Model struct {
	view    View
	width   int
	height  int
	ready   bool
	loading bool
	err     error

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	engine  *sexpr.Engine
	history store.Store

	entries []Entry
	preview string

	// recall walks previously submitted inputs; -1 means editing a new line
	inputs []string
	recall int

	stored []*store.Entry
	stats  *store.Stats
}

// NewModel creates a new REPL model
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "expression, e.g. x = f(a, 2) * -b"
	ti.Prompt = "> "
	ti.PromptStyle = PromptStyle
	ti.CharLimit = opts.Engine.MaxInputLength()
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		view:    ViewREPL,
		input:   ti,
		spinner: sp,
		engine:  opts.Engine,
		history: opts.History,
		recall:  -1,
	}
}

// Entries returns the scrollback
func (m Model) Entries() []Entry {
	return m.entries
}

// Preview returns the live preview of the current input
func (m Model) Preview() string {
	return m.preview
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			if m.view == ViewREPL {
				m.view = ViewHistory
				m.input.Blur()
				cmd = m.loadHistory()
				return m, cmd
			}
			m.view = ViewREPL
			m.input.Focus()
			m.updateContent()
			return m, textinput.Blink

		case "enter":
			if m.view != ViewREPL {
				return m, nil
			}
			input := m.input.Value()
			if strings.TrimSpace(input) == "" {
				return m, nil
			}
			res, err := m.engine.Convert(input)
			m.entries = append(m.entries, Entry{Input: input, Result: res, Err: err})
			m.inputs = append(m.inputs, input)
			m.recall = -1
			m.input.Reset()
			m.preview = ""
			m.updateContent()
			return m, m.record(input, res, err)

		case "up":
			if m.view == ViewREPL && len(m.inputs) > 0 {
				if m.recall == -1 {
					m.recall = len(m.inputs) - 1
				} else if m.recall > 0 {
					m.recall--
				}
				m.setInput(m.inputs[m.recall])
				return m, nil
			}

		case "down":
			if m.view == ViewREPL && m.recall != -1 {
				if m.recall < len(m.inputs)-1 {
					m.recall++
					m.setInput(m.inputs[m.recall])
				} else {
					m.recall = -1
					m.setInput("")
				}
				return m, nil
			}

		case "ctrl+l":
			m.entries = nil
			m.updateContent()
			return m, nil

		case "ctrl+r":
			if m.view == ViewHistory {
				cmd = m.loadHistory()
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		height := max(1, msg.Height-9)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.YPosition = 2
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = max(10, msg.Width-8)
		m.updateContent()

	case recordedMsg:
		if msg.err != nil {
			m.err = msg.err
		}

	case historyMsg:
		m.loading = false
		m.err = msg.err
		m.stored = msg.entries
		m.stats = msg.stats
		m.updateContent()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.view == ViewREPL {
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		if m.input.Value() != before {
			m.recall = -1
			m.updatePreview()
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) setInput(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.updatePreview()
}

// updatePreview converts the line being edited
func (m *Model) updatePreview() {
	input := m.input.Value()
	if strings.TrimSpace(input) == "" {
		m.preview = ""
		return
	}
	res, err := m.engine.Convert(input)
	if err != nil {
		m.preview = "… " + diagnostic.Message(err)
		return
	}
	m.preview = "= " + res.SExpr
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")

	switch m.view {
	case ViewREPL:
		s.WriteString(m.viewport.View())
		s.WriteString("\n")
		s.WriteString(FocusedInputStyle.Render(m.input.View()))
		s.WriteString("\n")
		s.WriteString(PreviewStyle.Render(m.preview))
	case ViewHistory:
		if m.loading {
			s.WriteString(m.spinner.View())
			s.WriteString(" Loading history...\n")
		} else {
			s.WriteString(m.viewport.View())
		}
	}

	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m *Model) renderHeader() string {
	tabs := []string{"REPL", "History"}
	var rendered []string
	for i, tab := range tabs {
		if View(i) == m.view {
			rendered = append(rendered, ActiveTabStyle.Render(tab))
		} else {
			rendered = append(rendered, TabStyle.Render(tab))
		}
	}
	title := TitleStyle.Render("sexpr")
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title}, rendered...)...)
}

func (m *Model) renderFooter() string {
	help := "Enter: convert • ↑/↓: recall • Tab: switch • Ctrl+L: clear • Ctrl+C: quit"
	if m.view == ViewHistory {
		help = "Ctrl+R: reload • Tab: switch • Ctrl+C: quit"
	}

	status := fmt.Sprintf("%d converted", len(m.entries))
	if m.err != nil {
		status = StatusErrorStyle.Render(m.err.Error())
	}

	gap := max(0, m.width-lipgloss.Width(help)-lipgloss.Width(status)-4)
	return StatusBarStyle.Width(m.width).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, help, strings.Repeat(" ", gap), status),
	)
}

func (m *Model) updateContent() {
	var content string
	switch m.view {
	case ViewREPL:
		content = m.renderScrollback()
	case ViewHistory:
		content = m.renderHistory()
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m *Model) renderScrollback() string {
	if len(m.entries) == 0 {
		return SubtitleStyle.Render("Type an infix expression and press Enter.")
	}

	var b strings.Builder
	for _, e := range m.entries {
		b.WriteString(PromptStyle.Render("> "))
		b.WriteString(e.Input)
		b.WriteString("\n")

		var perr *parser.ParseError
		switch {
		case errors.As(e.Err, &perr):
			// the caret line lines up with the input after the prompt
			b.WriteString("  ")
			b.WriteString(strings.Repeat(" ", perr.Span.Start))
			b.WriteString(CaretStyle.Render(strings.Repeat("^", perr.Span.Len()) + " ERROR"))
			b.WriteString("\n")
			b.WriteString(RenderError(perr.Error()))
		case e.Err != nil:
			b.WriteString(RenderError(diagnostic.Message(e.Err)))
		default:
			b.WriteString(ResultStyle.Render(e.Result.SExpr))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m *Model) renderHistory() string {
	if m.history == nil {
		return SubtitleStyle.Render("History is disabled (history.enabled = false).")
	}
	if len(m.stored) == 0 {
		return SubtitleStyle.Render("No conversions recorded yet.")
	}

	var b strings.Builder
	if m.stats != nil {
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d conversions, %d failed", m.stats.Total, m.stats.Failed)))
		b.WriteString("\n\n")
	}
	// oldest first so the newest ends up next to the footer
	for i := len(m.stored) - 1; i >= 0; i-- {
		e := m.stored[i]
		icon := StatusOKStyle.Render("[+]")
		outcome := e.SExpr
		if !e.OK {
			icon = StatusErrorStyle.Render("[-]")
			outcome = e.ErrorKind
		}
		fmt.Fprintf(&b, "%s %s %-9s %s\n    %s\n",
			icon,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Source,
			e.Input,
			outcome,
		)
	}
	return b.String()
}

// Message types for async operations
type recordedMsg struct {
	err error
}

type historyMsg struct {
	entries []*store.Entry
	stats   *store.Stats
	err     error
}

func (m *Model) record(input string, res *sexpr.Result, convErr error) tea.Cmd {
	if m.history == nil {
		return nil
	}
	history := m.history
	entry := store.NewEntry(store.SourceREPL, input, res, convErr)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return recordedMsg{err: history.Record(ctx, entry)}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	m.updateContent()
	if m.history == nil {
		return nil
	}
	m.loading = true
	history := m.history
	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entries, err := history.List(ctx, store.Filter{Limit: historyPageSize})
		if err != nil {
			return historyMsg{err: err}
		}
		stats, err := history.Stats(ctx)
		return historyMsg{entries: entries, stats: stats, err: err}
	}
	return tea.Batch(load, m.spinner.Tick)
}
