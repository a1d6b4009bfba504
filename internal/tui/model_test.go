package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwlog "github.com/msto63/sexpr/foundation/core/log"
	"github.com/msto63/sexpr/foundation/sexpr"
	"github.com/msto63/sexpr/internal/store"
)

func newTestModel(t *testing.T, history store.Store) Model {
	t.Helper()
	engine, err := sexpr.New(sexpr.Options{Logger: mdwlog.NewNop()})
	require.NoError(t, err)

	m := NewModel(Options{Engine: engine, History: history})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(m Model, text string) Model {
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func TestModel_LivePreview(t *testing.T) {
	m := newTestModel(t, nil)

	m = typeText(m, "1 + 2*3")
	assert.Equal(t, "= ( + 1 ( * 2 3 ) )", m.Preview())

	m = typeText(m, " +")
	assert.True(t, strings.HasPrefix(m.Preview(), "… parse error"), m.Preview())
}

func TestModel_SubmitAndRecall(t *testing.T) {
	history := store.NewMemoryStore()
	m := newTestModel(t, history)

	m = typeText(m, "x = -y")
	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, m.Entries(), 1)
	assert.NoError(t, m.Entries()[0].Err)
	assert.Equal(t, "( = x ( - y ) )", m.Entries()[0].Result.SExpr)
	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.Preview())

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, recordedMsg{}, msgs[0])

	m = typeText(m, "(1 2)")
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, m.Entries(), 2)
	assert.Error(t, m.Entries()[1].Err)
	assert.Contains(t, m.View(), "ERROR")

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "(1 2)", m.input.Value())
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "x = -y", m.input.Value())
	assert.Equal(t, "= ( = x ( - y ) )", m.Preview())
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "(1 2)", m.input.Value())
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.input.Value())

	// whitespace-only lines are not submitted
	m = typeText(m, "   ")
	m, cmd = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, m.Entries(), 2)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.Entries())
}

func TestModel_HistoryTab(t *testing.T) {
	history := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, history.Record(ctx, &store.Entry{Source: store.SourceCLI, Input: "a+b", SExpr: "( + a b )", OK: true}))
	require.NoError(t, history.Record(ctx, &store.Entry{Source: store.SourceWatch, Input: "1=2", ErrorKind: "INVALID_ASSIGN_TARGET"}))

	m := newTestModel(t, history)
	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewHistory, m.view)
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "Loading history")

	var loaded bool
	for _, msg := range collect(cmd) {
		if hm, ok := msg.(historyMsg); ok {
			m, _ = send(m, hm)
			loaded = true
		}
	}
	require.True(t, loaded)
	assert.False(t, m.loading)
	require.Len(t, m.stored, 2)

	view := m.View()
	assert.Contains(t, view, "2 conversions, 1 failed")
	assert.Contains(t, view, "INVALID_ASSIGN_TARGET")

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewREPL, m.view)
}

func TestModel_HistoryDisabled(t *testing.T) {
	m := newTestModel(t, nil)

	m = typeText(m, "a")
	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m, cmd = send(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "History is disabled")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, nil)
	_, cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
