package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	"github.com/msto63/sexpr/foundation/sexpr"
	"github.com/msto63/sexpr/foundation/sexpr/parser"
)

func convert(t *testing.T, source Source, input string) *Entry {
	t.Helper()
	engine, err := sexpr.New(sexpr.Options{})
	require.NoError(t, err)
	res, err := engine.Convert(input)
	return NewEntry(source, input, res, err)
}

func TestNewEntry(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		e := convert(t, SourceCLI, "1 + 2 * 3")
		assert.True(t, e.OK)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "( + 1 ( * 2 3 ) )", e.SExpr)
		assert.Equal(t, 5, e.Nodes)
		assert.Empty(t, e.ErrorKind)
	})

	t.Run("parse error", func(t *testing.T) {
		e := convert(t, SourceREPL, "1=2")
		assert.False(t, e.OK)
		assert.Equal(t, parser.ErrInvalidAssignTarget.Code(), e.ErrorKind)
		assert.Equal(t, 1, e.ErrorStart)
		assert.Equal(t, 2, e.ErrorEnd)
		assert.Contains(t, e.ErrorMessage, "column 2")
	})

	t.Run("structured error", func(t *testing.T) {
		err := mdwerror.New("too large").WithCode(mdwerror.CodeInputTooLarge)
		e := NewEntry(SourceGRPC, "x", nil, err)
		assert.False(t, e.OK)
		assert.Equal(t, "INPUT_TOO_LARGE", e.ErrorKind)
	})

	t.Run("plain error", func(t *testing.T) {
		e := NewEntry(SourceGRPC, "x", nil, errors.New("boom"))
		assert.Equal(t, "INTERNAL", e.ErrorKind)
		assert.Equal(t, "boom", e.ErrorMessage)
	})
}

func storeImplementations(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func TestStoreRecordAndGet(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := convert(t, SourceCLI, "(1 + 2")
			e.RequestID = "req-7"
			require.NoError(t, s.Record(ctx, e))

			got, err := s.Get(ctx, e.ID)
			require.NoError(t, err)
			assert.Equal(t, e.Input, got.Input)
			assert.Equal(t, SourceCLI, got.Source)
			assert.False(t, got.OK)
			assert.Equal(t, "UNEXPECTED_EOF", got.ErrorKind)
			assert.Equal(t, 6, got.ErrorStart)
			assert.Equal(t, 7, got.ErrorEnd)
			assert.Equal(t, "req-7", got.RequestID)
			assert.True(t, e.Timestamp.Equal(got.Timestamp))

			_, err = s.Get(ctx, "missing")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotFound))
			assert.Equal(t, mdwerror.CodeNotFound, mdwerror.GetCode(err))
		})
	}
}

func TestStoreList(t *testing.T) {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			inputs := []struct {
				source Source
				input  string
			}{
				{SourceCLI, "a = 1"},
				{SourceREPL, "1 +"},
				{SourceCLI, "f(x)"},
				{SourceWatch, ")"},
			}
			for i, in := range inputs {
				e := convert(t, in.source, in.input)
				e.Timestamp = base.Add(time.Duration(i) * time.Minute)
				require.NoError(t, s.Record(ctx, e))
			}

			all, err := s.List(ctx, Filter{})
			require.NoError(t, err)
			require.Len(t, all, 4)
			assert.Equal(t, ")", all[0].Input)
			assert.Equal(t, "a = 1", all[3].Input)

			cli, err := s.List(ctx, Filter{Source: SourceCLI})
			require.NoError(t, err)
			require.Len(t, cli, 2)
			assert.Equal(t, "f(x)", cli[0].Input)

			failed, err := s.List(ctx, Filter{FailedOnly: true})
			require.NoError(t, err)
			require.Len(t, failed, 2)
			for _, e := range failed {
				assert.False(t, e.OK)
			}

			since, err := s.List(ctx, Filter{Since: base.Add(90 * time.Second)})
			require.NoError(t, err)
			assert.Len(t, since, 2)

			page, err := s.List(ctx, Filter{Limit: 2, Offset: 1})
			require.NoError(t, err)
			require.Len(t, page, 2)
			assert.Equal(t, "f(x)", page[0].Input)
			assert.Equal(t, "1 +", page[1].Input)
		})
	}
}

func TestStoreStatsAndPrune(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			stats, err := s.Stats(ctx)
			require.NoError(t, err)
			assert.Zero(t, stats.Total)

			old := convert(t, SourceGRPC, "x")
			old.Timestamp = time.Now().Add(-48 * time.Hour)
			require.NoError(t, s.Record(ctx, old))

			recent := convert(t, SourceWebSocket, "1 2")
			require.NoError(t, s.Record(ctx, recent))

			stats, err = s.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), stats.Total)
			assert.Equal(t, int64(0), stats.Failed)
			assert.Equal(t, int64(1), stats.BySource[SourceGRPC])
			assert.Equal(t, int64(1), stats.BySource[SourceWebSocket])
			assert.True(t, stats.Oldest.Before(stats.Newest))

			deleted, err := s.Prune(ctx, 24*time.Hour)
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)

			remaining, err := s.List(ctx, Filter{})
			require.NoError(t, err)
			require.Len(t, remaining, 1)
			assert.Equal(t, recent.ID, remaining[0].ID)

			assert.NoError(t, s.Ping(ctx))
		})
	}
}

func TestSQLiteStoreInMemory(t *testing.T) {
	s, err := NewSQLiteStore(SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Record(ctx, convert(t, SourceCLI, "-x")))

	entries, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "( - x )", entries[0].SExpr)
}
