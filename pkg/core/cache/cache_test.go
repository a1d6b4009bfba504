package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwlog "github.com/msto63/sexpr/foundation/core/log"
	"github.com/msto63/sexpr/foundation/sexpr"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(t *testing.T, cfg Config) (*Cache[string], *fakeClock) {
	t.Helper()
	c := New[string](cfg)
	t.Cleanup(c.Close)

	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clock.now
	return c, clock
}

func TestCache_GetSet(t *testing.T) {
	c, _ := newTestCache(t, Config{})

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", "1")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.InDelta(t, 33.3, stats.HitRate, 0.1)
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache(t, Config{TTL: time.Minute})

	c.Set("a", "1")
	c.SetWithTTL("forever", "2", 0)

	clock.t = clock.t.Add(2 * time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok, "entry should have expired")

	v, ok := c.Get("forever")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	c.SetWithTTL("b", "3", time.Second)
	clock.t = clock.t.Add(time.Minute)
	c.cleanup()
	assert.Equal(t, 1, c.Size())
}

func TestCache_EvictsOldest(t *testing.T) {
	c, clock := newTestCache(t, Config{MaxItems: 2})

	c.Set("first", "1")
	clock.t = clock.t.Add(time.Second)
	c.Set("second", "2")
	clock.t = clock.t.Add(time.Second)

	// overwriting an existing key does not evict
	c.Set("second", "2b")
	assert.Equal(t, 2, c.Size())

	c.Set("third", "3")
	assert.Equal(t, 2, c.Size())

	_, ok := c.Get("first")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_GetOrSet(t *testing.T) {
	c, _ := newTestCache(t, Config{})

	calls := 0
	compute := func() (string, error) {
		calls++
		return "value", nil
	}

	v, err := c.GetOrSet("k", compute)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	_, err = c.GetOrSet("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = c.GetOrSet("bad", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Size(), "errors must not be cached")
}

func TestCache_Clear(t *testing.T) {
	c, _ := newTestCache(t, Config{})
	c.Set("a", "1")
	c.Set("b", "2")

	c.Clear()
	assert.Equal(t, 0, c.Size())

	// Close is idempotent
	c.Close()
	c.Close()
}

func TestResultKey(t *testing.T) {
	assert.Equal(t, ResultKey("a+b", false), ResultKey("a+b", false))
	assert.NotEqual(t, ResultKey("a+b", false), ResultKey("a+b", true))
	assert.NotEqual(t, ResultKey("a+b", false), ResultKey("a+c", false))
}

func TestResultCache_Convert(t *testing.T) {
	engine, err := sexpr.New(sexpr.Options{Logger: mdwlog.NewNop()})
	require.NoError(t, err)

	rc := NewResultCache(Config{})
	t.Cleanup(rc.Close)

	res, hit, err := rc.Convert(engine, "1+2*3")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "( + 1 ( * 2 3 ) )", res.SExpr)

	again, hit, err := rc.Convert(engine, "1+2*3")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, res, again)

	_, hit, err = rc.Convert(engine, "1=2")
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, rc.Stats().Size)
}
