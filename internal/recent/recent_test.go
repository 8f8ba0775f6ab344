package recent

import (
	"context"
	"errors"
	"testing"

	"partshop/storefront/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoaded(t *testing.T, kv state.KeyValueStore) *Store {
	t.Helper()
	s := New(kv, StorageKey, DefaultLimit)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestRecord_MostRecentFirst(t *testing.T) {
	s := newLoaded(t, state.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "pin"))
	require.NoError(t, s.Record(ctx, "gear"))

	assert.Equal(t, []string{"gear", "pin"}, s.Items())
}

func TestRecord_CaseInsensitiveDedup(t *testing.T) {
	s := newLoaded(t, state.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "pin"))
	require.NoError(t, s.Record(ctx, "gear"))
	require.NoError(t, s.Record(ctx, "PIN"))

	assert.Equal(t, []string{"PIN", "gear"}, s.Items())
}

func TestRecord_DropsOldestPastLimit(t *testing.T) {
	s := newLoaded(t, state.NewMemoryStore())
	ctx := context.Background()

	for _, term := range []string{"a1", "a2", "a3", "a4", "a5", "a6"} {
		require.NoError(t, s.Record(ctx, term))
	}

	assert.Equal(t, []string{"a6", "a5", "a4", "a3", "a2"}, s.Items())
}

func TestRecord_IgnoresBlank(t *testing.T) {
	kv := state.NewMemoryStore()
	s := newLoaded(t, kv)

	require.NoError(t, s.Record(context.Background(), "   "))

	assert.Empty(t, s.Items())
	_, ok, _ := kv.Get(context.Background(), StorageKey)
	assert.False(t, ok)
}

func TestRecord_PersistsEveryMutation(t *testing.T) {
	kv := state.NewMemoryStore()
	s := newLoaded(t, kv)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "pin"))
	raw, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["pin"]`, raw)

	require.NoError(t, s.Clear(ctx))
	raw, _, _ = kv.Get(ctx, StorageKey)
	assert.JSONEq(t, `[]`, raw)
	assert.Empty(t, s.Items())
}

func TestLoad_RestoresAcrossSessions(t *testing.T) {
	kv := state.NewMemoryStore()
	ctx := context.Background()

	first := newLoaded(t, kv)
	require.NoError(t, first.Record(ctx, "pin"))
	require.NoError(t, first.Record(ctx, "seal kit"))

	second := newLoaded(t, kv)
	assert.Equal(t, []string{"seal kit", "pin"}, second.Items())
}

func TestLoad_CorruptOrAbsentIsEmpty(t *testing.T) {
	tests := map[string]func(kv state.KeyValueStore){
		"absent":  func(state.KeyValueStore) {},
		"corrupt": func(kv state.KeyValueStore) { _ = kv.Set(context.Background(), StorageKey, "{oops") },
		"wrong shape": func(kv state.KeyValueStore) {
			_ = kv.Set(context.Background(), StorageKey, `{"a":1}`)
		},
	}

	for name, seed := range tests {
		t.Run(name, func(t *testing.T) {
			kv := state.NewMemoryStore()
			seed(kv)
			s := newLoaded(t, kv)
			assert.Equal(t, []string{}, s.Items())
		})
	}
}

func TestLoad_NormalizesPersistedData(t *testing.T) {
	kv := state.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, `["a","A","b","c","d","e","f"]`))

	s := newLoaded(t, kv)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, s.Items())
}

type brokenKV struct{ state.KeyValueStore }

func (brokenKV) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestRecord_FailedPersistLeavesMemoryUnchanged(t *testing.T) {
	mem := state.NewMemoryStore()
	s := newLoaded(t, brokenKV{mem})

	err := s.Record(context.Background(), "pin")
	assert.Error(t, err)
	assert.Empty(t, s.Items())
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "recent_searches", KeyFor(""))
	assert.Equal(t, "recent_searches:u1", KeyFor("u1"))
}
