package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stealthcompany.com/icudash/internal/storage"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestValue_LoadSaveClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	v := NewValue[item](store, "thing")

	_, found, err := v.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, v.Save(ctx, item{ID: "1", Name: "one"}))

	raw, err := store.Get(ctx, "thing")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","name":"one"}`, string(raw))

	got, found, err := v.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, item{ID: "1", Name: "one"}, got)

	require.NoError(t, v.Clear(ctx))
	_, found, err = v.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestValue_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "thing", []byte("{not json")))

	_, _, err := NewValue[item](store, "thing").Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptRecord)

	// blob left untouched
	raw, err := store.Get(ctx, "thing")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestSeededList_FallsBackAndWritesSeed(t *testing.T) {
	seed := []item{{ID: "a"}, {ID: "b"}}

	tests := []struct {
		name   string
		stored string
	}{
		{name: "missing"},
		{name: "empty array", stored: "[]"},
		{name: "null", stored: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemoryStore()
			if tt.stored != "" {
				require.NoError(t, store.Put(ctx, "list", []byte(tt.stored)))
			}

			list := NewSeededList(store, "list", seed)
			got, err := list.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, seed, got)

			raw, err := store.Get(ctx, "list")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"a","name":""},{"id":"b","name":""}]`, string(raw))
		})
	}
}

func TestSeededList_DoesNotAliasSeed(t *testing.T) {
	seed := []item{{ID: "a"}}
	list := NewSeededList(storage.NewMemoryStore(), "list", seed)

	got, err := list.Load(context.Background())
	require.NoError(t, err)
	got[0].ID = "changed"

	assert.Equal(t, "a", seed[0].ID)
}

func TestList_AppendPersistsFullList(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	list := NewSeededList(store, "list", []item{{ID: "a"}})

	items, err := list.Append(ctx, item{ID: "b"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	reloaded, err := NewSeededList[item](store, "list", nil).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "a"}, {ID: "b"}}, reloaded)
}

func TestList_UnseededReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	list := NewList[item](store, "obs")

	got, err := list.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	_, err = store.Get(ctx, "obs")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = list.Append(ctx, item{ID: "x"})
	require.NoError(t, err)
	got, err = list.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestList_Replace(t *testing.T) {
	ctx := context.Background()
	list := NewList[item](storage.NewMemoryStore(), "obs")

	require.NoError(t, list.Replace(ctx, []item{{ID: "1"}, {ID: "2"}}))
	got, err := list.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
