package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/quorly/service/dao"
)

type entry struct {
	Key   string
	Value int
}

func entryKey(e *entry) string { return e.Key }

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string, entry](entryKey)

	require.NoError(t, s.Save(ctx, &entry{Key: "a", Value: 1}))
	require.NoError(t, s.Save(ctx, &entry{Key: "b", Value: 2}))

	loaded, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.Value)

	// overwrite under the same key
	require.NoError(t, s.Save(ctx, &entry{Key: "a", Value: 10}))
	loaded, err = s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.Value)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStoreMissingKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string, entry](entryKey)

	loaded, err := s.Load(ctx, "absent")
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	assert.NoError(t, s.Delete(ctx, "absent"))
}

func TestMemoryStoreNilEntity(t *testing.T) {
	s := NewMemoryStore[string, entry](entryKey)
	assert.ErrorIs(t, s.Save(context.Background(), nil), dao.ErrNilEntity)
}
