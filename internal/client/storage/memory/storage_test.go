package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/offsync/internal/client/storage"
)

func TestStorage_Basic(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Init(ctx))

	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	buf := []byte("one")
	require.NoError(t, s.Put(ctx, "a", buf))
	// Изменение исходного буфера не влияет на хранимое значение
	buf[0] = 'X'

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	got[0] = 'Y'
	got2, _ := s.Get(ctx, "a")
	assert.Equal(t, []byte("one"), got2)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_ListSorted(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, k := range []string{"res:c", "res:a", "doc:z", "res:b"} {
		require.NoError(t, s.Put(ctx, k, nil))
	}

	keys, err := s.List(ctx, "res:")
	require.NoError(t, err)
	assert.Equal(t, []string{"res:a", "res:b", "res:c"}, keys)
}

func TestStorage_Closed(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Close())

	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.ErrorIs(t, s.Put(ctx, "a", nil), storage.ErrUnavailable)
	assert.ErrorIs(t, s.Delete(ctx, "a"), storage.ErrUnavailable)
	assert.ErrorIs(t, s.Init(ctx), storage.ErrUnavailable)
}

func TestStorage_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k:%02d", i)
			assert.NoError(t, s.Put(ctx, key, []byte(key)))
			_, _ = s.List(ctx, "k:")
		}(i)
	}
	wg.Wait()

	keys, err := s.List(ctx, "k:")
	require.NoError(t, err)
	assert.Len(t, keys, 50)
}
