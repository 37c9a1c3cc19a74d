package localstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_LoadMissingIsNil(t *testing.T) {
	m := NewMemory()
	got, err := m.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_SaveCopiesInput(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", buf))
	buf[0] = 'z'

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemory_UpdateSeesCurrentValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Update(ctx, "k", func(cur []byte) ([]byte, error) {
		assert.Nil(t, cur)
		return []byte("a"), nil
	}))
	require.NoError(t, m.Update(ctx, "k", func(cur []byte) ([]byte, error) {
		return append(cur, 'b'), nil
	}))

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "ab", string(got))
}

func TestMemory_UpdateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, "k", []byte("keep")))

	boom := errors.New("boom")
	err := m.Update(ctx, "k", func([]byte) ([]byte, error) { return []byte("lost"), boom })
	assert.ErrorIs(t, err, boom)

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
}

func TestMemory_ConcurrentUpdatesSerialise(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Update(ctx, "k", func(cur []byte) ([]byte, error) {
				return append(cur, 'x'), nil
			}))
		}()
	}
	wg.Wait()

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Len(t, got, 50)
}
