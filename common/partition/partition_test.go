package partition

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/crewledger/common/cache"
	"github.com/lyzr/crewledger/common/logger"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"OT_A_2024", false},
		{"OT_Slots/OT_A_2024", false},
		{"", true},
		{"../etc/passwd", true},
		{"OT_Slots//x", true},
		{`OT\A`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	_, err := s.Load(ctx, "OT_A_2024")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Stat(ctx, "OT_A_2024")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "OT_A_2024", []byte(`{"month":{}}`)))
	assert.FileExists(t, filepath.Join(dir, "SaveFiles", "OT_A_2024.json"))

	obj, err := s.Load(ctx, "OT_A_2024")
	require.NoError(t, err)
	assert.Equal(t, `{"month":{}}`, string(obj.Data))
	assert.False(t, obj.ModTime.IsZero())

	require.NoError(t, s.Save(ctx, "OT_A_2024", []byte(`{"month":{"1":{}}}`)))
	obj, err = s.Load(ctx, "OT_A_2024")
	require.NoError(t, err)
	assert.Equal(t, `{"month":{"1":{}}}`, string(obj.Data))
}

func TestFileStore_NestedNameAndNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	require.NoError(t, s.Save(context.Background(), "OT_Slots/OT_B_2025", []byte("{}")))

	entries, err := os.ReadDir(filepath.Join(dir, "SaveFiles", "OT_Slots"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "OT_B_2025.json", entries[0].Name())
}

func TestFileStore_ConcurrentReadersNeverSeePartialWrites(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	small := []byte(`{"v":"a"}`)
	large := make([]byte, 0, 64*1024)
	large = append(large, `{"v":"`...)
	for len(large) < cap(large)-2 {
		large = append(large, 'b')
	}
	large = append(large, `"}`...)
	require.NoError(t, s.Save(ctx, "OT_C_2024", small))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			doc := small
			if i%2 == 0 {
				doc = large
			}
			_ = s.Save(ctx, "OT_C_2024", doc)
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
		}
		obj, err := s.Load(ctx, "OT_C_2024")
		require.NoError(t, err)
		assert.True(t, string(obj.Data) == string(small) || string(obj.Data) == string(large),
			"read a partial document of %d bytes", len(obj.Data))
	}
}

type countingStore struct {
	Store
	loads int
}

func (c *countingStore) Load(ctx context.Context, name string) (Object, error) {
	c.loads++
	return c.Store.Load(ctx, name)
}

func TestCachedStore_ServesUntilModified(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	inner := &countingStore{Store: NewFileStore(dir)}
	mem := cache.NewMemoryCache(logger.Discard())
	defer mem.Close()
	s := NewCachedStore(inner, mem, time.Minute, logger.Discard())

	require.NoError(t, inner.Store.Save(ctx, "OT_A_2024", []byte("one")))

	obj, err := s.Load(ctx, "OT_A_2024")
	require.NoError(t, err)
	assert.Equal(t, "one", string(obj.Data))
	_, err = s.Load(ctx, "OT_A_2024")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.loads)

	// Another writer replaces the file behind the cache's back
	path := inner.Store.(*FileStore).Path("OT_A_2024")
	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	obj, err = s.Load(ctx, "OT_A_2024")
	require.NoError(t, err)
	assert.Equal(t, "two", string(obj.Data))
	assert.Equal(t, 2, inner.loads)
}

func TestCachedStore_SaveInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewFileStore(t.TempDir())}
	mem := cache.NewMemoryCache(logger.Discard())
	defer mem.Close()
	s := NewCachedStore(inner, mem, 0, logger.Discard())

	require.NoError(t, s.Save(ctx, "WS_D_2024", []byte("one")))
	_, err := s.Load(ctx, "WS_D_2024")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "WS_D_2024", []byte("two")))
	obj, err := s.Load(ctx, "WS_D_2024")
	require.NoError(t, err)
	assert.Equal(t, "two", string(obj.Data))
	assert.Equal(t, 2, inner.loads)
}

func TestCachedStore_MissingPartition(t *testing.T) {
	mem := cache.NewMemoryCache(logger.Discard())
	defer mem.Close()
	s := NewCachedStore(NewFileStore(t.TempDir()), mem, time.Minute, logger.Discard())

	_, err := s.Load(context.Background(), "OT_A_1999")
	assert.ErrorIs(t, err, ErrNotFound)
}
