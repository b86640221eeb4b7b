package uploads

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"), opts...)
	require.NoError(t, err)
	return store
}

func TestNewStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, MaxUploadSize, store.MaxSize())

	_, err = NewStore("")
	assert.Error(t, err)
}

func TestStore_Save(t *testing.T) {
	fixed := time.UnixMilli(1714557600000)
	store := newTestStore(t, WithClock(func() time.Time { return fixed }))
	data := bytes.Repeat([]byte{0x89}, 10*1024)

	name, err := store.Save(context.Background(), bytes.NewReader(data), "image/png", ".png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(name, "1714557600000-"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.True(t, store.Exists(name))

	stored, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestStore_SaveSizeLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("exactly the limit succeeds", func(t *testing.T) {
		data := bytes.Repeat([]byte{1}, int(MaxUploadSize))

		name, err := store.Save(ctx, bytes.NewReader(data), "image/jpeg", ".jpg")
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(store.Dir(), name))
		require.NoError(t, err)
		assert.Equal(t, MaxUploadSize, info.Size())
	})

	t.Run("one byte over fails too large", func(t *testing.T) {
		before, err := os.ReadDir(store.Dir())
		require.NoError(t, err)

		data := bytes.Repeat([]byte{1}, int(MaxUploadSize)+1)
		name, err := store.Save(ctx, bytes.NewReader(data), "image/jpeg", ".jpg")

		assert.Empty(t, name)
		assert.Equal(t, apperrors.KindTooLarge, apperrors.KindOf(err))

		after, err := os.ReadDir(store.Dir())
		require.NoError(t, err)
		assert.Len(t, after, len(before), "rejected upload must not be kept")
	})
}

func TestStore_SaveRejectsNonImages(t *testing.T) {
	store := newTestStore(t)

	for _, mimeType := range []string{"text/plain", "application/pdf", "", "image", "imagery/png"} {
		t.Run(mimeType, func(t *testing.T) {
			_, err := store.Save(context.Background(), strings.NewReader("hello"), mimeType, ".txt")
			assert.Equal(t, apperrors.KindUnsupportedType, apperrors.KindOf(err))
		})
	}

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_SaveAcceptsMediaTypeParameters(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(context.Background(), strings.NewReader("<svg/>"), "image/svg+xml; charset=utf-8", ".svg")
	assert.NoError(t, err)
}

func TestStore_SaveExtensions(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		ext  string
		want string
	}{
		{ext: ".PNG", want: ".PNG"},
		{ext: ".jpeg", want: ".jpeg"},
		{ext: "", want: ""},
		{ext: ".png/../../x", want: ""},
		{ext: ".tar.gz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			name, err := store.Save(context.Background(), strings.NewReader("img"), "image/png", tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, filepath.Ext(name))
			assert.Equal(t, name, filepath.Base(name))
		})
	}
}

func TestStore_SaveConcurrentNamesAreUnique(t *testing.T) {
	fixed := time.UnixMilli(1714557600000)
	store := newTestStore(t, WithClock(func() time.Time { return fixed }))

	const uploads = 20
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		names = make(map[string]struct{})
	)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := store.Save(context.Background(), strings.NewReader("img"), "image/png", ".png")
			assert.NoError(t, err)
			mu.Lock()
			names[name] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, names, uploads)
}

func TestStore_SaveCancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, strings.NewReader("img"), "image/png", ".png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Open(t *testing.T) {
	store := newTestStore(t)
	name, err := store.Save(context.Background(), strings.NewReader("png-bytes"), "image/png", ".png")
	require.NoError(t, err)

	f, info, err := store.Open(name)
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
	assert.Equal(t, name, info.Name())
}

func TestStore_OpenNotFound(t *testing.T) {
	store := newTestStore(t)
	secret := filepath.Join(filepath.Dir(store.Dir()), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), "nested"), 0o755))

	for _, name := range []string{"missing.png", "", ".", "..", "../secret.txt", "nested", ".hidden", "a/b.png"} {
		t.Run(name, func(t *testing.T) {
			f, _, err := store.Open(name)
			assert.Nil(t, f)
			assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
			assert.False(t, store.Exists(name))
		})
	}
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)
	outside := filepath.Join(filepath.Dir(store.Dir()), "keep.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	name, err := store.Save(context.Background(), bytes.NewReader([]byte("png")), "image/png", ".png")
	require.NoError(t, err)
	require.True(t, store.Exists(name))

	store.Remove(name)
	assert.False(t, store.Exists(name))

	store.Remove(name)
	store.Remove("../keep.png")
	assert.FileExists(t, outside)
}

func TestIsImageType(t *testing.T) {
	assert.True(t, IsImageType("image/png"))
	assert.True(t, IsImageType("IMAGE/GIF"))
	assert.True(t, IsImageType("image/webp; q=1"))
	assert.False(t, IsImageType("text/html"))
	assert.False(t, IsImageType("not a type"))
}
