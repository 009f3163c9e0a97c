package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "uploads"), "/uploads/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "a.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(store.Dir(), "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, err = os.Stat(filepath.Join(store.Dir(), "a.jpg.tmp"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Delete(context.Background(), "a.jpg"))
	_, err = os.Stat(filepath.Join(store.Dir(), "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	// Повторное удаление не ошибка
	assert.NoError(t, store.Delete(context.Background(), "a.jpg"))
}

func TestLocalStore_InvalidName(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, name := range []string{"", "../etc/passwd", "sub/a.jpg", ".hidden"} {
		_, err := store.Save(context.Background(), name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, store.Delete(context.Background(), name), ErrInvalidName, name)
	}
}
