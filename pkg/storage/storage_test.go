package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studyhub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	obj, err := l.Put(ctx, "memories/2024/01/02/a.png", strings.NewReader("png-bytes"), "image/png", 9)
	require.NoError(t, err)
	assert.Equal(t, "memories/2024/01/02/a.png", obj.Key)
	assert.Equal(t, "/uploads/memories/2024/01/02/a.png", obj.URL)
	assert.Equal(t, int64(9), obj.Size)

	data, err := os.ReadFile(filepath.Join(dir, "memories", "2024", "01", "02", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, l.Delete(ctx, obj.Key))
	_, err = os.Stat(filepath.Join(dir, "memories", "2024", "01", "02", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// 重复删除不报错
	assert.NoError(t, l.Delete(ctx, obj.Key))
}

func TestLocal_RejectsTraversal(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../outside.txt", "a/../../outside.txt", ".."} {
		_, err := l.Put(ctx, key, strings.NewReader("x"), "text/plain", 1)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestGenerateKey(t *testing.T) {
	key := GenerateKey("memories/", "../../photo.JPG")
	assert.True(t, strings.HasPrefix(key, "memories/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotContains(t, key, "..")

	_, err := cleanKey(key)
	assert.NoError(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(config.StorageConfig{Backend: "local", Local: config.LocalFS{Dir: t.TempDir(), URLPrefix: "/uploads"}})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, s)

	_, err = New(config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)

	_, err = New(config.StorageConfig{Backend: "s3"})
	assert.Error(t, err)
}
