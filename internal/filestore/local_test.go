package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/artboard/internal/idgen"
)

func fixedIDs(ms int64) *idgen.Generator {
	return idgen.NewWithClock(func() time.Time { return time.UnixMilli(ms) })
}

func TestLocalStore_SaveCreatesDirLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	st := NewLocal(dir, fixedIDs(1_700_000_000_000), nil)

	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err), "directory must not exist before the first save")

	file, err := st.Save(context.Background(), Upload{
		Filename:    "sunset.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000.png", file.URL)
	assert.Equal(t, "image", file.Type)

	payload, err := os.ReadFile(filepath.Join(dir, "1700000000000.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(payload))
}

func TestLocalStore_SaveMultipleKeepsNamesDistinct(t *testing.T) {
	st := NewLocal(t.TempDir(), fixedIDs(42), nil)

	a, err := st.Save(context.Background(), Upload{Filename: "a.mp3", ContentType: "audio/mpeg", Body: strings.NewReader("a")})
	require.NoError(t, err)
	b, err := st.Save(context.Background(), Upload{Filename: "b", ContentType: "", Body: strings.NewReader("b")})
	require.NoError(t, err)

	assert.Equal(t, "/uploads/42.mp3", a.URL)
	assert.Equal(t, "audio", a.Type)
	assert.Equal(t, "/uploads/43", b.URL)
	assert.Equal(t, "", b.Type)
}

func TestLocalStore_SaveSkipsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "100.png"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "101.png"), []byte("old"), 0o644))

	st := NewLocal(dir, fixedIDs(100), nil)
	file, err := st.Save(context.Background(), Upload{Filename: "new.png", ContentType: "image/png", Body: strings.NewReader("new")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/102.png", file.URL)

	old, err := os.ReadFile(filepath.Join(dir, "100.png"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))
}

func TestLocalStore_SaveFailsWhenDirUnusable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	st := NewLocal(filepath.Join(blocker, "uploads"), fixedIDs(1), nil)
	_, err := st.Save(context.Background(), Upload{Filename: "a.png", Body: strings.NewReader("a")})
	assert.Error(t, err)
}

func TestLocalStore_Open(t *testing.T) {
	st := NewLocal(t.TempDir(), fixedIDs(7), nil)
	ctx := context.Background()

	file, err := st.Save(ctx, Upload{Filename: "pic.png", ContentType: "image/png", Body: strings.NewReader("pixels")})
	require.NoError(t, err)

	obj, err := st.Open(ctx, strings.TrimPrefix(file.URL, URLPrefix))
	require.NoError(t, err)
	defer obj.Body.Close()

	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(6), obj.Size)
	_, seekable := obj.Body.(io.Seeker)
	assert.True(t, seekable)

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(body))

	_, err = st.Open(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.Open(ctx, "../secret")
	assert.ErrorIs(t, err, ErrInvalidName)
}
