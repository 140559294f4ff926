package filestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoarseType(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/png", "image"},
		{"audio/mpeg", "audio"},
		{"video/mp4; codecs=avc1", "video"},
		{"application/octet-stream", "application"},
		{"text", "text"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, CoarseType(tt.mime))
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"simple", "sunset.png", ".png"},
		{"double", "archive.tar.gz", ".gz"},
		{"none", "README", ""},
		{"dotfile", ".env", ""},
		{"trailing dot", "weird.", ""},
		{"unix path", "dir/sub/photo.JPG", ".JPG"},
		{"windows path", `C:\Users\me\song.mp3`, ".mp3"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.filename))
		})
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.png", `a\b.png`, "x\x00.png"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, "name %q", name)
	}
	assert.NoError(t, ValidateName("1700000000000.png"))
}
