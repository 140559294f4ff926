// Package filestore persists uploaded artwork files and streams them back.
//
// Stored files live in one flat namespace. Each file is named after a
// millisecond timestamp followed by the original extension, and is exposed
// publicly under URLPrefix.
package filestore

import (
	"context"
	"errors"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/Clark-Hu/artboard/internal/domain"
)

// URLPrefix is the public path under which stored files are served.
const URLPrefix = "/uploads/"

// maxNameAttempts bounds retries when a generated name is already taken.
const maxNameAttempts = 16

var (
	// ErrNotFound is returned when a stored file does not exist.
	ErrNotFound = errors.New("filestore: not found")
	// ErrInvalidName is returned for names that could escape the store namespace.
	ErrInvalidName = errors.New("filestore: invalid name")
)

// Upload is a single file payload received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Object is a stored file opened for reading. The caller must close Body.
type Object struct {
	Name        string
	Body        io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

// Store is implemented by every file storage backend.
type Store interface {
	Save(ctx context.Context, upload Upload) (domain.MediaFile, error)
	Open(ctx context.Context, name string) (*Object, error)
}

// IDSource supplies the timestamps used for stored names.
type IDSource interface {
	Next() int64
}

// CoarseType returns the media category of a MIME type, e.g. "image" for
// "image/png".
func CoarseType(mimeType string) string {
	category, _, _ := strings.Cut(mimeType, "/")
	return category
}

// Extension returns the extension of the client-supplied filename including
// the leading dot, or "" when there is none. Dotfiles such as ".env" have no
// extension.
func Extension(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := path.Ext(base)
	if ext == base || ext == "." {
		return ""
	}
	return ext
}

func storedName(id int64, ext string) string {
	return strconv.FormatInt(id, 10) + ext
}

func mediaFile(name, contentType string) domain.MediaFile {
	return domain.MediaFile{
		URL:  URLPrefix + name,
		Type: CoarseType(contentType),
	}
}

// ValidateName rejects names that are empty or contain path elements.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return ErrInvalidName
	}
	return nil
}
