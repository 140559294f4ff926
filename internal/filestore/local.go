package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Clark-Hu/artboard/internal/domain"
)

// LocalStore writes uploads into a single directory on local disk.
type LocalStore struct {
	dir    string
	ids    IDSource
	logger *zap.Logger
}

// NewLocal returns a store rooted at dir. The directory is created on write
// whenever it is missing.
func NewLocal(dir string, ids IDSource, logger *zap.Logger) *LocalStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStore{dir: dir, ids: ids, logger: logger}
}

// Dir reports the root directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	return nil
}

// Save copies the upload to a new file. A partially written file is left in
// place when the copy fails.
func (s *LocalStore) Save(ctx context.Context, upload Upload) (domain.MediaFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.MediaFile{}, err
	}
	if err := s.ensureDir(); err != nil {
		return domain.MediaFile{}, err
	}

	ext := Extension(upload.Filename)
	var (
		f    *os.File
		name string
		err  error
	)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name = storedName(s.ids.Next(), ext)
		f, err = os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil || !errors.Is(err, fs.ErrExist) {
			break
		}
		s.logger.Debug("stored name taken, retrying", zap.String("name", name))
	}
	if err != nil {
		return domain.MediaFile{}, fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	written, err := io.Copy(f, upload.Body)
	if err != nil {
		return domain.MediaFile{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return domain.MediaFile{}, fmt.Errorf("close %s: %w", name, err)
	}

	s.logger.Debug("file stored",
		zap.String("name", name),
		zap.String("original", upload.Filename),
		zap.Int64("bytes", written))
	return mediaFile(name, upload.ContentType), nil
}

// Open returns the stored file. The returned Body also implements io.Seeker.
func (s *LocalStore) Open(ctx context.Context, name string) (*Object, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return &Object{
		Name:        name,
		Body:        f,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Size:        stat.Size(),
		ModTime:     stat.ModTime(),
	}, nil
}
