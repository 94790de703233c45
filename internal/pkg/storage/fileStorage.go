package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

type FileStorage interface {
	Save(path string, data io.Reader) (int64, error)
	Get(path string) (io.ReadCloser, error)
	Delete(path string) error
	Exists(path string) bool
	FullPath(path string) string
}

type fileStorage struct {
	basePath string
}

func NewFileStorage(basePath string) FileStorage {
	return &fileStorage{basePath: basePath}
}

// FullPath resolves path inside the storage root. Attempts to climb out of
// the root with ".." are cut at the root.
func (s *fileStorage) FullPath(path string) string {
	clean := filepath.Clean("/" + strings.TrimPrefix(path, "/"))
	return filepath.Join(s.basePath, clean)
}

func (s *fileStorage) Save(path string, data io.Reader) (int64, error) {
	fullPath := s.FullPath(path)

	// Создаем директорию если нужно
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, err
	}

	// Write to a temp file first so readers never see a half-written file.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".tmp-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, data)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	return n, os.Rename(tmp.Name(), fullPath)
}

func (s *fileStorage) Get(path string) (io.ReadCloser, error) {
	return os.Open(s.FullPath(path))
}

// Delete removes a file or a whole directory. A missing path is reported
// with an error satisfying os.IsNotExist.
func (s *fileStorage) Delete(path string) error {
	fullPath := s.FullPath(path)
	if _, err := os.Stat(fullPath); err != nil {
		return err
	}
	return os.RemoveAll(fullPath)
}

func (s *fileStorage) Exists(path string) bool {
	_, err := os.Stat(s.FullPath(path))
	return !os.IsNotExist(err)
}
