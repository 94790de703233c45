package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ds124wfegd/WB_L3/composite/internal/entity"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/storage"
)

func NewCompositeRepository(storage storage.FileStorage) CompositeRepository {
	return &fileCompositeRepository{storage: storage}
}

func (r *fileCompositeRepository) Save(composite *entity.Composite) error {
	data, err := json.Marshal(composite)
	if err != nil {
		return err
	}

	_, err = r.storage.Save(metadataPath(composite.ID), bytes.NewReader(data))
	return err
}

func (r *fileCompositeRepository) FindByID(id string) (*entity.Composite, error) {
	reader, err := r.storage.Get(metadataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entity.ErrCompositeNotFound
		}
		return nil, err
	}
	defer reader.Close()

	var composite entity.Composite
	if err := json.NewDecoder(reader).Decode(&composite); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", id, err)
	}

	return &composite, nil
}

func (r *fileCompositeRepository) Delete(id string) error {
	if err := r.storage.Delete(metadataPath(id)); err != nil {
		if os.IsNotExist(err) {
			return entity.ErrCompositeNotFound
		}
		return err
	}

	for _, dir := range []string{filepath.Join("processed", id), filepath.Join("original", id)} {
		if err := r.storage.Delete(dir); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// SaveSource stores the index-th original image and returns its storage path.
func (r *fileCompositeRepository) SaveSource(id string, index int, file io.Reader) (string, error) {
	path := filepath.Join("original", id, strconv.Itoa(index))
	if _, err := r.storage.Save(path, file); err != nil {
		return "", err
	}
	return path, nil
}

func (r *fileCompositeRepository) OpenSource(path string) (io.ReadCloser, error) {
	return r.storage.Get(path)
}

func (r *fileCompositeRepository) SaveResult(id string, ext string, file io.Reader) (int64, error) {
	return r.storage.Save(resultPath(id, ext), file)
}

func (r *fileCompositeRepository) OpenResult(id string, ext string) (io.ReadCloser, error) {
	path := resultPath(id, ext)
	if !r.storage.Exists(path) {
		return nil, entity.ErrCompositeNotFound
	}
	return r.storage.Get(path)
}

func resultPath(id, ext string) string {
	return filepath.Join("processed", id, "composite"+ext)
}

func metadataPath(id string) string {
	return filepath.Join("metadata", id+".json")
}
