package database

import (
	"io"

	"github.com/ds124wfegd/WB_L3/composite/internal/entity"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/storage"
)

type CompositeRepository interface {
	Save(composite *entity.Composite) error
	FindByID(id string) (*entity.Composite, error)
	Delete(id string) error
	SaveSource(id string, index int, file io.Reader) (string, error)
	OpenSource(path string) (io.ReadCloser, error)
	SaveResult(id string, ext string, file io.Reader) (int64, error)
	OpenResult(id string, ext string) (io.ReadCloser, error)
}

type fileCompositeRepository struct {
	storage storage.FileStorage
}
