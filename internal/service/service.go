package service

import (
	"context"
	"io"

	"github.com/ds124wfegd/WB_L3/composite/internal/database"
	"github.com/ds124wfegd/WB_L3/composite/internal/entity"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/cache"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/codec"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/kafka"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/processor"
)

type CompositeService interface {
	Compose(ctx context.Context, sources []entity.SourceImage, opts entity.ComposeOptions) (*entity.ComposeResult, error)
	Submit(ctx context.Context, id string, sources []entity.SourceImage, opts entity.ComposeOptions) (string, error)
	Analyze(sources []entity.SourceImage, opts entity.ComposeOptions) (*entity.Analysis, error)
	GetComposite(id string) (*entity.Composite, error)
	OpenCompositeFile(id string) (io.ReadCloser, codec.Format, error)
	DeleteComposite(id string) error
}

// Defaults are applied to options a request leaves empty.
type Defaults struct {
	DownscaleFactor float64
	Format          string
}

type compositeService struct {
	repo      database.CompositeRepository
	producer  kafka.Producer
	processor processor.CompositeProcessor
	cache     cache.CompositeCache
	defaults  Defaults
}

func NewCompositeService(repo database.CompositeRepository, producer kafka.Producer, processor processor.CompositeProcessor,
	cache cache.CompositeCache, defaults Defaults) CompositeService {
	if defaults.DownscaleFactor == 0 {
		defaults.DownscaleFactor = 1
	}
	return &compositeService{
		repo:      repo,
		producer:  producer,
		processor: processor,
		cache:     cache,
		defaults:  defaults,
	}
}
