package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/ds124wfegd/WB_L3/composite/internal/entity"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/arranger"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/cache"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/codec"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// cachedComposite is what the cache keeps for a composite.
type cachedComposite struct {
	Strategy string `json:"strategy"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Data     []byte `json:"data"`
}

func (s *compositeService) resolve(opts entity.ComposeOptions) (float64, codec.Format, error) {
	factor := s.defaults.DownscaleFactor
	if opts.DownscaleFactor != nil {
		factor = *opts.DownscaleFactor
	}
	if err := arranger.ValidateFactor(factor); err != nil {
		return 0, "", err
	}

	name := opts.Format
	if name == "" {
		name = s.defaults.Format
	}
	format, err := codec.ParseFormat(name)
	if err != nil {
		return 0, "", err
	}
	return factor, format, nil
}

func checkCount(sources []entity.SourceImage) error {
	if len(sources) != arranger.ImageCount {
		return fmt.Errorf("%w: got %d", arranger.ErrInvalidImageCount, len(sources))
	}
	return nil
}

func decodeSources(sources []entity.SourceImage) ([]image.Image, []entity.SourceInfo, error) {
	images := make([]image.Image, len(sources))
	infos := make([]entity.SourceInfo, len(sources))

	for i, src := range sources {
		img, _, err := codec.Decode(bytes.NewReader(src.Data))
		if err != nil {
			return nil, nil, fmt.Errorf("image %d (%s): %w", i+1, src.Name, err)
		}

		size := arranger.SizeOf(img)
		images[i] = img
		infos[i] = entity.SourceInfo{
			Name:        src.Name,
			Width:       size.Width,
			Height:      size.Height,
			Orientation: arranger.ClassifySize(size).String(),
			AspectRatio: size.AspectRatio(),
			Size:        int64(len(src.Data)),
			SizeHuman:   humanize.Bytes(uint64(len(src.Data))),
		}
	}
	return images, infos, nil
}

// Compose builds the composite right away. Identical requests are answered from the cache.
func (s *compositeService) Compose(ctx context.Context, sources []entity.SourceImage, opts entity.ComposeOptions) (*entity.ComposeResult, error) {
	if err := checkCount(sources); err != nil {
		return nil, err
	}
	factor, format, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}

	raw := make([][]byte, len(sources))
	for i, src := range sources {
		raw[i] = src.Data
	}
	key := cache.Key(raw, factor, string(format))

	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	images, _, err := decodeSources(sources)
	if err != nil {
		return nil, err
	}

	out, err := s.processor.Compose(images, factor, format)
	if err != nil {
		return nil, err
	}

	result := &entity.ComposeResult{
		Data:        out.Data,
		ContentType: format.ContentType(),
		Strategy:    out.Result.StrategyUsed(),
		Width:       out.Result.Width,
		Height:      out.Result.Height,
	}
	s.toCache(ctx, key, result, format)

	return result, nil
}

func (s *compositeService) fromCache(ctx context.Context, key string) (*entity.ComposeResult, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).Warn("Composite cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var c cachedComposite
	if err := json.Unmarshal(data, &c); err != nil {
		logrus.WithError(err).Warn("Corrupt composite cache entry")
		return nil, false
	}

	format, err := codec.ParseFormat(c.Format)
	if err != nil {
		return nil, false
	}

	return &entity.ComposeResult{
		Data:        c.Data,
		ContentType: format.ContentType(),
		Strategy:    c.Strategy,
		Width:       c.Width,
		Height:      c.Height,
		Cached:      true,
	}, true
}

func (s *compositeService) toCache(ctx context.Context, key string, result *entity.ComposeResult, format codec.Format) {
	data, err := json.Marshal(cachedComposite{
		Strategy: result.Strategy,
		Width:    result.Width,
		Height:   result.Height,
		Format:   string(format),
		Data:     result.Data,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		logrus.WithError(err).Warn("Composite cache write failed")
	}
}

// Submit stores the originals and queues a task for the processor.
func (s *compositeService) Submit(ctx context.Context, id string, sources []entity.SourceImage, opts entity.ComposeOptions) (string, error) {
	if err := checkCount(sources); err != nil {
		return "", err
	}
	factor, format, err := s.resolve(opts)
	if err != nil {
		return "", err
	}

	_, infos, err := decodeSources(sources)
	if err != nil {
		return "", err
	}

	// Создаем запись в репозитории
	composite := &entity.Composite{
		ID:              id,
		Status:          entity.StatusProcessing,
		Format:          string(format),
		DownscaleFactor: factor,
		Sources:         infos,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Save(composite); err != nil {
		return "", err
	}

	// Сохраняем файлы
	paths := make([]string, len(sources))
	for i, src := range sources {
		path, err := s.repo.SaveSource(id, i, bytes.NewReader(src.Data))
		if err != nil {
			s.markFailed(composite, err)
			return "", fmt.Errorf("save source %d: %w", i+1, err)
		}
		paths[i] = path
	}

	task := entity.CompositeTask{
		CompositeID:     id,
		Sources:         paths,
		DownscaleFactor: factor,
		Format:          string(format),
	}

	if err := s.producer.SendTask(ctx, task); err != nil {
		s.markFailed(composite, err)
		return "", fmt.Errorf("queue composite task: %w", err)
	}

	return id, nil
}

func (s *compositeService) markFailed(composite *entity.Composite, cause error) {
	composite.Status = entity.StatusFailed
	composite.Error = cause.Error()
	if err := s.repo.Save(composite); err != nil {
		logrus.WithError(err).WithField("composite_id", composite.ID).Error("Failed to save failed status")
	}
}

// Analyze reports what arrangement the images would get, without rendering it.
func (s *compositeService) Analyze(sources []entity.SourceImage, opts entity.ComposeOptions) (*entity.Analysis, error) {
	if err := checkCount(sources); err != nil {
		return nil, err
	}
	factor, _, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}

	images, infos, err := decodeSources(sources)
	if err != nil {
		return nil, err
	}

	sizes := make([]arranger.Size, len(images))
	var total int64
	for i, img := range images {
		sizes[i] = arranger.SizeOf(img)
		total += infos[i].Size
	}

	plan, err := arranger.MakePlan(sizes)
	if err != nil {
		return nil, err
	}

	candidates := make([]entity.CandidateInfo, len(plan.Candidates))
	for i, c := range plan.Candidates {
		candidates[i] = candidateInfo(c)
	}
	output := arranger.DownscaledSize(arranger.Size{Width: plan.Best.Width, Height: plan.Best.Height}, factor)

	return &entity.Analysis{
		Sources: infos,
		Orientations: entity.OrientationSummary{
			Portrait:  plan.Counts.Portrait,
			Landscape: plan.Counts.Landscape,
			Square:    plan.Counts.Square,
		},
		TotalSize:      total,
		TotalSizeHuman: humanize.Bytes(uint64(total)),
		Strategy:       plan.Strategy.String(),
		Candidates:     candidates,
		Best:           candidateInfo(plan.Best),
		OutputWidth:    output.Width,
		OutputHeight:   output.Height,
	}, nil
}

func candidateInfo(l arranger.Layout) entity.CandidateInfo {
	return entity.CandidateInfo{
		Layout: l.String(),
		Width:  l.Width,
		Height: l.Height,
		Score:  l.Score(),
	}
}

func (s *compositeService) GetComposite(id string) (*entity.Composite, error) {
	return s.repo.FindByID(id)
}

func (s *compositeService) OpenCompositeFile(id string) (io.ReadCloser, codec.Format, error) {
	composite, err := s.repo.FindByID(id)
	if err != nil {
		return nil, "", err
	}
	if composite.Status != entity.StatusCompleted {
		return nil, "", entity.ErrCompositeNotReady
	}

	format, err := codec.ParseFormat(composite.Format)
	if err != nil {
		return nil, "", err
	}

	reader, err := s.repo.OpenResult(id, format.Extension())
	if err != nil {
		return nil, "", err
	}
	return reader, format, nil
}

func (s *compositeService) DeleteComposite(id string) error {
	return s.repo.Delete(id)
}
