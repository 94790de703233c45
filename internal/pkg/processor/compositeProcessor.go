package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ds124wfegd/WB_L3/composite/config"
	"github.com/ds124wfegd/WB_L3/composite/internal/database"
	"github.com/ds124wfegd/WB_L3/composite/internal/entity"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/arranger"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/codec"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/kafka"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Output is a composite together with its encoded bytes.
type Output struct {
	Result *arranger.CompositeResult
	Data   []byte
	Format codec.Format
}

type CompositeProcessor interface {
	Compose(images []image.Image, factor float64, format codec.Format) (*Output, error)
	Process(ctx context.Context, task entity.CompositeTask) error
}

type compositeProcessor struct {
	repo database.CompositeRepository
}

func NewCompositeProcessor(repo database.CompositeRepository) CompositeProcessor {
	return &compositeProcessor{repo: repo}
}

// Compose arranges four decoded images and encodes the result.
func (p *compositeProcessor) Compose(images []image.Image, factor float64, format codec.Format) (*Output, error) {
	start := time.Now()

	result, err := arranger.BuildComposite(images, factor)
	if err != nil {
		return nil, err
	}

	data, err := codec.EncodeBytes(result.Image, format)
	if err != nil {
		return nil, fmt.Errorf("encode composite: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"strategy": result.StrategyUsed(),
		"layout":   result.Layout.String(),
		"width":    result.Width,
		"height":   result.Height,
		"score":    result.Score,
		"size":     humanize.Bytes(uint64(len(data))),
		"duration": time.Since(start),
	}).Info("Composite built")

	return &Output{Result: result, Data: data, Format: format}, nil
}

// Process builds the composite of a stored job and records the outcome in its metadata.
func (p *compositeProcessor) Process(ctx context.Context, task entity.CompositeTask) error {
	log := logrus.WithField("composite_id", task.CompositeID)
	log.Info("Processing composite")

	if err := ctx.Err(); err != nil {
		return err
	}

	composite, err := p.repo.FindByID(task.CompositeID)
	if err != nil {
		return fmt.Errorf("failed to load composite: %w", err)
	}

	out, err := p.processTask(task)
	if err != nil {
		p.markFailed(composite, err, log)
		return err
	}

	size, err := p.repo.SaveResult(task.CompositeID, out.Format.Extension(), bytes.NewReader(out.Data))
	if err != nil {
		err = fmt.Errorf("failed to save composite: %w", err)
		p.markFailed(composite, err, log)
		return err
	}

	now := time.Now().UTC()
	composite.Status = entity.StatusCompleted
	composite.Strategy = out.Result.StrategyUsed()
	composite.Layout = out.Result.Layout.String()
	composite.Width = out.Result.Width
	composite.Height = out.Result.Height
	composite.Score = out.Result.Score
	composite.FileSize = size
	composite.CompletedAt = &now

	if err := p.repo.Save(composite); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Info("Completed processing composite")
	return nil
}

func (p *compositeProcessor) markFailed(composite *entity.Composite, cause error, log *logrus.Entry) {
	composite.Status = entity.StatusFailed
	composite.Error = cause.Error()
	if err := p.repo.Save(composite); err != nil {
		log.WithError(err).Error("Failed to save failed status")
	}
}

func (p *compositeProcessor) processTask(task entity.CompositeTask) (*Output, error) {
	format, err := codec.ParseFormat(task.Format)
	if err != nil {
		return nil, err
	}

	if len(task.Sources) != arranger.ImageCount {
		return nil, fmt.Errorf("%w: got %d", arranger.ErrInvalidImageCount, len(task.Sources))
	}

	images := make([]image.Image, 0, len(task.Sources))
	for _, path := range task.Sources {
		img, err := p.loadSource(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", path, err)
		}
		images = append(images, img)
	}

	return p.Compose(images, task.DownscaleFactor, format)
}

func (p *compositeProcessor) loadSource(path string) (image.Image, error) {
	reader, err := p.repo.OpenSource(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	img, _, err := codec.Decode(reader)
	return img, err
}

// StartCompositeConsumer feeds Kafka tasks to the processor until ctx is done.
func StartCompositeConsumer(ctx context.Context, cfg config.KafkaConfig, p CompositeProcessor) error {
	return kafka.Consume(ctx, cfg, p.Process)
}
