package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ds124wfegd/WB_L3/composite/internal/database"
	"github.com/ds124wfegd/WB_L3/composite/internal/entity"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/arranger"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/codec"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/processor"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock producer для тестов без Kafka
type mockProducer struct {
	mu    sync.Mutex
	tasks []entity.CompositeTask
	err   error
}

func (m *mockProducer) SendTask(ctx context.Context, task entity.CompositeTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockProducer) Close() error { return nil }

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

type fixture struct {
	root      string
	service   CompositeService
	producer  *mockProducer
	processor processor.CompositeProcessor
	cache     *memoryCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	repo := database.NewCompositeRepository(storage.NewFileStorage(root))
	proc := processor.NewCompositeProcessor(repo)
	producer := &mockProducer{}
	c := &memoryCache{data: map[string][]byte{}}

	return &fixture{
		root:      root,
		service:   NewCompositeService(repo, producer, proc, c, Defaults{DownscaleFactor: 1, Format: "png"}),
		producer:  producer,
		processor: proc,
		cache:     c,
	}
}

func encodedImage(t *testing.T, width, height int, format codec.Format) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 150, B: 200, A: 255})
		}
	}
	data, err := codec.EncodeBytes(img, format)
	require.NoError(t, err)
	return data
}

func factor(f float64) *float64 {
	return &f
}

func sources(t *testing.T, dims ...[2]int) []entity.SourceImage {
	t.Helper()

	out := make([]entity.SourceImage, len(dims))
	for i, d := range dims {
		out[i] = entity.SourceImage{Name: "img.png", Data: encodedImage(t, d[0], d[1], codec.PNG)}
	}
	return out
}

// TestCompose тестирует синхронное построение и кэширование
func TestCompose(t *testing.T) {
	f := newFixture(t)
	src := sources(t, [2]int{60, 90}, [2]int{60, 90}, [2]int{90, 60}, [2]int{90, 60})

	first, err := f.service.Compose(context.Background(), src, entity.ComposeOptions{})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "mixed", first.Strategy)
	assert.Equal(t, "image/png", first.ContentType)
	assert.Equal(t, 90, first.Width)
	assert.Equal(t, 188, first.Height)
	assert.Len(t, f.cache.data, 1)

	second, err := f.service.Compose(context.Background(), src, entity.ComposeOptions{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, first.Strategy, second.Strategy)

	jpeg, err := f.service.Compose(context.Background(), src, entity.ComposeOptions{Format: "jpg", DownscaleFactor: factor(0.5)})
	require.NoError(t, err)
	assert.False(t, jpeg.Cached)
	assert.Equal(t, "image/jpeg", jpeg.ContentType)
	assert.Equal(t, 45, jpeg.Width)
	assert.Equal(t, 94, jpeg.Height)
}

func TestComposeErrors(t *testing.T) {
	f := newFixture(t)
	four := sources(t, [2]int{10, 10}, [2]int{10, 10}, [2]int{10, 10}, [2]int{10, 10})

	tests := []struct {
		name    string
		sources []entity.SourceImage
		opts    entity.ComposeOptions
		wantErr error
	}{
		{name: "three images", sources: four[:3], wantErr: arranger.ErrInvalidImageCount},
		{name: "factor above one", sources: four, opts: entity.ComposeOptions{DownscaleFactor: factor(1.5)}, wantErr: arranger.ErrInvalidDownscaleFactor},
		{name: "explicit zero factor", sources: four, opts: entity.ComposeOptions{DownscaleFactor: factor(0)}, wantErr: arranger.ErrInvalidDownscaleFactor},
		{name: "negative factor", sources: four, opts: entity.ComposeOptions{DownscaleFactor: factor(-0.5)}, wantErr: arranger.ErrInvalidDownscaleFactor},
		{name: "unknown output format", sources: four, opts: entity.ComposeOptions{Format: "gif"}, wantErr: codec.ErrUnsupportedFormat},
		{
			name:    "not an image",
			sources: append(append([]entity.SourceImage(nil), four[:3]...), entity.SourceImage{Name: "x.png", Data: []byte("nope")}),
			wantErr: codec.ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Compose(context.Background(), tt.sources, tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestSubmitAndProcess тестирует асинхронный сценарий через очередь
func TestSubmitAndProcess(t *testing.T) {
	f := newFixture(t)
	src := sources(t, [2]int{80, 60}, [2]int{80, 60}, [2]int{80, 60}, [2]int{80, 60})

	id, err := f.service.Submit(context.Background(), "job-1", src, entity.ComposeOptions{Format: "jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)

	composite, err := f.service.GetComposite(id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusProcessing, composite.Status)
	require.Len(t, composite.Sources, 4)
	assert.Equal(t, "landscape", composite.Sources[0].Orientation)

	_, _, err = f.service.OpenCompositeFile(id)
	assert.ErrorIs(t, err, entity.ErrCompositeNotReady)

	require.Len(t, f.producer.tasks, 1)
	task := f.producer.tasks[0]
	assert.Len(t, task.Sources, 4)
	assert.Equal(t, "jpeg", task.Format)

	require.NoError(t, f.processor.Process(context.Background(), task))

	composite, err = f.service.GetComposite(id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, composite.Status)
	assert.Equal(t, "all_landscape", composite.Strategy)
	assert.Equal(t, 160, composite.Width)
	assert.Equal(t, 120, composite.Height)

	reader, format, err := f.service.OpenCompositeFile(id)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, codec.JPEG, format)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	require.NoError(t, f.service.DeleteComposite(id))
	_, err = f.service.GetComposite(id)
	assert.ErrorIs(t, err, entity.ErrCompositeNotFound)
}

func TestSubmitQueueFailure(t *testing.T) {
	f := newFixture(t)
	f.producer.err = errors.New("broker down")
	src := sources(t, [2]int{10, 10}, [2]int{10, 10}, [2]int{10, 10}, [2]int{10, 10})

	_, err := f.service.Submit(context.Background(), "job-2", src, entity.ComposeOptions{})
	require.Error(t, err)

	composite, err := f.service.GetComposite("job-2")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, composite.Status)
	assert.Contains(t, composite.Error, "broker down")
}

func TestSubmitStorageFailure(t *testing.T) {
	f := newFixture(t)
	// originals cannot be written under a regular file
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "original"), []byte("x"), 0o644))
	src := sources(t, [2]int{10, 10}, [2]int{10, 10}, [2]int{10, 10}, [2]int{10, 10})

	_, err := f.service.Submit(context.Background(), "job-3", src, entity.ComposeOptions{})
	require.Error(t, err)
	assert.Empty(t, f.producer.tasks)

	composite, err := f.service.GetComposite("job-3")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, composite.Status)
	assert.NotEmpty(t, composite.Error)
}

// TestAnalyze тестирует анализ изображений без рендеринга
func TestAnalyze(t *testing.T) {
	f := newFixture(t)
	src := sources(t, [2]int{600, 900}, [2]int{600, 900}, [2]int{900, 600}, [2]int{900, 600})

	analysis, err := f.service.Analyze(src, entity.ComposeOptions{DownscaleFactor: factor(0.5)})
	require.NoError(t, err)

	assert.Equal(t, entity.OrientationSummary{Portrait: 2, Landscape: 2}, analysis.Orientations)
	assert.Equal(t, "mixed", analysis.Strategy)
	assert.Len(t, analysis.Candidates, 2)
	assert.Equal(t, 900, analysis.Best.Width)
	assert.Equal(t, 1875, analysis.Best.Height)
	assert.Equal(t, 450, analysis.OutputWidth)
	assert.Equal(t, 938, analysis.OutputHeight)
	assert.Positive(t, analysis.TotalSize)
	assert.NotEmpty(t, analysis.TotalSizeHuman)
	assert.InDelta(t, 600.0/900.0, analysis.Sources[0].AspectRatio, 1e-9)
}
