package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/arranger"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, dir, name string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	path, err := codec.EncodeFile(filepath.Join(dir, name), img)
	require.NoError(t, err)
	return path
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := NewRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func landscapeInputs(t *testing.T, dir string) []string {
	t.Helper()
	return []string{
		writeImage(t, dir, "a.png", 80, 60),
		writeImage(t, dir, "b.png", 80, 60),
		writeImage(t, dir, "c.jpg", 80, 60),
		writeImage(t, dir, "d.png", 80, 60),
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	inputs := landscapeInputs(t, dir)

	tests := []struct {
		name       string
		output     string
		flags      []string
		wantPath   string
		wantWidth  int
		wantHeight int
	}{
		{"png output", "out/result.png", nil, "out/result.png", 160, 120},
		{"jpeg output", "result.jpg", nil, "result.jpg", 160, 120},
		{"unknown extension becomes png", "result.bmp", nil, "result.png", 160, 120},
		{"downscaled", "small.png", []string{"--downscale", "0.5"}, "small.png", 80, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, inputs...), filepath.Join(dir, tt.output))
			args = append(args, tt.flags...)

			out, err := execute(args...)
			require.NoError(t, err)

			img, _, err := codec.DecodeFile(filepath.Join(dir, tt.wantPath))
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, img.Bounds().Dx())
			assert.Equal(t, tt.wantHeight, img.Bounds().Dy())

			assert.Contains(t, out, "Landscape images: 4")
			assert.Contains(t, out, "Strategy: all_landscape")
			assert.Contains(t, out, "Aspect ratio: 1.333")
			assert.Contains(t, out, "File size:")
		})
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	inputs := landscapeInputs(t, dir)
	output := filepath.Join(dir, "result.png")

	t.Run("missing input", func(t *testing.T) {
		args := []string{inputs[0], inputs[1], inputs[2], filepath.Join(dir, "missing.png"), output}
		_, err := execute(args...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("wrong argument count", func(t *testing.T) {
		_, err := execute(inputs[0], inputs[1], inputs[2], output)
		assert.Error(t, err)
	})

	t.Run("invalid downscale", func(t *testing.T) {
		args := append(append([]string{}, inputs...), output, "--downscale", "1.5")
		_, err := execute(args...)
		assert.ErrorIs(t, err, arranger.ErrInvalidDownscaleFactor)
	})

	t.Run("unsupported input", func(t *testing.T) {
		text := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(text, []byte("not an image"), 0o644))

		args := []string{inputs[0], inputs[1], inputs[2], text, output}
		_, err := execute(args...)
		assert.ErrorIs(t, err, codec.ErrUnsupportedFormat)
	})

	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}
