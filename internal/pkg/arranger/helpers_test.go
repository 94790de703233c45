package arranger

import (
	"image"
	"image/color"
)

// newTestImage создает изображение заданного размера, залитое одним цветом
func newTestImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fillImageWithColor(img, c)
	return img
}

// fillImageWithColor заполняет изображение одним цветом
func fillImageWithColor(img *image.RGBA, color color.RGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.Set(x, y, color)
		}
	}
}

func sizes(dims ...int) []Size {
	out := make([]Size, 0, len(dims)/2)
	for i := 0; i+1 < len(dims); i += 2 {
		out = append(out, Size{Width: dims[i], Height: dims[i+1]})
	}
	return out
}

func imagesOf(ss []Size) []image.Image {
	palette := []color.RGBA{
		{R: 200, G: 30, B: 30, A: 255},
		{R: 30, G: 200, B: 30, A: 255},
		{R: 30, G: 30, B: 200, A: 255},
		{R: 200, G: 200, B: 30, A: 255},
	}
	out := make([]image.Image, len(ss))
	for i, s := range ss {
		out[i] = newTestImage(s.Width, s.Height, palette[i%len(palette)])
	}
	return out
}
