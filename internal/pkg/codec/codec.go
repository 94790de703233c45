// Package codec decodes uploaded PNG/JPEG images and encodes composites.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var ErrUnsupportedFormat = errors.New("unsupported image format, supported: png, jpg, jpeg")

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// JPEGQuality is the quality composites are saved with as JPEG.
const JPEGQuality = 85

func (f Format) Extension() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

func (f Format) ContentType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// ParseFormat accepts "png", "jpg" and "jpeg" in any case. An empty string means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func IsSupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// OutputFormat picks the output format from the file extension. Unknown
// extensions fall back to PNG and the returned path gets a .png extension.
func OutputFormat(path string) (Format, string) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return PNG, path
	case ".jpg", ".jpeg":
		return JPEG, path
	default:
		return PNG, strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	}
}

// Decode reads a PNG or JPEG image, applying EXIF orientation.
func Decode(r io.Reader) (image.Image, Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}

	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", fmt.Errorf("decode image header: %w", err)
	}

	var format Format
	switch name {
	case "png":
		format = PNG
	case "jpeg":
		format = JPEG
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s image: %w", format, err)
	}
	return img, format, nil
}

func DecodeFile(path string) (image.Image, Format, error) {
	if !IsSupportedExtension(filepath.Ext(path)) {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	return Decode(file)
}

func encodeOptions(f Format) (imaging.Format, []imaging.EncodeOption) {
	if f == JPEG {
		return imaging.JPEG, []imaging.EncodeOption{imaging.JPEGQuality(JPEGQuality)}
	}
	// zlib default is compression level 6
	return imaging.PNG, []imaging.EncodeOption{imaging.PNGCompressionLevel(png.DefaultCompression)}
}

func Encode(w io.Writer, img image.Image, f Format) error {
	format, opts := encodeOptions(f)
	return imaging.Encode(w, img, format, opts...)
}

func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeFile saves img to path in the format its extension implies and
// returns the path actually written.
func EncodeFile(path string, img image.Image) (string, error) {
	format, path := OutputFormat(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := Encode(file, img, format); err != nil {
		return "", err
	}
	return path, file.Close()
}
