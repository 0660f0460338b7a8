// Package image provides image loading, saving, pixel-format conversion and
// display compositing for the editor.
package image

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned when a file extension has no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// JPEGQuality is used when saving .jpg files.
const JPEGQuality = 95

// Load decodes the file at path and converts it to NRGBA.
// It returns the decoder's format name alongside the image.
func Load(path string) (*image.NRGBA, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	return ToNRGBA(img), format, nil
}

// Save encodes img to path, choosing the encoder from the file extension.
func Save(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("failed to save image: nil image")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupportedFormat(path) {
		return fmt.Errorf("failed to save %s: %w", ext, ErrUnsupportedFormat)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	switch ext {
	case ".png":
		err = png.Encode(file, img)
	case ".jpg", ".jpeg":
		// JPEG has no alpha; flatten onto white first.
		err = jpeg.Encode(file, FlattenOnto(img, whiteBackground), &jpeg.Options{Quality: JPEGQuality})
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		err = bmp.Encode(file, img)
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
