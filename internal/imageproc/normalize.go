// Package imageproc validates uploaded body images and transcodes them to
// JPEG on a white background.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageBytes = 5 * 1024 * 1024
	JPEGQuality   = 90

	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

var (
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image too large")
)

var (
	allowedExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}
	allowedMIMETypes  = map[string]bool{ContentTypePNG: true, ContentTypeJPEG: true}
)

// Result is the outcome of transcoding one image. FallbackUsed is set when the
// image could not be decoded or encoded and the original bytes were kept.
type Result struct {
	Data         []byte
	Filename     string
	ContentType  string
	FallbackUsed bool
	FallbackErr  error
}

// ImageError carries the user-facing message for a rejected image.
type ImageError struct {
	Filename string
	Err      error
}

func (e *ImageError) Error() string {
	switch {
	case errors.Is(e.Err, ErrUnsupportedImageType):
		return fmt.Sprintf("Invalid image type: %s. Allowed formats: PNG, JPG, JPEG", e.Filename)
	case errors.Is(e.Err, ErrImageTooLarge):
		return fmt.Sprintf("Image '%s' exceeds 5 MB limit", e.Filename)
	}
	return fmt.Sprintf("Image '%s' is invalid: %v", e.Filename, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// Extension returns the lowercased extension including the dot, or "".
func Extension(filename string) string {
	if !strings.Contains(filename, ".") {
		return ""
	}
	return strings.ToLower(filepath.Ext(filename))
}

// Check applies the type and size rules without touching pixel data.
func Check(filename, contentType string, size int) error {
	ext := Extension(filename)
	if !allowedExtensions[ext] && !allowedMIMETypes[strings.ToLower(strings.TrimSpace(contentType))] {
		return &ImageError{Filename: filename, Err: ErrUnsupportedImageType}
	}
	if size > MaxImageBytes {
		return &ImageError{Filename: filename, Err: ErrImageTooLarge}
	}
	return nil
}

// Normalize checks the upload and transcodes it.
func Normalize(filename, contentType string, data []byte) (Result, error) {
	if err := Check(filename, contentType, len(data)); err != nil {
		return Result{}, err
	}
	return Transcode(data, filename), nil
}

// Transcode converts data to JPEG. Files already named .jpg/.jpeg are returned
// untouched. On any decode or encode failure the original bytes and filename
// come back as image/png with FallbackUsed set.
func Transcode(data []byte, filename string) Result {
	ext := Extension(filename)
	if ext == ".jpg" || ext == ".jpeg" {
		return Result{Data: data, Filename: filename, ContentType: ContentTypeJPEG}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fallback(data, filename, fmt.Errorf("decode: %w", err))
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, flatten(src), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return fallback(data, filename, fmt.Errorf("encode: %w", err))
	}

	return Result{
		Data:        out.Bytes(),
		Filename:    jpegFilename(filename),
		ContentType: ContentTypeJPEG,
	}
}

func fallback(data []byte, filename string, err error) Result {
	return Result{
		Data:         data,
		Filename:     filename,
		ContentType:  ContentTypePNG,
		FallbackUsed: true,
		FallbackErr:  err,
	}
}

// flatten returns an opaque RGB image of the same bounds. Models that can
// carry transparency are composited over white; the rest are converted as is.
func flatten(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	if hasAlpha(src) {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
		return dst
	}

	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}

func hasAlpha(img image.Image) bool {
	switch img.ColorModel() {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		return true
	}
	_, paletted := img.(*image.Paletted)
	return paletted
}

func jpegFilename(filename string) string {
	base := filename
	if i := strings.LastIndex(filename, "."); i >= 0 {
		base = filename[:i]
	}
	return base + ".jpeg"
}
