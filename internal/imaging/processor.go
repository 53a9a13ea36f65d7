// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded post images: EXIF orientation is
// applied, large images are downscaled and metadata is stripped by
// re-encoding.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/blogicum/internal/model"
)

// Default limits for post images.
const (
	DefaultMaxWidth  = 1200
	DefaultMaxHeight = 1200
	DefaultQuality   = 90
)

// Errors returned by Process.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format, use JPEG, PNG, GIF or WebP")
	ErrTooLarge          = errors.New("image file is too large")
)

// Result is a processed image ready to be stored.
type Result struct {
	Data        []byte
	Ext         string // with leading dot
	ContentType string
	Width       int
	Height      int
}

// Processor handles image processing operations using pure Go libraries.
type Processor struct {
	maxWidth  int
	maxHeight int
	quality   int
	maxBytes  int64
}

// NewProcessor creates a processor with the default bounds. maxBytes
// limits the accepted upload size, 0 disables the check.
func NewProcessor(maxBytes int64) *Processor {
	return &Processor{
		maxWidth:  DefaultMaxWidth,
		maxHeight: DefaultMaxHeight,
		quality:   DefaultQuality,
		maxBytes:  maxBytes,
	}
}

// Process reads an upload, fixes its orientation, fits it into the
// configured bounds and re-encodes it.
func (p *Processor) Process(r io.Reader) (*Result, error) {
	if p.maxBytes > 0 {
		r = io.LimitReader(r, p.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	b := img.Bounds()
	if b.Dx() > p.maxWidth || b.Dy() > p.maxHeight {
		img = imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)
	}

	out, outFormat, err := encodeImage(img, format, p.quality)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	b = img.Bounds()
	return &Result{
		Data:        out,
		Ext:         formatExt(outFormat),
		ContentType: "image/" + outFormat,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// NewKey returns a unique storage key under the post image directory.
func NewKey(ext string) string {
	return path.Join(model.ImageDir, uuid.NewString()+ext)
}

// readExifOrientation returns 1 (normal) when the tag is missing.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation undoes the camera rotation recorded in EXIF
// orientation values 2..8.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage returns the encoded bytes and the format actually written.
// WebP has no pure Go encoder and is written as JPEG.
func encodeImage(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, "", err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", err
		}
		format = "jpeg"
	}

	return buf.Bytes(), format, nil
}

// detectFormat sniffs the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF decoding in disintegration/imaging is vulnerable (CVE-2023-36308).
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatExt(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
