// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package imagefile writes decoded frames in a choice of file formats.
//
// PPM is the native format of the camera and is written without any
// conversion. The other formats go through the standard image encoders.
package imagefile

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Format int

const (
	PPM Format = iota
	PNG
	JPEG
	BMP
	TIFF

	// DefaultFormat is the format used when none is given.
	DefaultFormat = PPM
)

func (f Format) String() string {
	switch f {
	case PPM:
		return "PPM"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case BMP:
		return "BMP"
	case TIFF:
		return "TIFF"
	default:
		return fmt.Sprint(int(f))
	}
}

// MimeType returns the media type of the format.
func (f Format) MimeType() string {
	switch f {
	case PPM:
		return "image/x-portable-pixmap"
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	}

	return "application/octet-stream"
}

// Ext returns the usual file extension of the format, with the dot.
func (f Format) Ext() string {
	switch f {
	case PPM:
		return ".ppm"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case BMP:
		return ".bmp"
	case TIFF:
		return ".tiff"
	}
	return ""
}

// FormatFromString returns the Format for the given abbreviation.
func FormatFromString(value string) (Format, error) {
	switch strings.ToLower(value) {
	case "ppm", "pnm":
		return PPM, nil
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}

	return DefaultFormat, fmt.Errorf("unrecognized image format %q", value)
}

// FormatFromPath guesses the Format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return DefaultFormat, fmt.Errorf("no extension in %q", path)
	}
	return FormatFromString(ext)
}
