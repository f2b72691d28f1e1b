// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package imagefile

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Options tunes the encoders. The zero value uses the encoder defaults.
type Options struct {
	PNGCompression png.CompressionLevel

	// JPEGQuality is 1-100; zero means jpeg.DefaultQuality.
	JPEGQuality int

	TIFFCompression tiff.CompressionType
}

type pngEncoderBufferPool sync.Pool

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	buf, _ := (*sync.Pool)(p).Get().(*png.EncoderBuffer)
	return buf
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	(*sync.Pool)(p).Put(buf)
}

type pngEncoderManager struct {
	mu   sync.Mutex
	pool pngEncoderBufferPool
	enc  map[png.CompressionLevel]*png.Encoder
}

var pngEncoder pngEncoderManager

// get returns a PNG encoder with a globally shared buffer pool.
func (m *pngEncoderManager) get(level png.CompressionLevel) *png.Encoder {
	m.mu.Lock()
	defer m.mu.Unlock()

	enc := m.enc[level]
	if enc == nil {
		if m.enc == nil {
			// The vast majority of use cases will involve exactly one
			// compression level.
			m.enc = make(map[png.CompressionLevel]*png.Encoder, 1)
		}

		enc = &png.Encoder{
			CompressionLevel: level,
			BufferPool:       &m.pool,
		}

		m.enc[level] = enc
	}

	return enc
}

// ppmEncoder is implemented by images that know how to write themselves as
// PPM, like *rgb565.Image.
type ppmEncoder interface {
	image.Image
	WriteTo(w io.Writer) (int64, error)
	Header() string
}

// Encode writes img to w in format f. opts may be nil.
func Encode(w io.Writer, img image.Image, f Format, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	switch f {
	case PPM:
		return encodePPM(w, img)
	case PNG:
		return pngEncoder.get(opts.PNGCompression).Encode(w, img)
	case JPEG:
		q := opts.JPEGQuality
		if q == 0 {
			q = jpeg.DefaultQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: opts.TIFFCompression})
	default:
		return fmt.Errorf("unhandled image format %s", f)
	}
}

func encodePPM(w io.Writer, img image.Image) error {
	if p, ok := img.(ppmEncoder); ok {
		_, err := p.WriteTo(w)
		return err
	}
	b := img.Bounds()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", b.Dx(), b.Dy()); err != nil {
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if _, err := bw.Write([]byte{byte(r >> 8), byte(g >> 8), byte(bl >> 8)}); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes img to path. The format is taken from the extension of
// path. A file that fails to be written is left in place.
func WriteFile(path string, img image.Image, opts *Options) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(out)
	if err := Encode(bw, img, f, opts); err != nil {
		return fmt.Errorf("imagefile: %s: %w", path, err)
	}
	return bw.Flush()
}
