// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb565 converts raw RGB565 frames into 24 bit images and writes
// them as binary PPM (P6).
//
// A pixel is a little endian 16 bit word with red in bits 11-15, green in
// bits 5-10 and blue in bits 0-4. Each channel is shifted left to fill 8
// bits; the low bits are left at zero.
package rgb565

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
)

// ErrShortBuffer is returned by Decode when the source does not hold the
// whole frame.
var ErrShortBuffer = errors.New("rgb565: source too short for frame")

// Pixel is a raw RGB565 value.
type Pixel uint16

// RGB returns the channels scaled to 8 bits.
func (p Pixel) RGB() (r, g, b uint8) {
	r = uint8((p>>11)&0x1F) << 3
	g = uint8((p>>5)&0x3F) << 2
	b = uint8(p&0x1F) << 3
	return
}

// RGBA implements color.Color.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := p.RGB()
	return color.RGBA{r8, g8, b8, 0xFF}.RGBA()
}

// Image is a decoded frame: Width*Height RGB triplets. It is not modified
// after Decode returns.
type Image struct {
	Width  int
	Height int
	// Pix holds the triplets in the order they were decoded, which is also
	// the row-major order in which a PPM viewer lays them out.
	Pix []byte
}

// Decode reads width*height pixels starting at offset in src.
//
// The camera controller writes frames column by column: the outer loop
// walks width columns, the inner loop height rows, and each step consumes
// two bytes. The triplets are emitted in that exact order.
func Decode(src []byte, offset, width, height int) (*Image, error) {
	if width < 0 || height < 0 || offset < 0 {
		return nil, fmt.Errorf("rgb565: invalid geometry %dx%d at %d", width, height, offset)
	}
	if offset > len(src) {
		return nil, ErrShortBuffer
	}
	// Divide rather than multiply so that huge geometries cannot overflow.
	if width != 0 && height > (len(src)-offset)/2/width {
		return nil, ErrShortBuffer
	}
	img := &Image{Width: width, Height: height, Pix: make([]byte, 0, 3*width*height)}
	if height == 0 {
		return img, nil
	}
	for i := 0; i < width; i++ {
		for j := 0; j < height; j++ {
			p := Pixel(binary.LittleEndian.Uint16(src[offset:]))
			r, g, b := p.RGB()
			img.Pix = append(img.Pix, r, g, b)
			offset += 2
		}
	}
	return img, nil
}

// Header returns the PPM header for the image.
func (img *Image) Header() string {
	return "P6\n" + strconv.Itoa(img.Width) + " " + strconv.Itoa(img.Height) + "\n255\n"
}

// WriteTo writes the image as a binary PPM. On error the content written
// so far is left as is.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, img.Header())
	if err != nil {
		return int64(n), fmt.Errorf("rgb565: writing header: %w", err)
	}
	m, err := w.Write(img.Pix)
	if err == nil && m != len(img.Pix) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return int64(n + m), fmt.Errorf("rgb565: writing pixels: %w", err)
	}
	return int64(n + m), nil
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// At implements image.Image.
func (img *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(img.Bounds())) {
		return color.RGBA{}
	}
	i := 3 * (y*img.Width + x)
	return color.RGBA{img.Pix[i], img.Pix[i+1], img.Pix[i+2], 0xFF}
}

var _ image.Image = &Image{}
var _ io.WriterTo = &Image{}
