// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview prints a thumbnail of a captured frame to the terminal
// using ANSI 256 color codes.
//
// Useful to aim the camera over SSH before pulling the image file.
package termview

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/term"
)

// Opts represents the options available for the preview.
type Opts struct {
	// Columns is the width of the thumbnail in character cells. Zero uses
	// the width of the terminal when W is nil, 80 otherwise.
	Columns int
	Palette *ansi256.Palette
	// W defaults to a color aware stdout.
	W io.Writer

	_ struct{}
}

// Dev renders frames to a terminal.
type Dev struct {
	w       io.Writer
	cols    int
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a Dev that prints to the console.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	cols := opts.Columns
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
		if cols <= 0 {
			cols = stdoutColumns()
		}
	}
	if cols <= 0 {
		cols = 80
	}
	return &Dev{w: w, cols: cols, palette: *p}
}

// stdoutColumns returns the width of the terminal on stdout, or 0.
func stdoutColumns() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	c, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return c
}

func (d *Dev) String() string {
	return "TermView"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m"))
	return err
}

// Size returns the thumbnail size in cells for an image of the given
// bounds. A cell is about twice as high as it is wide.
func (d *Dev) Size(r image.Rectangle) (cols, rows int) {
	cols = d.cols
	if r.Dx() < cols {
		cols = r.Dx()
	}
	if cols == 0 || r.Dy() == 0 {
		return 0, 0
	}
	rows = r.Dy() * cols / r.Dx() / 2
	if rows == 0 {
		rows = 1
	}
	return cols, rows
}

// Show prints img scaled down to fit the configured width. Each cell takes
// the average color of the pixels it covers.
func (d *Dev) Show(img image.Image) error {
	b := img.Bounds()
	cols, rows := d.Size(b)
	d.buf.Reset()
	for y := 0; y < rows; y++ {
		y0 := b.Min.Y + y*b.Dy()/rows
		y1 := b.Min.Y + (y+1)*b.Dy()/rows
		for x := 0; x < cols; x++ {
			x0 := b.Min.X + x*b.Dx()/cols
			x1 := b.Min.X + (x+1)*b.Dx()/cols
			_, _ = io.WriteString(&d.buf, d.palette.Block(average(img, x0, y0, x1, y1)))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

func average(img image.Image, x0, y0, x1, y1 int) color.NRGBA {
	var r, g, b, n uint64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			b += uint64(cb >> 8)
			n++
		}
	}
	if n == 0 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{uint8(r / n), uint8(g / n), uint8(b / n), 255}
}
