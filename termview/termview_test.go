// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termview

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/maruel/ansi256"
)

func TestSize(t *testing.T) {
	d := New(&Opts{Columns: 80, W: &bytes.Buffer{}})
	for _, tc := range []struct {
		r          image.Rectangle
		cols, rows int
	}{
		{image.Rect(0, 0, 320, 240), 80, 30},
		{image.Rect(0, 0, 40, 40), 40, 20},
		{image.Rect(0, 0, 10, 1), 10, 1},
		{image.Rect(0, 0, 0, 0), 0, 0},
	} {
		if c, r := d.Size(tc.r); c != tc.cols || r != tc.rows {
			t.Errorf("Size(%v) = %d, %d, want %d, %d", tc.r, c, r, tc.cols, tc.rows)
		}
	}
}

func TestDefaultColumns(t *testing.T) {
	// A caller provided writer is not the terminal, whatever stdout is.
	d := New(&Opts{W: &bytes.Buffer{}})
	if d.cols != 80 {
		t.Errorf("cols = %d, want 80", d.cols)
	}
	d = New(&Opts{Columns: 12, W: &bytes.Buffer{}})
	if d.cols != 12 {
		t.Errorf("cols = %d, want 12", d.cols)
	}
}

func TestShow(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Opts{Columns: 4, W: &buf})
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 0, 0, 255}), image.Point{}, draw.Src)
	if err := d.Show(img); err != nil {
		t.Fatal(err)
	}
	red := ansi256.Default.Block(color.NRGBA{255, 0, 0, 255})
	want := strings.Repeat(strings.Repeat(red, 4)+"\033[0m\n", 2)
	if got := buf.String(); got != want {
		t.Errorf("Show() = %q, want %q", got, want)
	}
	buf.Reset()
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\033[0m" {
		t.Errorf("Halt() wrote %q", buf.String())
	}
}

func TestAverage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{200, 0, 100, 255})
	img.Set(1, 0, color.RGBA{0, 100, 0, 255})
	if got := average(img, 0, 0, 2, 1); got != (color.NRGBA{100, 50, 50, 255}) {
		t.Errorf("average() = %v", got)
	}
}
