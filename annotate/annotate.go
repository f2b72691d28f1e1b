// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package annotate stamps a caption onto a captured frame, e.g. the capture
// time and sensor settings.
package annotate

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Opts controls the caption.
type Opts struct {
	// Size is the font size in points at 72 DPI.
	Size float64
	// Margin is the distance in pixels between the text and the image
	// border.
	Margin float64
	// Foreground and Background are the text and box colors.
	Foreground color.Color
	Background color.Color
}

// DefaultOpts is small enough to fit a line of text on a 320x240 frame.
var DefaultOpts = Opts{
	Size:       10,
	Margin:     2,
	Foreground: color.White,
	Background: color.RGBA{0, 0, 0, 0xA0},
}

var (
	fontOnce sync.Once
	regular  *truetype.Font
	fontErr  error
)

func face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		regular, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	return truetype.NewFace(regular, &truetype.Options{Size: size}), nil
}

// Caption returns a copy of src with text drawn in a box along its bottom
// edge. src is not modified.
func Caption(src image.Image, text string, opts *Opts) (image.Image, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	f, err := face(opts.Size)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dc := gg.NewContextForImage(src)
	dc.SetFontFace(f)
	_, h := dc.MeasureString(text)
	w := float64(dc.Width())
	y := float64(dc.Height()) - h - 2*opts.Margin

	dc.SetColor(opts.Background)
	dc.DrawRectangle(0, y, w, h+2*opts.Margin)
	dc.Fill()

	dc.SetColor(opts.Foreground)
	dc.DrawStringAnchored(text, opts.Margin, y+opts.Margin, 0, 1)
	return dc.Image(), nil
}
