// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb565

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPixelRGB(t *testing.T) {
	for v := 0; v <= 0xFFFF; v++ {
		p := Pixel(v)
		r, g, b := p.RGB()
		if want := uint8(((v >> 11) & 0x1F) << 3); r != want {
			t.Fatalf("%04x: red %d, want %d", v, r, want)
		}
		if want := uint8(((v >> 5) & 0x3F) << 2); g != want {
			t.Fatalf("%04x: green %d, want %d", v, g, want)
		}
		if want := uint8((v & 0x1F) << 3); b != want {
			t.Fatalf("%04x: blue %d, want %d", v, b, want)
		}
	}
	for _, tc := range []struct {
		p       Pixel
		r, g, b uint8
	}{
		{0xF800, 248, 0, 0},
		{0x07E0, 0, 252, 0},
		{0x001F, 0, 0, 248},
		{0xFFFF, 248, 252, 248},
	} {
		if r, g, b := tc.p.RGB(); r != tc.r || g != tc.g || b != tc.b {
			t.Errorf("%04x: got %d,%d,%d", uint16(tc.p), r, g, b)
		}
	}
}

func TestZeroFrame(t *testing.T) {
	for _, tc := range []struct{ w, h int }{{1, 1}, {4, 3}, {320, 240}} {
		t.Run(fmt.Sprintf("%dx%d", tc.w, tc.h), func(t *testing.T) {
			img, err := Decode(make([]byte, 2*tc.w*tc.h), 0, tc.w, tc.h)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			n, err := img.WriteTo(&buf)
			if err != nil {
				t.Fatal(err)
			}
			header := fmt.Sprintf("P6\n%d %d\n255\n", tc.w, tc.h)
			want := append([]byte(header), make([]byte, 3*tc.w*tc.h)...)
			if !bytes.Equal(buf.Bytes(), want) {
				t.Errorf("WriteTo() wrote %d bytes, want %d", buf.Len(), len(want))
			}
			if n != int64(len(want)) {
				t.Errorf("WriteTo() = %d", n)
			}
		})
	}
}

func TestDecodeOrder(t *testing.T) {
	// Two columns of three rows, after a two byte prefix.
	src := []byte{0xAA, 0xAA}
	for _, p := range []uint16{0xF800, 0x07E0, 0x001F, 0x0000, 0xFFFF, 0x0821} {
		src = append(src, byte(p), byte(p>>8))
	}
	img, err := Decode(src, 2, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		248, 0, 0,
		0, 252, 0,
		0, 0, 248,
		0, 0, 0,
		248, 252, 248,
		8, 4, 8,
	}
	if diff := cmp.Diff(img.Pix, want); diff != "" {
		t.Errorf("Decode() (-got +want):\n%s", diff)
	}
	if got := img.At(1, 0); got != (color.RGBA{0, 252, 0, 255}) {
		t.Errorf("At(1, 0) = %v", got)
	}
	if got := img.At(5, 5); got != (color.RGBA{}) {
		t.Errorf("At(5, 5) = %v", got)
	}
}

func TestDecodeShort(t *testing.T) {
	if _, err := Decode(make([]byte, 11), 0, 2, 3); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Decode() = %v", err)
	}
	if _, err := Decode(make([]byte, 12), 2, 2, 3); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Decode() = %v", err)
	}
	if _, err := Decode(make([]byte, 4), 6, 1, 1); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Decode() past the end = %v", err)
	}
	for _, g := range []struct{ w, h int }{{math.MaxInt32, math.MaxInt32}, {1, math.MaxInt}, {math.MaxInt, 2}} {
		if _, err := Decode(make([]byte, 16), 0, g.w, g.h); !errors.Is(err, ErrShortBuffer) {
			t.Errorf("Decode(%dx%d) = %v", g.w, g.h, err)
		}
	}
	if _, err := Decode(nil, -1, 1, 1); err == nil {
		t.Error("negative offset should fail")
	}
}

type failWriter struct {
	after int
}

var errWrite = errors.New("disk full")

func (f *failWriter) Write(b []byte) (int, error) {
	if f.after < len(b) {
		n := f.after
		f.after = 0
		return n, errWrite
	}
	f.after -= len(b)
	return len(b), nil
}

func TestWriteToError(t *testing.T) {
	img, err := Decode(make([]byte, 8), 0, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, after := range []int{0, 5, 12} {
		if _, err := img.WriteTo(&failWriter{after: after}); !errors.Is(err, errWrite) {
			t.Errorf("after %d: WriteTo() = %v", after, err)
		}
	}
}
