// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trdbd5m

// Config holds the operative register values written by Configure. Values
// of partial fields are given in place, e.g. RowBin is 0x0030 for 4x
// binning, and bits outside the field's mask are ignored.
type Config struct {
	// Width and Height are the raw column and row size registers, one less
	// than the number of pixels read out.
	Width  uint16
	Height uint16
	// Shutter is the shutter width in rows. Its range depends on Height.
	Shutter uint16
	// Mirror holds the row and column mirror bits of read mode 2.
	Mirror uint16
	// Snapshot sets read mode 1 to snapshot mode, waiting for a trigger
	// before each frame.
	Snapshot bool

	RowBin  uint16
	RowSkip uint16
	ColBin  uint16
	ColSkip uint16

	// Gain is the analog gain of the red, blue, green1 and green2 channels,
	// written in that order.
	Gain [4]uint16
}

// DefaultConfig reads out the full 2592x1944 array binned and skipped down
// to 320x240 frames, mirrored, in snapshot mode.
var DefaultConfig = Config{
	Width:    2559,
	Height:   1919,
	Shutter:  0x01DE,
	Mirror:   0xC000,
	Snapshot: true,
	RowBin:   0x0030,
	RowSkip:  0x0003,
	ColBin:   0x0030,
	ColSkip:  0x0003,
	Gain:     [4]uint16{0x003F, 0x003F, 0x003F, 0x003F},
}

type step struct {
	f Field
	v uint16
}

func (c *Config) steps() []step {
	var snap uint16
	if c.Snapshot {
		snap = Snapshot.Mask
	}
	return []step{
		{FrameWidth, c.Width},
		{FrameHeight, c.Height},
		{Shutter, c.Shutter},
		{Mirror, c.Mirror},
		{Snapshot, snap},
		{RowBin, c.RowBin},
		{RowSkip, c.RowSkip},
		{ColBin, c.ColBin},
		{ColSkip, c.ColSkip},
		{RedGain, c.Gain[0]},
		{BlueGain, c.Gain[1]},
		{Green1Gain, c.Gain[2]},
		{Green2Gain, c.Gain[3]},
	}
}
