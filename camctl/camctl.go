// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package camctl drives the FPGA camera controller that streams pixels from
// the TRDB-D5M into a memory arena.
//
// The controller exposes five 32 bit registers on the Avalon bus, four
// bytes apart:
//
//	0x00 reset     write-only
//	0x04 address   read-write, destination of the next frame
//	0x08 size      read-write, frame length in 32 bit words
//	0x0C ready     read-only, bit 0 set once the frame is written
//	0x10 trigger   read-write, bit 0
//
// Frames are 320x240 RGB565 pixels stored as consecutive slots of SlotBytes
// bytes.
package camctl

import (
	"fmt"
)

// Frame geometry written by the controller.
const (
	FrameWidth    = 320
	FrameHeight   = 240
	BytesPerPixel = 2
	// SlotBytes is the size of one frame in the arena.
	SlotBytes = FrameWidth * FrameHeight * BytesPerPixel
	// SlotWords is the value of the size register: the frame length in
	// 32 bit bus words.
	SlotWords = SlotBytes / 4
)

// Controller is the register interface of the camera controller.
type Controller interface {
	// SetAddress sets the destination of the next frame.
	SetAddress(addr uint32) error
	Address() (uint32, error)
	// SetSize sets the frame length in 32 bit words.
	SetSize(words uint32) error
	Size() (uint32, error)
	// SetTrigger sets the trigger flag. Clearing it arms the controller for
	// the next frame sent by the sensor.
	SetTrigger(on bool) error
	Trigger() (bool, error)
	// Ready reports whether the last armed frame was fully written.
	Ready() (bool, error)
}

// Init sets the arena address and the slot size.
func Init(c Controller, addr uint32) error {
	if err := c.SetAddress(addr); err != nil {
		return fmt.Errorf("camctl: %w", err)
	}
	if err := c.SetSize(SlotWords); err != nil {
		return fmt.Errorf("camctl: %w", err)
	}
	return nil
}

// Snapshot is a copy of the controller registers.
type Snapshot struct {
	Address uint32
	Size    uint32
	Ready   bool
	Trigger bool
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("base:\t%08X\nsize:\t%08X\nready:\t%08X\ntrigger:\t%08X\n",
		s.Address, s.Size, b2u(s.Ready), b2u(s.Trigger))
}

// Read returns the current register values.
func Read(c Controller) (Snapshot, error) {
	var s Snapshot
	var err error
	if s.Address, err = c.Address(); err != nil {
		return s, err
	}
	if s.Size, err = c.Size(); err != nil {
		return s, err
	}
	if s.Ready, err = c.Ready(); err != nil {
		return s, err
	}
	s.Trigger, err = c.Trigger()
	return s, err
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
