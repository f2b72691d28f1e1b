// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package camctl

import (
	"errors"
	"fmt"
	"sync/atomic"

	"periph.io/x/host/v3/pmem"
)

// regs is the register block as laid out in physical memory. The reset
// register is never written; the controller comes out of FPGA
// configuration ready to use.
type regs struct {
	reset   uint32
	address uint32
	size    uint32
	ready   uint32
	trigger uint32
}

// Dev is a controller reached through /dev/mem. Register accesses cannot
// fail. They use sync/atomic so that polling always reaches the hardware.
type Dev struct {
	base uint64
	r    *regs
}

// Map maps the controller register block at the physical address base.
func Map(base uint64) (*Dev, error) {
	d := &Dev{base: base}
	if err := pmem.MapAsPOD(base, &d.r); err != nil {
		return nil, fmt.Errorf("camctl: mapping registers at %#x: %w", base, err)
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("camctl@%#x", d.base)
}

// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	return d.SetTrigger(false)
}

// SetAddress implements Controller.
func (d *Dev) SetAddress(addr uint32) error {
	atomic.StoreUint32(&d.r.address, addr)
	return nil
}

// Address implements Controller.
func (d *Dev) Address() (uint32, error) {
	return atomic.LoadUint32(&d.r.address), nil
}

// SetSize implements Controller.
func (d *Dev) SetSize(words uint32) error {
	atomic.StoreUint32(&d.r.size, words)
	return nil
}

// Size implements Controller.
func (d *Dev) Size() (uint32, error) {
	return atomic.LoadUint32(&d.r.size), nil
}

// SetTrigger implements Controller.
func (d *Dev) SetTrigger(on bool) error {
	atomic.StoreUint32(&d.r.trigger, b2u(on))
	return nil
}

// Trigger implements Controller.
func (d *Dev) Trigger() (bool, error) {
	return atomic.LoadUint32(&d.r.trigger)&1 != 0, nil
}

// Ready implements Controller.
func (d *Dev) Ready() (bool, error) {
	return atomic.LoadUint32(&d.r.ready)&1 != 0, nil
}

// Arena is the memory the controller writes frames to.
type Arena struct {
	b    []byte
	view *pmem.View
}

// MapArena maps n slots of physical memory starting at base.
func MapArena(base uint64, n int) (*Arena, error) {
	if n <= 0 {
		return nil, errors.New("camctl: arena needs at least one slot")
	}
	v, err := pmem.Map(base, n*SlotBytes)
	if err != nil {
		return nil, fmt.Errorf("camctl: mapping arena at %#x: %w", base, err)
	}
	return &Arena{b: v.Bytes(), view: v}, nil
}

// NewArena wraps memory that is already accessible, e.g. a copy of the
// arena read from a file.
func NewArena(b []byte) *Arena {
	return &Arena{b: b}
}

// Bytes returns the whole arena.
func (a *Arena) Bytes() []byte {
	return a.b
}

// Slots returns the number of complete slots in the arena.
func (a *Arena) Slots() int {
	return len(a.b) / SlotBytes
}

// Close unmaps the arena if it was mapped by MapArena.
func (a *Arena) Close() error {
	if a.view == nil {
		return nil
	}
	err := a.view.Close()
	a.view = nil
	a.b = nil
	return err
}

var _ Controller = &Dev{}
