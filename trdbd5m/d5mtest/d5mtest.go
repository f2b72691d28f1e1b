// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package d5mtest implements a fake TRDB-D5M register file that can be used
// as an i2c.Bus in tests.
package d5mtest

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrInjected is returned by Tx for transfers selected by Sensor.Fail.
var ErrInjected = errors.New("d5mtest: injected bus failure")

// Op is one register transfer seen by the Sensor.
type Op struct {
	Write  bool
	Reg    uint8
	Value  uint16
	Failed bool
}

func (o Op) String() string {
	s := fmt.Sprintf("R %02X=%04X", o.Reg, o.Value)
	if o.Write {
		s = fmt.Sprintf("W %02X=%04X", o.Reg, o.Value)
	}
	if o.Failed {
		s += " (failed)"
	}
	return s
}

const regReset = 0x0D

// PowerOn is the register file of the sensor after a reset, restricted to
// the registers the driver uses.
var PowerOn = map[uint8]uint16{
	0x03: 0x0797, // row size
	0x04: 0x0A1F, // column size
	0x09: 0x0797, // shutter width
	0x0B: 0x0000, // restart
	0x0D: 0x0050, // reset
	0x1E: 0x4006, // read mode 1
	0x20: 0x0040, // read mode 2
	0x22: 0x0000, // row address mode
	0x23: 0x0000, // column address mode
	0x2B: 0x0008, // green1 gain
	0x2C: 0x0008, // blue gain
	0x2D: 0x0008, // red gain
	0x2E: 0x0008, // green2 gain
}

// Sensor emulates the sensor register file on an I²C bus.
//
// Registers missing from the initial set read back as zero. Setting bit 0 of
// the reset register (0x0D) reloads the PowerOn values, as the sensor does.
type Sensor struct {
	Addr uint16

	// Fail, if set, is called before each transfer with its index (counting
	// from zero) and the transfer itself. Returning true makes the transfer
	// fail with ErrInjected without changing the register file.
	Fail func(n int, op Op) bool

	mu   sync.Mutex
	regs map[uint8]uint16
	ops  []Op
}

// NewPowerOn returns a Sensor at addr holding the PowerOn register values.
func NewPowerOn(addr uint16) *Sensor {
	return New(addr, PowerOn)
}

// New returns a Sensor at addr holding the given register values.
func New(addr uint16, regs map[uint8]uint16) *Sensor {
	s := &Sensor{Addr: addr, regs: map[uint8]uint16{}}
	for k, v := range regs {
		s.regs[k] = v
	}
	return s
}

func (s *Sensor) String() string {
	return "d5mtest"
}

// SetSpeed implements i2c.Bus.
func (s *Sensor) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx implements i2c.Bus. A write of one byte followed by a two byte read is
// a register read; a write of three bytes is a register write.
func (s *Sensor) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr != s.Addr {
		return fmt.Errorf("d5mtest: no device at address %#x", addr)
	}
	var op Op
	switch {
	case len(w) == 1 && len(r) == 2:
		op = Op{Reg: w[0], Value: s.regs[w[0]]}
	case len(w) == 3 && len(r) == 0:
		op = Op{Write: true, Reg: w[0], Value: uint16(w[1])<<8 | uint16(w[2])}
	default:
		return fmt.Errorf("d5mtest: unexpected transfer w=%#v r=%d", w, len(r))
	}
	if s.Fail != nil && s.Fail(len(s.ops), op) {
		op.Failed = true
		s.ops = append(s.ops, op)
		return ErrInjected
	}
	s.ops = append(s.ops, op)
	if op.Write {
		if op.Reg == regReset && op.Value&1 != 0 {
			for k, v := range PowerOn {
				s.regs[k] = v
			}
		}
		s.regs[op.Reg] = op.Value
		return nil
	}
	r[0] = byte(op.Value >> 8)
	r[1] = byte(op.Value)
	return nil
}

// Reg returns the current value of a register.
func (s *Sensor) Reg(reg uint8) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[reg]
}

// SetReg changes a register without recording a transfer.
func (s *Sensor) SetReg(reg uint8, v uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[reg] = v
}

// Ops returns the transfers seen so far, including failed ones.
func (s *Sensor) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Op(nil), s.ops...)
}

// Writes returns the successful register writes seen so far.
func (s *Sensor) Writes() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Op
	for _, op := range s.ops {
		if op.Write && !op.Failed {
			out = append(out, op)
		}
	}
	return out
}

// ResetOps forgets the recorded transfers.
func (s *Sensor) ResetOps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
}

var _ i2c.Bus = &Sensor{}
