// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trdbd5m

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the 7 bit I²C address of the sensor. The module
// documentation lists it as 0xBA, which is the same address shifted left
// with the write bit appended.
const DefaultAddr uint16 = 0x5D

// DebugF the debug function type.
type DebugF func(string, ...interface{})

func noop(string, ...interface{}) {}

// Opts holds the bus configuration of the sensor.
type Opts struct {
	// Addr is the I²C address of the sensor.
	Addr uint16
	// Speed, if not zero, is applied to the bus when the device is opened.
	Speed physic.Frequency
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{Addr: DefaultAddr}

// State is the configuration state of the sensor as tracked by Dev.
type State int

const (
	// StateUninitialized is the state before a successful Reset or after any
	// failed Reset or Restore.
	StateUninitialized State = iota
	// StateReset means the register file is at its power-on values.
	StateReset
	// StateConfigured means Configure completed.
	StateConfigured
	// StateRestored means Restore completed. A new Reset is required before
	// the sensor can be configured again.
	StateRestored
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReset:
		return "Reset"
	case StateConfigured:
		return "Configured"
	case StateRestored:
		return "Restored"
	default:
		return strconv.Itoa(int(s))
	}
}

var (
	// ErrNotReset is returned by Configure when the sensor was not reset
	// first.
	ErrNotReset = errors.New("trdbd5m: sensor must be reset before it is configured")
	// ErrNotConfigured is returned by Restore when the sensor is not in the
	// configured state.
	ErrNotConfigured = errors.New("trdbd5m: sensor is not configured")
)

// BusError is returned when a register transfer fails on the bus.
type BusError struct {
	Op  string
	Reg Reg
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("trdbd5m: %s register %s: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// ConfigError is returned when a step of Reset, Configure, Restore or Restart
// fails. The sensor is then in an unknown state.
type ConfigError struct {
	Op    string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("trdbd5m: unable to %s sensor at %s: %v", e.Op, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Dev is a handle to a TRDB-D5M sensor.
//
// All register accesses go through the same mutex, so a masked write is
// never interleaved with another access made through the same Dev.
type Dev struct {
	d     *i2c.Dev
	c     mmr.Dev8
	debug DebugF

	mu    sync.Mutex
	state State
}

// NewI2C returns a handle to a TRDB-D5M sensor on the bus. The sensor is not
// touched; call Reset then Configure before capturing.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}
	if opts.Speed != 0 {
		if err := b.SetSpeed(opts.Speed); err != nil {
			return nil, fmt.Errorf("trdbd5m: %w", err)
		}
	}
	d := &i2c.Dev{Bus: b, Addr: addr}
	return &Dev{
		d:     d,
		c:     mmr.Dev8{Conn: d, Order: binary.BigEndian},
		debug: noop,
	}, nil
}

// EnableDebug Sets the debugging output using the local print function.
func (d *Dev) EnableDebug(f DebugF) {
	if f == nil {
		f = noop
	}
	d.debug = f
}

func (d *Dev) String() string {
	return fmt.Sprintf("TRDB-D5M{%s}", d.d)
}

// Halt implements conn.Resource. The sensor keeps its configuration.
func (d *Dev) Halt() error {
	return nil
}

// State returns the configuration state.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// ReadReg reads a 16 bit register. The sensor sends the most significant
// byte first.
func (d *Dev) ReadReg(r Reg) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readReg(r)
}

// WriteReg writes a 16 bit register, replacing all of its bits.
func (d *Dev) WriteReg(r Reg, v uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeReg(r, v)
}

// WriteMasked replaces the bits of the register selected by mask with the
// matching bits of v. The other bits keep the value read back just before
// the write.
func (d *Dev) WriteMasked(r Reg, v, mask uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeMasked(r, v, mask)
}

// ReadField returns the bits of the field, in place.
func (d *Dev) ReadField(f Field) (uint16, error) {
	v, err := d.ReadReg(f.Reg)
	return v & f.Mask, err
}

// WriteField writes v to the field. A partial field is read back first so
// that the rest of the register is preserved.
func (d *Dev) WriteField(f Field, v uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeField(f, v)
}

func (d *Dev) readReg(r Reg) (uint16, error) {
	v, err := d.c.ReadUint16(uint8(r))
	if err != nil {
		return 0, &BusError{Op: "read", Reg: r, Err: err}
	}
	d.debug("read register %s value %04x", r, v)
	return v, nil
}

func (d *Dev) writeReg(r Reg, v uint16) error {
	d.debug("write register %s value %04x", r, v)
	if err := d.c.WriteUint16(uint8(r), v); err != nil {
		return &BusError{Op: "write", Reg: r, Err: err}
	}
	return nil
}

func (d *Dev) writeMasked(r Reg, v, mask uint16) error {
	d.debug("write masked %s, mask %04x, value %04x", r, mask, v)
	cur, err := d.readReg(r)
	if err != nil {
		return err
	}
	return d.writeReg(r, cur&^mask|v&mask)
}

func (d *Dev) writeField(f Field, v uint16) error {
	if f.Full() {
		return d.writeReg(f.Reg, v)
	}
	return d.writeMasked(f.Reg, v, f.Mask)
}

// Reset pulses the reset register: assert, then back to its default value.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = StateUninitialized
	for _, v := range []uint16{resetAssert, resetDeassert} {
		if err := d.writeReg(ResetField.Reg, v); err != nil {
			return &ConfigError{Op: "reset", Field: ResetField.Name, Err: err}
		}
	}
	d.state = StateReset
	return nil
}

// Restart aborts the current frame and starts a new one, keeping the
// register settings.
func (d *Dev) Restart() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeField(Restart, restartMask); err != nil {
		return &ConfigError{Op: "restart", Field: Restart.Name, Err: err}
	}
	return nil
}

// Configure writes cfg to the sensor. Geometry goes first, then the
// shutter, then the masked fields. The first failing write aborts the
// sequence and nothing is rolled back; the sensor then needs another
// Configure. Each step is idempotent.
//
// If cfg is nil, DefaultConfig is used.
func (d *Dev) Configure(cfg *Config) error {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateReset && d.state != StateConfigured {
		return ErrNotReset
	}
	d.state = StateReset
	for _, s := range cfg.steps() {
		if err := d.writeField(s.f, s.v); err != nil {
			return &ConfigError{Op: "configure", Field: s.f.Name, Err: err}
		}
	}
	d.state = StateConfigured
	return nil
}

// Restore writes back the power-on value of the geometry, binning,
// shutter, read mode and mirror registers. Whole registers are written.
func (d *Dev) Restore() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateConfigured {
		return ErrNotConfigured
	}
	for _, f := range restoreOrder {
		if err := d.writeReg(f.Reg, f.Default); err != nil {
			d.state = StateUninitialized
			return &ConfigError{Op: "restore", Field: f.Name, Err: err}
		}
	}
	d.state = StateRestored
	return nil
}

var restoreOrder = []Field{FrameWidth, FrameHeight, RowBin, ColBin, Shutter, ReadMode, Mirror}

// PulseTrigger starts a snapshot capture by setting then clearing the
// trigger bit. The module's TRIGGER pin does not work, so the register is
// used instead.
func (d *Dev) PulseTrigger() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeField(Trigger, triggerMask); err != nil {
		return err
	}
	return d.writeField(Trigger, 0)
}

// Word is a register value that may not be known.
type Word struct {
	Value uint16
	Valid bool
}

func (w Word) hex() string {
	if !w.Valid {
		return "????"
	}
	return fmt.Sprintf("%04X", w.Value)
}

func (w Word) dec() string {
	if !w.Valid {
		return "????"
	}
	return strconv.Itoa(int(w.Value))
}

// Status is a diagnostic read back of the main registers.
type Status struct {
	Width    Word
	Height   Word
	ReadMode Word
	Shutter  Word
	Mirror   Word
}

func (s *Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "width:\t%s\n", s.Width.dec())
	fmt.Fprintf(&b, "height:\t%s\n", s.Height.dec())
	fmt.Fprintf(&b, "read:\t%s\n", s.ReadMode.hex())
	fmt.Fprintf(&b, "shutter:\t%s\n", s.Shutter.hex())
	fmt.Fprintf(&b, "mirror:\t%s\n", s.Mirror.hex())
	return b.String()
}

// Dump reads back the main registers. A register that cannot be read is
// reported as not Valid; Dump itself never fails.
func (d *Dev) Dump() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	read := func(f Field) Word {
		v, err := d.readReg(f.Reg)
		if err != nil {
			d.debug("dump %s: %v", f.Name, err)
			return Word{}
		}
		return Word{Value: v, Valid: true}
	}
	return Status{
		Width:    read(FrameWidth),
		Height:   read(FrameHeight),
		ReadMode: read(ReadMode),
		Shutter:  read(Shutter),
		Mirror:   read(Mirror),
	}
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
