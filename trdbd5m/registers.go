// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trdbd5m

import "fmt"

// Reg is the 8 bit address of a sensor register.
type Reg uint8

// Registers used by this driver. Addresses are from the MT9P031 datasheet
// that ships with the TRDB-D5M module.
const (
	RegRowSize      Reg = 0x03
	RegColumnSize   Reg = 0x04
	RegShutterWidth Reg = 0x09
	RegRestart      Reg = 0x0B
	RegReset        Reg = 0x0D
	RegReadMode1    Reg = 0x1E
	RegReadMode2    Reg = 0x20
	RegRowAddress   Reg = 0x22
	RegColAddress   Reg = 0x23
	RegGreen1Gain   Reg = 0x2B
	RegBlueGain     Reg = 0x2C
	RegRedGain      Reg = 0x2D
	RegGreen2Gain   Reg = 0x2E
)

func (r Reg) String() string {
	return fmt.Sprintf("0x%02X", uint8(r))
}

// Field is a logical field of a sensor register. Partial fields sharing a
// register must have disjoint masks. A field whose mask is 0xFFFF owns the
// whole register and is written without reading it first.
type Field struct {
	Name    string
	Reg     Reg
	Mask    uint16
	Default uint16
}

// Full reports whether the field covers all 16 bits of its register.
func (f Field) Full() bool {
	return f.Mask == 0xFFFF
}

func (f Field) String() string {
	return fmt.Sprintf("%s(%s&%04X)", f.Name, f.Reg, f.Mask)
}

const (
	rowBinMask  = 0x0030
	rowSkipMask = 0x0007
	colBinMask  = 0x0030
	colSkipMask = 0x0007

	restartMask = 0x0001
	triggerMask = 0x0004
)

// Fields sharing a register must not overlap. These fail to compile
// otherwise.
const (
	_ uint16 = -(rowBinMask & rowSkipMask)
	_ uint16 = -(colBinMask & colSkipMask)
	_ uint16 = -(restartMask & triggerMask)
)

// The register catalog. Default holds the power-on value of the whole
// register the field lives in.
var (
	FrameWidth  = Field{Name: "width", Reg: RegColumnSize, Mask: 0xFFFF, Default: 0x0A1F}
	FrameHeight = Field{Name: "height", Reg: RegRowSize, Mask: 0xFFFF, Default: 0x0797}
	Shutter     = Field{Name: "shutter", Reg: RegShutterWidth, Mask: 0xFFFF, Default: 0x0797}
	Mirror      = Field{Name: "mirror", Reg: RegReadMode2, Mask: 0xC000, Default: 0x0040}
	ReadMode    = Field{Name: "read", Reg: RegReadMode1, Mask: 0xFFFF, Default: 0x4006}
	Snapshot    = Field{Name: "snapshot", Reg: RegReadMode1, Mask: 0x0100, Default: 0x4006}
	RowBin      = Field{Name: "row-bin", Reg: RegRowAddress, Mask: rowBinMask, Default: 0x0000}
	RowSkip     = Field{Name: "row-skip", Reg: RegRowAddress, Mask: rowSkipMask, Default: 0x0000}
	ColBin      = Field{Name: "col-bin", Reg: RegColAddress, Mask: colBinMask, Default: 0x0000}
	ColSkip     = Field{Name: "col-skip", Reg: RegColAddress, Mask: colSkipMask, Default: 0x0000}
	RedGain     = Field{Name: "red-gain", Reg: RegRedGain, Mask: 0x003F, Default: 0x0008}
	BlueGain    = Field{Name: "blue-gain", Reg: RegBlueGain, Mask: 0x003F, Default: 0x0008}
	Green1Gain  = Field{Name: "green1-gain", Reg: RegGreen1Gain, Mask: 0x003F, Default: 0x0008}
	Green2Gain  = Field{Name: "green2-gain", Reg: RegGreen2Gain, Mask: 0x003F, Default: 0x0008}
	Restart     = Field{Name: "restart", Reg: RegRestart, Mask: restartMask}
	Trigger     = Field{Name: "trigger", Reg: RegRestart, Mask: triggerMask}
	ResetField  = Field{Name: "reset", Reg: RegReset, Mask: 0xFFFF, Default: resetDeassert}
)

const (
	resetAssert   uint16 = 0x0051
	resetDeassert uint16 = 0x0050
)

// Catalog lists every field known to the driver.
var Catalog = []Field{
	FrameWidth, FrameHeight, Shutter, Mirror, ReadMode, Snapshot,
	RowBin, RowSkip, ColBin, ColSkip,
	RedGain, BlueGain, Green1Gain, Green2Gain,
	Restart, Trigger, ResetField,
}
