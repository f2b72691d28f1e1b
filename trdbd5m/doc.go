// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package trdbd5m controls the Terasic TRDB-D5M camera module, a 5
// megapixel MT9P031 CMOS sensor configured over I²C.
//
// Registers are 16 bits wide and sent most significant byte first. Fields
// that share a register with other settings are written with a
// read-modify-write so that the other bits are preserved.
//
// The driver covers reset, frame geometry, shutter width, mirroring,
// binning and skipping, per channel gain and the snapshot trigger. Pixel
// data does not go through I²C; it is written by the FPGA camera
// controller, see package camctl.
//
// # Datasheet
//
// https://www.terasic.com.tw/attachment/archive/281/TRDB_D5M_UserGuide.pdf
package trdbd5m
