// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/GermanBionicSystems/d5m/camctl"
)

func TestCheck(t *testing.T) {
	valid := options{ctrl: 0xFF200000, arena: 0xC0000000, slots: 3, rounds: 10}
	if err := valid.check(); err != nil {
		t.Fatal(err)
	}
	// The last slot, including the trailing one, ends exactly at 4GiB.
	edge := options{ctrl: 1, arena: 1<<32 - 4*camctl.SlotBytes, slots: 3, rounds: 1}
	if err := edge.check(); err != nil {
		t.Errorf("check() = %v", err)
	}
	offline := options{from: "dump.raw", decode: 7}
	if err := offline.check(); err != nil {
		t.Errorf("check() = %v", err)
	}

	for name, o := range map[string]options{
		"negative decode":    {decode: -1, slots: 3, rounds: 1},
		"decode not a slot":  {decode: 3, slots: 3, rounds: 1},
		"decode too far":     {from: "dump.raw", decode: maxSlots},
		"no slot":            {rounds: 1},
		"no round":           {slots: 1},
		"ctrl without arena": {ctrl: 0xFF200000, slots: 1, rounds: 1},
		"arena not 32 bit":   {ctrl: 1, arena: 1 << 32, slots: 1, rounds: 1},
		"arena overflows":    {ctrl: 1, arena: 0xFFFF0000, slots: 1, rounds: 1},
		"trailing overflows": {ctrl: 1, arena: 1<<32 - 3*camctl.SlotBytes, slots: 3, rounds: 1},
		"too many slots":     {ctrl: 1, arena: 1, slots: maxSlots, rounds: 1},
	} {
		if err := o.check(); err == nil {
			t.Errorf("%s: check() succeeded", name)
		}
	}
}
