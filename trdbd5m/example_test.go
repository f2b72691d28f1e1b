// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trdbd5m_test

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/d5m/trdbd5m"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	d, err := trdbd5m.NewI2C(b, &trdbd5m.DefaultOpts)
	if err != nil {
		log.Fatal(err)
	}
	if err := d.Reset(); err != nil {
		log.Fatal(err)
	}
	cfg := trdbd5m.DefaultConfig
	cfg.Shutter = 0x0300
	if err := d.Configure(&cfg); err != nil {
		log.Fatal(err)
	}
	st := d.Dump()
	fmt.Print(st.String())
}
