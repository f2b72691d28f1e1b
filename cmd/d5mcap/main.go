// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// d5mcap configures a TRDB-D5M camera, captures frames into the frame
// buffer controller slots and saves one of them as an image.
//
// Without -ctrl and -arena it only configures the sensor and prints its
// registers. With -from it skips the hardware and decodes a raw arena dump.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/d5m/annotate"
	"github.com/GermanBionicSystems/d5m/camctl"
	"github.com/GermanBionicSystems/d5m/capture"
	"github.com/GermanBionicSystems/d5m/imagefile"
	"github.com/GermanBionicSystems/d5m/rgb565"
	"github.com/GermanBionicSystems/d5m/termview"
	"github.com/GermanBionicSystems/d5m/trdbd5m"
)

type options struct {
	bus     string
	addr    uint
	speed   physic.Frequency
	ctrl    uint64
	arena   uint64
	from    string
	slots   int
	rounds  int
	decode  int
	timeout time.Duration
	out     string
	quality int
	caption string
	preview bool
	restore bool
	verbose bool
}

func main() {
	var o options
	flag.StringVar(&o.bus, "bus", "", "I²C bus to use")
	flag.UintVar(&o.addr, "addr", uint(trdbd5m.DefaultAddr), "I²C address of the sensor")
	flag.Var(&o.speed, "speed", "I²C bus speed, e.g. 400kHz; left untouched if not set")
	flag.Uint64Var(&o.ctrl, "ctrl", 0, "physical address of the camera controller registers")
	flag.Uint64Var(&o.arena, "arena", 0, "physical address of the capture arena")
	flag.StringVar(&o.from, "from", "", "decode a raw arena dump instead of capturing")
	flag.IntVar(&o.slots, "slots", 3, "number of slots to capture into")
	flag.IntVar(&o.rounds, "rounds", 1, "number of times each slot is captured")
	flag.IntVar(&o.decode, "decode", 0, "slot to save")
	flag.DurationVar(&o.timeout, "timeout", 2*time.Second, "give up on a frame after this long; 0 waits forever")
	flag.StringVar(&o.out, "o", "image.ppm", "output file; the extension selects the format")
	flag.IntVar(&o.quality, "quality", 0, "JPEG quality, 1-100")
	flag.StringVar(&o.caption, "caption", "", "text stamped at the bottom of the image")
	flag.BoolVar(&o.preview, "preview", false, "print a thumbnail of the image to the terminal")
	flag.BoolVar(&o.restore, "restore", false, "restore the sensor defaults before exiting")
	flag.BoolVar(&o.verbose, "v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := mainImpl(ctx, &o); err != nil {
		log.Fatal(err)
	}
}

// maxSlots is the number of slots that fit in the 32 bit address space of
// the controller.
const maxSlots = (1 << 32) / camctl.SlotBytes

// check validates the flags before any hardware is touched.
func (o *options) check() error {
	if o.decode < 0 {
		return errors.New("-decode must not be negative")
	}
	if o.decode >= maxSlots {
		return fmt.Errorf("-decode %d is past the end of the address space", o.decode)
	}
	if o.from != "" {
		return nil
	}
	if o.slots <= 0 || o.rounds <= 0 {
		return errors.New("-slots and -rounds must be positive")
	}
	if o.decode >= o.slots {
		return fmt.Errorf("-decode %d is not one of the %d captured slots", o.decode, o.slots)
	}
	if (o.ctrl == 0) != (o.arena == 0) {
		return errors.New("-ctrl and -arena go together")
	}
	// The final fire and forget frame lands one slot past the last one.
	if o.slots >= maxSlots {
		return fmt.Errorf("-slots %d does not fit in 32 bit addresses", o.slots)
	}
	if o.arena >= 1<<32 {
		return errors.New("-arena must be a 32 bit address")
	}
	if end := o.arena + uint64(o.slots+1)*camctl.SlotBytes; end > 1<<32 {
		return fmt.Errorf("arena %#x with %d slots ends at %#x, past 32 bit addresses", o.arena, o.slots+1, end)
	}
	return nil
}

func mainImpl(ctx context.Context, o *options) error {
	if err := o.check(); err != nil {
		return err
	}
	if o.from != "" {
		b, err := os.ReadFile(o.from)
		if err != nil {
			return err
		}
		return save(camctl.NewArena(b), o)
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	b, err := i2creg.Open(o.bus)
	if err != nil {
		return err
	}
	defer b.Close()

	d, err := trdbd5m.NewI2C(b, &trdbd5m.Opts{Addr: uint16(o.addr), Speed: o.speed})
	if err != nil {
		return err
	}
	if o.verbose {
		d.EnableDebug(log.Printf)
	}
	if err := d.Reset(); err != nil {
		return err
	}
	if err := d.Configure(nil); err != nil {
		return err
	}
	if o.restore {
		defer func() {
			if err := d.Restore(); err != nil {
				log.Printf("%s: %v", d, err)
			}
		}()
	}
	st := d.Dump()
	fmt.Print(st.String())

	if o.ctrl == 0 {
		return nil
	}
	ctrl, err := camctl.Map(o.ctrl)
	if err != nil {
		return err
	}
	defer ctrl.Halt()
	arena, err := camctl.MapArena(o.arena, o.slots+1)
	if err != nil {
		return err
	}
	defer arena.Close()

	if err := camctl.Init(ctrl, uint32(o.arena)); err != nil {
		return err
	}
	if o.verbose {
		if s, err := camctl.Read(ctrl); err == nil {
			log.Printf("%s", s.String())
		}
	}
	s := capture.Session{
		Sensor: d,
		Ctrl:   ctrl,
		Base:   uint32(o.arena),
		Poller: capture.Poller{Timeout: o.timeout},
	}
	slots := make([]capture.SlotIndex, o.slots)
	for i := range slots {
		slots[i] = capture.SlotIndex(i)
	}
	start := time.Now()
	if err := s.Loop(ctx, slots, o.rounds); err != nil {
		return err
	}
	if o.verbose {
		log.Printf("captured %d frames in %s", o.slots*o.rounds, time.Since(start))
	}
	return save(arena, o)
}

func save(a *camctl.Arena, o *options) error {
	off := int(capture.SlotIndex(o.decode).Offset())
	frame, err := rgb565.Decode(a.Bytes(), off, camctl.FrameWidth, camctl.FrameHeight)
	if err != nil {
		return fmt.Errorf("slot %d of %d: %w", o.decode, a.Slots(), err)
	}
	var img image.Image = frame
	if o.caption != "" {
		if img, err = annotate.Caption(frame, o.caption, nil); err != nil {
			return err
		}
	}
	if err := imagefile.WriteFile(o.out, img, &imagefile.Options{JPEGQuality: o.quality}); err != nil {
		return err
	}
	if o.preview {
		v := termview.New(nil)
		if err := v.Show(img); err != nil {
			return err
		}
		return v.Halt()
	}
	return nil
}
