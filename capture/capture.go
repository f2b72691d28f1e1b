// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package capture coordinates the TRDB-D5M sensor and the camera controller
// to grab frames into arena slots.
//
// Each capture points the controller at a slot, arms it, pulses the sensor
// trigger and waits for the controller ready flag. Captures never overlap.
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/d5m/camctl"
)

// SlotIndex selects a slot of the arena. Slots are SlotBytes apart so an
// offset derived from a SlotIndex is always aligned.
type SlotIndex uint32

// Offset returns the byte offset of the slot in the arena.
func (s SlotIndex) Offset() uint32 {
	return uint32(s) * camctl.SlotBytes
}

// Sensor starts a frame on the sensor. It is implemented by *trdbd5m.Dev.
type Sensor interface {
	PulseTrigger() error
}

// Session drives captures. It must not be used concurrently.
type Session struct {
	Sensor Sensor
	Ctrl   camctl.Controller
	// Base is added to every slot offset written to the address register.
	Base uint32
	// Poller controls how AwaitReady watches the ready flag.
	Poller Poller
}

// ErrNoSlots is returned by Sequence and Loop when given no slot.
var ErrNoSlots = errors.New("capture: no slot to capture into")

// SetTarget points the controller at slot.
func (s *Session) SetTarget(slot SlotIndex) error {
	if err := s.Ctrl.SetAddress(s.Base + slot.Offset()); err != nil {
		return fmt.Errorf("capture: setting slot %d: %w", slot, err)
	}
	return nil
}

// Trigger arms the controller then pulses the sensor trigger bit. The
// controller stays armed if the sensor pulse fails.
func (s *Session) Trigger() error {
	if err := s.Ctrl.SetTrigger(false); err != nil {
		return fmt.Errorf("capture: arming controller: %w", err)
	}
	if err := s.Sensor.PulseTrigger(); err != nil {
		return fmt.Errorf("capture: triggering sensor: %w", err)
	}
	return nil
}

// AwaitReady blocks until the controller reports the frame written.
func (s *Session) AwaitReady(ctx context.Context) error {
	return s.Poller.Wait(ctx, s.Ctrl.Ready)
}

// Capture grabs one frame into slot.
func (s *Session) Capture(ctx context.Context, slot SlotIndex) error {
	if err := s.SetTarget(slot); err != nil {
		return err
	}
	if err := s.Trigger(); err != nil {
		return err
	}
	if err := s.AwaitReady(ctx); err != nil {
		return fmt.Errorf("capture: slot %d: %w", slot, err)
	}
	return nil
}

// FireAndForget points the controller at slot and triggers a frame without
// waiting for it. The content of slot is undefined afterward.
//
// The acquisition loop this package replicates ends with this call one
// slot past the last captured one. Its purpose was never documented and it
// is kept as is.
func (s *Session) FireAndForget(slot SlotIndex) error {
	if err := s.SetTarget(slot); err != nil {
		return err
	}
	return s.Trigger()
}

// Sequence captures into each slot in order, then calls FireAndForget on
// the slot following the last one.
func (s *Session) Sequence(ctx context.Context, slots []SlotIndex) error {
	return s.Loop(ctx, slots, 1)
}

// Loop is Sequence with the captures repeated rounds times before the
// final FireAndForget.
func (s *Session) Loop(ctx context.Context, slots []SlotIndex, rounds int) error {
	if len(slots) == 0 {
		return ErrNoSlots
	}
	for i := 0; i < rounds; i++ {
		for _, slot := range slots {
			if err := s.Capture(ctx, slot); err != nil {
				return err
			}
		}
	}
	return s.FireAndForget(slots[len(slots)-1] + 1)
}
