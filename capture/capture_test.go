// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/GermanBionicSystems/d5m/camctl/camctltest"
	"github.com/GermanBionicSystems/d5m/trdbd5m"
	"github.com/GermanBionicSystems/d5m/trdbd5m/d5mtest"
)

// rig wires a sensor and a controller to a single event log.
type rig struct {
	sensor *d5mtest.Sensor
	ctrl   *camctltest.Controller
	log    []string
}

func newRig(t *testing.T, readyAfter int) (*rig, *Session) {
	t.Helper()
	r := &rig{
		sensor: d5mtest.NewPowerOn(trdbd5m.DefaultAddr),
		ctrl:   &camctltest.Controller{ReadyAfter: readyAfter},
	}
	r.sensor.Fail = func(n int, op d5mtest.Op) bool {
		if op.Write {
			r.log = append(r.log, op.String())
		}
		return false
	}
	r.ctrl.Hook = func(e camctltest.Event) {
		if e.Op != "ready" {
			r.log = append(r.log, e.String())
		}
	}
	d, err := trdbd5m.NewI2C(r.sensor, nil)
	if err != nil {
		t.Fatal(err)
	}
	return r, &Session{Sensor: d, Ctrl: r.ctrl}
}

func TestSlotIndex(t *testing.T) {
	for _, tc := range []struct {
		slot SlotIndex
		want uint32
	}{{0, 0}, {1, 153600}, {2, 307200}, {3, 460800}} {
		if got := tc.slot.Offset(); got != tc.want {
			t.Errorf("SlotIndex(%d).Offset() = %d, want %d", tc.slot, got, tc.want)
		}
	}
}

func TestTriggerOrder(t *testing.T) {
	r, s := newRig(t, 0)
	if err := s.Trigger(); err != nil {
		t.Fatal(err)
	}
	want := []string{"trigger(0)", "W 0B=0004", "W 0B=0000"}
	if diff := cmp.Diff(r.log, want); diff != "" {
		t.Errorf("Trigger() (-got +want):\n%s", diff)
	}
}

func TestTriggerFailure(t *testing.T) {
	r, s := newRig(t, 0)
	r.ctrl.Fail = func(e camctltest.Event) bool { return e.Op == "trigger" }
	if err := s.Trigger(); !errors.Is(err, camctltest.ErrInjected) {
		t.Fatalf("Trigger() = %v", err)
	}
	if len(r.sensor.Ops()) != 0 {
		t.Error("sensor must not be touched when arming fails")
	}

	r, s = newRig(t, 0)
	r.sensor.Fail = func(n int, op d5mtest.Op) bool { return op.Write && op.Value == 0 }
	err := s.Trigger()
	var be *trdbd5m.BusError
	if !errors.As(err, &be) {
		t.Fatalf("Trigger() = %v, want *trdbd5m.BusError", err)
	}
}

func TestCapture(t *testing.T) {
	r, s := newRig(t, 5)
	if err := s.Capture(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if got := r.ctrl.Count("ready"); got != 6 {
		t.Errorf("polled %d times, want 6", got)
	}
	if a, _ := r.ctrl.Address(); a != 307200 {
		t.Errorf("address = %d", a)
	}
}

func TestSequence(t *testing.T) {
	r, s := newRig(t, 3)
	s.Base = 0x1000
	var polls []int
	r.ctrl.Hook = func(e camctltest.Event) {
		switch e.Op {
		case "address":
			r.log = append(r.log, e.String())
			polls = append(polls, 0)
		case "ready":
			polls[len(polls)-1]++
			if e.Value == 1 {
				r.log = append(r.log, "ready")
			}
		default:
			r.log = append(r.log, e.String())
		}
	}
	if err := s.Sequence(context.Background(), []SlotIndex{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	capture := func(addr string) []string {
		return []string{addr, "trigger(0)", "W 0B=0004", "W 0B=0000"}
	}
	var want []string
	want = append(want, capture("address(4096)")...)
	want = append(want, "ready")
	want = append(want, capture("address(157696)")...)
	want = append(want, "ready")
	want = append(want, capture("address(311296)")...)
	want = append(want, "ready")
	want = append(want, capture("address(464896)")...)
	if diff := cmp.Diff(r.log, want); diff != "" {
		t.Errorf("Sequence() (-got +want):\n%s", diff)
	}
	// Four target/trigger pairs, three of them awaited.
	if diff := cmp.Diff(polls, []int{4, 4, 4, 0}); diff != "" {
		t.Errorf("polls per slot (-got +want):\n%s", diff)
	}
}

func TestLoop(t *testing.T) {
	r, s := newRig(t, 0)
	if err := s.Loop(context.Background(), []SlotIndex{0, 1, 2}, 10); err != nil {
		t.Fatal(err)
	}
	if got := r.ctrl.Count("address"); got != 31 {
		t.Errorf("%d captures, want 31", got)
	}
	if got := r.ctrl.Count("ready"); got != 30 {
		t.Errorf("%d polls, want 30", got)
	}
	if err := s.Loop(context.Background(), nil, 1); !errors.Is(err, ErrNoSlots) {
		t.Errorf("Loop() = %v", err)
	}
}

func TestCaptureTimeout(t *testing.T) {
	r, s := newRig(t, 0)
	r.ctrl.Stuck = true
	now := time.Unix(0, 0)
	var slept []time.Duration
	s.Poller = Poller{
		Interval:    time.Millisecond,
		MaxInterval: 8 * time.Millisecond,
		Timeout:     50 * time.Millisecond,
		Now:         func() time.Time { return now },
		Sleep: func(d time.Duration) {
			slept = append(slept, d)
			now = now.Add(d)
		},
	}
	err := s.Capture(context.Background(), 0)
	if !errors.Is(err, ErrCaptureTimeout) {
		t.Fatalf("Capture() = %v, want ErrCaptureTimeout", err)
	}
	want := []time.Duration{1, 2, 4, 8, 8, 8, 8, 8, 8}
	for i := range want {
		want[i] *= time.Millisecond
	}
	if diff := cmp.Diff(slept, want); diff != "" {
		t.Errorf("backoff (-got +want):\n%s", diff)
	}
}

func TestCaptureCancel(t *testing.T) {
	r, s := newRig(t, 0)
	r.ctrl.Stuck = true
	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	r.ctrl.Hook = func(e camctltest.Event) {
		if e.Op == "ready" {
			if n++; n == 100 {
				cancel()
			}
		}
	}
	if err := s.Capture(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("Capture() = %v", err)
	}
}

func TestPollerError(t *testing.T) {
	var p Poller
	boom := errors.New("boom")
	err := p.Wait(context.Background(), func() (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Wait() = %v", err)
	}
}
