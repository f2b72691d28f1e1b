// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package capture

import (
	"context"
	"errors"
	"time"
)

// ErrCaptureTimeout is returned when the controller does not report a
// frame within Poller.Timeout.
var ErrCaptureTimeout = errors.New("capture: timed out waiting for the frame")

// Poller waits for a condition by polling it.
//
// The zero value polls as fast as possible and never gives up, which is how
// the controller ready flag has to be watched when nothing else can run.
type Poller struct {
	// Interval is the pause between two polls. Zero busy-polls.
	Interval time.Duration
	// MaxInterval, if larger than Interval, makes the pause double after
	// each poll up to this value.
	MaxInterval time.Duration
	// Timeout, if not zero, bounds the total wait.
	Timeout time.Duration

	// Sleep and Now default to time.Sleep and time.Now.
	Sleep func(time.Duration)
	Now   func() time.Time
}

// Wait calls cond until it returns true or an error, the context is done
// or the timeout elapses.
func (p *Poller) Wait(ctx context.Context, cond func() (bool, error)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	interval := p.Interval
	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.Timeout > 0 && now().Sub(start) >= p.Timeout {
			return ErrCaptureTimeout
		}
		if interval > 0 {
			sleep(interval)
			if interval < p.MaxInterval {
				interval *= 2
				if interval > p.MaxInterval {
					interval = p.MaxInterval
				}
			}
		}
	}
}
