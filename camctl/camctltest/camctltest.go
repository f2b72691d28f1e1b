// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package camctltest implements a fake camera controller.
package camctltest

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInjected is returned by operations selected by Controller.Fail.
var ErrInjected = errors.New("camctltest: injected failure")

// Event is one register access on the Controller.
type Event struct {
	Op    string
	Value uint32
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%d)", e.Op, e.Value)
}

// Controller emulates the camera controller registers.
//
// Clearing the trigger flag arms a capture; Ready then reports false for
// ReadyAfter polls and true afterward. A controller that was never armed is
// not ready.
type Controller struct {
	// ReadyAfter is the number of Ready calls that return false after the
	// controller is armed.
	ReadyAfter int
	// Stuck keeps the ready flag cleared forever.
	Stuck bool
	// Fail, if set, is called with each event. Returning true makes the
	// access fail with ErrInjected.
	Fail func(e Event) bool
	// Hook, if set, is called with each event that did not fail.
	Hook func(e Event)

	mu      sync.Mutex
	address uint32
	size    uint32
	trigger bool
	armed   bool
	polls   int
	events  []Event
}

func (c *Controller) String() string {
	return "camctltest"
}

// SetAddress implements camctl.Controller.
func (c *Controller) SetAddress(addr uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("address", addr); err != nil {
		return err
	}
	c.address = addr
	return nil
}

// Address implements camctl.Controller.
func (c *Controller) Address() (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address, nil
}

// SetSize implements camctl.Controller.
func (c *Controller) SetSize(words uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("size", words); err != nil {
		return err
	}
	c.size = words
	return nil
}

// Size implements camctl.Controller.
func (c *Controller) Size() (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size, nil
}

// SetTrigger implements camctl.Controller.
func (c *Controller) SetTrigger(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := uint32(0)
	if on {
		v = 1
	}
	if err := c.record("trigger", v); err != nil {
		return err
	}
	c.trigger = on
	if !on {
		c.armed = true
		c.polls = 0
	}
	return nil
}

// Trigger implements camctl.Controller.
func (c *Controller) Trigger() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trigger, nil
}

// Ready implements camctl.Controller.
func (c *Controller) Ready() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ready := c.armed && !c.Stuck && c.polls >= c.ReadyAfter
	c.polls++
	v := uint32(0)
	if ready {
		v = 1
	}
	if err := c.record("ready", v); err != nil {
		return false, err
	}
	return ready, nil
}

// Events returns the accesses seen so far.
func (c *Controller) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// Count returns the number of successful accesses of the given kind.
func (c *Controller) Count(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Op == op {
			n++
		}
	}
	return n
}

func (c *Controller) record(op string, v uint32) error {
	e := Event{Op: op, Value: v}
	if c.Fail != nil && c.Fail(e) {
		return ErrInjected
	}
	c.events = append(c.events, e)
	if c.Hook != nil {
		c.Hook(e)
	}
	return nil
}
