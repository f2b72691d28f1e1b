// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package d5m is a container for the TRDB-D5M camera packages.
//
// trdbd5m configures the sensor over I²C, camctl drives the frame buffer
// controller, capture grabs frames and rgb565 decodes them. The command
// cmd/d5mcap ties them together.
package d5m
