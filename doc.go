// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package picosystem is a container for the display drivers of the Pimoroni
// PicoSystem.
//
// st7789 drives the 240x240 TFT panel, over 4-wire SPI or over the 3-wire
// 9 bits serial interface implemented in spi9. termview previews frames on a
// terminal.
package picosystem
