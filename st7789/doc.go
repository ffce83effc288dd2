// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7789 controls a 16 bits color TFT panel driven by a Sitronix
// ST7789 controller, like the 240x240 panel of the Pimoroni PicoSystem.
//
// The controller has 240x320 pixels of RAM. Panels with a smaller glass only
// show a window of it; Dev keeps the visible size apart from the addressable
// grid so clipping is always done against the RAM.
//
// The driver talks to the controller through a Bus. NewSPI returns a Bus for
// the usual 4-wire SPI wiring (separate D/CX pin). The spi9 package provides
// a 3-wire Bus where the D/CX bit is sent in-band as a 9th bit.
//
// # Painting
//
// Dev implements display.Drawer and the TinyGo drivers.Displayer interface.
// Without a Framebuffer, paint requests are clipped and streamed to the panel
// immediately. With a Framebuffer, paint requests only update the in-memory
// mirror and Display() or Flush() push it to the panel.
//
// # Datasheet
//
// https://www.rhydolabz.com/documents/33/ST7789.pdf
package st7789
