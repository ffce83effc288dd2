// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package spi9 implements the 3-wire serial interface of display controllers
// like the ST7789, where the D/CX bit is sent in-band in front of each byte.
//
// Every byte goes on the wire as a 9 bits word, MSB first: the D/CX bit (0 for
// a command, 1 for data) followed by the 8 bits of the byte. Chip select is
// asserted for the duration of the word.
//
// The words are serialized by a Sequencer. On a RP2040, this is a PIO state
// machine running Program. Bitbang is a Sequencer that drives the lines with
// plain GPIOs, handy on hosts without a serial engine.
package spi9
