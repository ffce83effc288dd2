// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spi9

import "fmt"

// Program is the PIO program shifting out 9 bits words.
//
//	.side_set 2            ; bit 0 is the clock, bit 1 is chip select
//	.wrap_target
//	bitloop:
//	    out pins, 1        side 0x0
//	    jmp !osre bitloop  side 0x1
//	    nop                side 0x0 [1] ; chip select back porch
//	public entry_point:
//	    pull ifempty       side 0x2 [1] ; idle with chip select high
//	.wrap
//
// Jump targets are relative to the start of the program; see Relocate.
var Program = []uint16{
	0x6001, // 0: out    pins, 1         side 0
	0x08e0, // 1: jmp    !osre, 0        side 1
	0xa142, // 2: nop                    side 0 [1]
	0x91e0, // 3: pull   ifempty block   side 2 [1]
}

// Program layout.
const (
	// ProgramEntryPoint is the first instruction to execute. It waits for a
	// word with chip select deasserted.
	ProgramEntryPoint = 3
	ProgramWrapTarget = 0
	ProgramWrap       = 3
	// ProgramSideSetBits is the number of side-set pins: the clock then chip
	// select.
	ProgramSideSetBits = 2
)

// WordBits is the number of bits shifted out per word.
const WordBits = 9

// Relocate returns Program with its jump targets offset, for loading it at
// offset in the instruction memory.
func Relocate(offset uint8) []uint16 {
	out := make([]uint16, len(Program))
	for i, instr := range Program {
		// JMP has the three top bits cleared.
		if instr&0xe000 == 0 {
			instr += uint16(offset)
		}
		out[i] = instr
	}
	return out
}

// PinRange is a run of consecutive GPIOs, starting at Base.
type PinRange struct {
	Base  uint8
	Count uint8
}

// MaxPins is the number of GPIOs a state machine can address.
const MaxPins = 32

// Config is the state machine configuration required by Program.
type Config struct {
	// Offset is where Program was loaded.
	Offset uint8
	// WrapTarget and Wrap are absolute instruction addresses.
	WrapTarget uint8
	Wrap       uint8
	// EntryPoint is the absolute address of the first instruction.
	EntryPoint  uint8
	SideSetBits uint8
	// OutBase and OutCount are the pins written by "out pins": the data line.
	OutBase  uint8
	OutCount uint8
	// SideSetBase is the clock; chip select is the next GPIO.
	SideSetBase uint8
	// OutputPins are set as outputs before the state machine is enabled, one
	// consecutive range at a time.
	OutputPins []PinRange
	// OutShiftRight is false to shift out the MSB first.
	OutShiftRight bool
	// AutoPull must be disabled: the program pulls on its own so chip select
	// is released between words.
	AutoPull      bool
	PullThreshold uint8
	// JoinTxFIFO merges the RX FIFO into the TX FIFO, doubling its depth.
	JoinTxFIFO bool
	// ClkDivInt and ClkDivFrac divide the system clock: one instruction per
	// divided cycle, two cycles per bit.
	ClkDivInt  uint16
	ClkDivFrac uint8
}

// DefaultConfig returns the configuration of Program loaded at offset, running
// at full speed on the given GPIOs.
//
// Side-set pins are consecutive so cs must be clk+1.
func DefaultConfig(offset, clk, sdo, cs uint8) (Config, error) {
	for _, p := range []uint8{clk, sdo, cs} {
		if p >= MaxPins {
			return Config{}, fmt.Errorf("spi9: invalid pin %d", p)
		}
	}
	if cs != clk+1 {
		return Config{}, fmt.Errorf("spi9: cs must follow clk, got clk=%d cs=%d", clk, cs)
	}
	if sdo == clk || sdo == cs {
		return Config{}, fmt.Errorf("spi9: sdo %d overlaps clk or cs", sdo)
	}
	outputs := []PinRange{{Base: clk, Count: 2}, {Base: sdo, Count: 1}}
	switch sdo {
	case clk - 1:
		outputs = []PinRange{{Base: sdo, Count: 3}}
	case cs + 1:
		outputs = []PinRange{{Base: clk, Count: 3}}
	}
	return Config{
		Offset:        offset,
		WrapTarget:    offset + ProgramWrapTarget,
		Wrap:          offset + ProgramWrap,
		EntryPoint:    offset + ProgramEntryPoint,
		SideSetBits:   ProgramSideSetBits,
		OutBase:       sdo,
		OutCount:      1,
		SideSetBase:   clk,
		OutputPins:    outputs,
		OutShiftRight: false,
		AutoPull:      false,
		PullThreshold: WordBits,
		JoinTxFIFO:    true,
		ClkDivInt:     1,
	}, nil
}
