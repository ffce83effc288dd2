// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spi9

import (
	"errors"
	"fmt"
	"iter"
	"runtime"

	"github.com/GermanBionicSystems/picosystem/st7789"
)

// Sequencer serializes words pushed in its transmit FIFO.
//
// Words are left aligned: bit 31 is sent first. The RP2040 PIO state machine
// of tinygo.org/x/pio implements it.
type Sequencer interface {
	// IsTxFIFOFull returns true when TxPut would drop the word.
	IsTxFIFOFull() bool
	// TxPut queues a word without checking the FIFO level.
	TxPut(data uint32)
}

// dataBit is the D/CX bit of a data word.
const dataBit = 1 << 31

func commandWord(b byte) uint32 {
	return uint32(b) << 23
}

func dataWord(b byte) uint32 {
	return dataBit | uint32(b)<<23
}

// Dev sends command and data bytes as 9 bits words.
//
// Dev implements st7789.Bus.
type Dev struct {
	sm Sequencer
}

// New returns a Dev that pushes words to sm.
//
// sm must already run Program, or behave like it.
func New(sm Sequencer) (*Dev, error) {
	if sm == nil {
		return nil, errors.New("spi9: sequencer is required")
	}
	return &Dev{sm: sm}, nil
}

func (d *Dev) String() string {
	if s, ok := d.sm.(fmt.Stringer); ok {
		return "spi9{" + s.String() + "}"
	}
	return "spi9"
}

// WriteCommand queues b as a command byte.
//
// It waits for room in the FIFO, yielding the processor meanwhile.
func (d *Dev) WriteCommand(b byte) {
	d.put(commandWord(b))
}

// WriteData queues b as a data byte.
//
// It waits for room in the FIFO, yielding the processor meanwhile.
func (d *Dev) WriteData(b byte) {
	d.put(dataWord(b))
}

// TryWriteCommand queues b as a command byte if there is room in the FIFO.
//
// It returns false when the FIFO is full; nothing is queued then.
func (d *Dev) TryWriteCommand(b byte) bool {
	return d.tryPut(commandWord(b))
}

// TryWriteData queues b as a data byte if there is room in the FIFO.
//
// It returns false when the FIFO is full; nothing is queued then.
func (d *Dev) TryWriteData(b byte) bool {
	return d.tryPut(dataWord(b))
}

// SendCommands implements st7789.Bus.
func (d *Dev) SendCommands(cmds []byte) error {
	for _, c := range cmds {
		d.WriteCommand(c)
	}
	return d.err()
}

// SendData implements st7789.Bus.
func (d *Dev) SendData(data []byte) error {
	for _, b := range data {
		d.WriteData(b)
	}
	return d.err()
}

// SendData16 implements st7789.Bus. Each value is sent high byte first.
func (d *Dev) SendData16(data iter.Seq[uint16]) error {
	for v := range data {
		d.WriteData(byte(v >> 8))
		d.WriteData(byte(v))
	}
	return d.err()
}

func (d *Dev) put(w uint32) {
	for d.sm.IsTxFIFOFull() {
		runtime.Gosched()
	}
	d.sm.TxPut(w)
}

func (d *Dev) tryPut(w uint32) bool {
	if d.sm.IsTxFIFOFull() {
		return false
	}
	d.sm.TxPut(w)
	return true
}

// err returns the failure reported by the sequencer, if it can fail.
func (d *Dev) err() error {
	if e, ok := d.sm.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

var _ st7789.Bus = &Dev{}
