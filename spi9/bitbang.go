// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spi9

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Bitbang is a Sequencer toggling GPIOs with the waveform of Program.
//
// Words are sent synchronously by TxPut, so the FIFO is never full.
type Bitbang struct {
	clk, sdo, cs gpio.PinOut
	halfPeriod   time.Duration

	mu sync.Mutex
	// err is the first GPIO failure. Nothing is sent afterward.
	err error
}

// NewBitbang returns a Bitbang driving the clock on clk, the data on sdo and
// chip select on cs.
//
// f is the bit rate. Use 0 to toggle the lines as fast as the GPIO driver
// allows.
func NewBitbang(clk, sdo, cs gpio.PinOut, f physic.Frequency) (*Bitbang, error) {
	for _, p := range []gpio.PinOut{clk, sdo, cs} {
		if p == nil || p == gpio.INVALID {
			return nil, errors.New("spi9: clk, sdo and cs pins are required")
		}
	}
	b := &Bitbang{clk: clk, sdo: sdo, cs: cs}
	if f > 0 {
		b.halfPeriod = f.Period() / 2
	}
	// Idle: chip select deasserted, clock low.
	b.out(cs, gpio.High)
	b.out(clk, gpio.Low)
	if b.err != nil {
		return nil, b.err
	}
	return b, nil
}

func (b *Bitbang) String() string {
	return fmt.Sprintf("bitbang{%s, %s, %s}", b.clk, b.sdo, b.cs)
}

// IsTxFIFOFull implements Sequencer.
func (b *Bitbang) IsTxFIFOFull() bool {
	return false
}

// TxPut implements Sequencer.
//
// The 9 top bits of data are sent, MSB first. Data is set with the clock low
// and latched by the controller on the rising edge.
func (b *Bitbang) TxPut(data uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out(b.cs, gpio.Low)
	for range WordBits {
		b.out(b.sdo, data&(1<<31) != 0)
		b.out(b.clk, gpio.Low)
		b.wait()
		b.out(b.clk, gpio.High)
		b.wait()
		data <<= 1
	}
	b.out(b.clk, gpio.Low)
	b.out(b.cs, gpio.High)
}

// Err returns the first GPIO failure, if any.
func (b *Bitbang) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Bitbang) out(p gpio.PinOut, l gpio.Level) {
	if b.err != nil {
		return
	}
	if err := p.Out(l); err != nil {
		b.err = fmt.Errorf("spi9: %s: %w", p, err)
	}
}

func (b *Bitbang) wait() {
	if b.halfPeriod > 0 && b.err == nil {
		time.Sleep(b.halfPeriod)
	}
}

var _ Sequencer = &Bitbang{}
