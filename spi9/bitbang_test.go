// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spi9

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/picosystem/st7789"
)

// wire decodes the words seen on the lines, like the controller does.
type wire struct {
	clk, sdo, cs gpio.Level
	bits         int
	word         uint16
	words        []uint16
	// glitches counts data changes with the clock high.
	glitches int
}

// linePin reports its level changes to the wire.
type linePin struct {
	gpiotest.Pin
	w   *wire
	set func(w *wire, l gpio.Level)
	err error
}

func (p *linePin) Out(l gpio.Level) error {
	if p.err != nil {
		return p.err
	}
	p.set(p.w, l)
	return p.Pin.Out(l)
}

func newWire() (*wire, *linePin, *linePin, *linePin) {
	w := &wire{cs: gpio.High}
	clk := &linePin{Pin: gpiotest.Pin{N: "CLK"}, w: w, set: func(w *wire, l gpio.Level) {
		if l && !w.clk && !w.cs {
			w.word <<= 1
			if w.sdo {
				w.word |= 1
			}
			w.bits++
		}
		w.clk = l
	}}
	sdo := &linePin{Pin: gpiotest.Pin{N: "SDO"}, w: w, set: func(w *wire, l gpio.Level) {
		if w.clk && l != w.sdo {
			w.glitches++
		}
		w.sdo = l
	}}
	cs := &linePin{Pin: gpiotest.Pin{N: "CS"}, w: w, set: func(w *wire, l gpio.Level) {
		if l && !w.cs {
			if w.bits == WordBits {
				w.words = append(w.words, w.word)
			}
			w.bits, w.word = 0, 0
		}
		w.cs = l
	}}
	return w, clk, sdo, cs
}

func TestNewBitbang(t *testing.T) {
	_, clk, sdo, _ := newWire()
	if _, err := NewBitbang(clk, sdo, nil, 0); err == nil {
		t.Error("expected an error without cs")
	}
	if _, err := NewBitbang(clk, gpio.INVALID, sdo, 0); err == nil {
		t.Error("expected an error with gpio.INVALID")
	}
	b, err := NewBitbang(clk, sdo, &gpiotest.Pin{N: "CS"}, physic.MegaHertz)
	if err != nil {
		t.Fatal(err)
	}
	if b.halfPeriod != 500 {
		t.Errorf("halfPeriod = %s", b.halfPeriod)
	}
	if b.IsTxFIFOFull() {
		t.Error("FIFO must never be full")
	}
	if got, want := b.String(), "bitbang{CLK(0), SDO(0), CS(0)}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBitbangWaveform(t *testing.T) {
	w, clk, sdo, cs := newWire()
	b, err := NewBitbang(clk, sdo, cs, 0)
	if err != nil {
		t.Fatal(err)
	}
	d, err := New(b)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SendCommands([]byte{0x2A}); err != nil {
		t.Fatal(err)
	}
	if err := d.SendData([]byte{0x00, 0xFF, 0xA5}); err != nil {
		t.Fatal(err)
	}
	want := []uint16{0x02A, 0x100, 0x1FF, 0x1A5}
	if diff := cmp.Diff(w.words, want); diff != "" {
		t.Errorf("words difference (-got +want):\n%s", diff)
	}
	if w.glitches != 0 {
		t.Errorf("data changed %d times with the clock high", w.glitches)
	}
	if !w.cs || w.clk {
		t.Errorf("lines not idle: cs=%s clk=%s", w.cs, w.clk)
	}
}

func TestBitbangError(t *testing.T) {
	_, clk, sdo, cs := newWire()
	b, err := NewBitbang(clk, sdo, cs, 0)
	if err != nil {
		t.Fatal(err)
	}
	errPin := errors.New("pin lost")
	sdo.err = errPin
	d, _ := New(b)
	if err := d.SendData([]byte{1, 2}); !errors.Is(err, errPin) {
		t.Fatalf("SendData() = %v, want %v", err, errPin)
	}
	// Sticky.
	sdo.err = nil
	if err := b.Err(); !errors.Is(err, errPin) {
		t.Errorf("Err() = %v, want %v", err, errPin)
	}
}

func TestBitbangDisplay(t *testing.T) {
	w, clk, sdo, cs := newWire()
	b, err := NewBitbang(clk, sdo, cs, 0)
	if err != nil {
		t.Fatal(err)
	}
	bus, err := New(b)
	if err != nil {
		t.Fatal(err)
	}
	d, err := st7789.New(bus, nil, &st7789.DefaultOpts)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetScrollOffset(0x0102); err != nil {
		t.Fatal(err)
	}
	want := []uint16{0x037, 0x101, 0x102}
	if diff := cmp.Diff(w.words, want); diff != "" {
		t.Errorf("words difference (-got +want):\n%s", diff)
	}
}
