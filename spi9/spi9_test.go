// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spi9

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// fakeSequencer records the words queued. It reports a full FIFO for the
// first busy checks.
type fakeSequencer struct {
	words  []uint32
	busy   int
	checks int
	err    error
}

func (f *fakeSequencer) IsTxFIFOFull() bool {
	f.checks++
	if f.busy > 0 {
		f.busy--
		return true
	}
	return false
}

func (f *fakeSequencer) TxPut(data uint32) {
	f.words = append(f.words, data)
}

func (f *fakeSequencer) Err() error {
	return f.err
}

func TestNew(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected an error")
	}
}

func TestWords(t *testing.T) {
	for _, tc := range []struct {
		name string
		f    func(d *Dev) error
		want []uint32
	}{
		{
			name: "command",
			f:    func(d *Dev) error { d.WriteCommand(0x2A); return nil },
			want: []uint32{0x2A << 23},
		},
		{
			name: "data",
			f:    func(d *Dev) error { d.WriteData(0xFF); return nil },
			want: []uint32{0xFF800000},
		},
		{
			name: "zero data",
			f:    func(d *Dev) error { d.WriteData(0); return nil },
			want: []uint32{0x80000000},
		},
		{
			name: "commands",
			f:    func(d *Dev) error { return d.SendCommands([]byte{0x01, 0x11}) },
			want: []uint32{0x01 << 23, 0x11 << 23},
		},
		{
			name: "bytes",
			f:    func(d *Dev) error { return d.SendData([]byte{0x12, 0x80}) },
			want: []uint32{0x80000000 | 0x12<<23, 0x80000000 | 0x80<<23},
		},
		{
			name: "16 bits",
			f:    func(d *Dev) error { return d.SendData16(slices.Values([]uint16{0xF81F})) },
			want: []uint32{0x80000000 | 0xF8<<23, 0x80000000 | 0x1F<<23},
		},
		{
			name: "empty",
			f:    func(d *Dev) error { return d.SendData(nil) },
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sm := &fakeSequencer{}
			d, err := New(sm)
			if err != nil {
				t.Fatal(err)
			}
			if err := tc.f(d); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sm.words, tc.want, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("words difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestWaitFIFO(t *testing.T) {
	sm := &fakeSequencer{busy: 3}
	d, _ := New(sm)
	d.WriteData(0x55)
	if sm.checks != 4 {
		t.Errorf("FIFO checked %d times, want 4", sm.checks)
	}
	if diff := cmp.Diff(sm.words, []uint32{dataWord(0x55)}); diff != "" {
		t.Errorf("words difference (-got +want):\n%s", diff)
	}
}

func TestTryWrite(t *testing.T) {
	sm := &fakeSequencer{busy: 2}
	d, _ := New(sm)
	if d.TryWriteCommand(0x2C) {
		t.Error("TryWriteCommand() succeeded with a full FIFO")
	}
	if d.TryWriteData(0x01) {
		t.Error("TryWriteData() succeeded with a full FIFO")
	}
	if len(sm.words) != 0 {
		t.Fatalf("queued %v with a full FIFO", sm.words)
	}
	if !d.TryWriteCommand(0x2C) || !d.TryWriteData(0x01) {
		t.Fatal("TryWrite failed with room in the FIFO")
	}
	want := []uint32{commandWord(0x2C), dataWord(0x01)}
	if diff := cmp.Diff(sm.words, want); diff != "" {
		t.Errorf("words difference (-got +want):\n%s", diff)
	}
}

func TestSequencerError(t *testing.T) {
	errGPIO := errors.New("gpio")
	sm := &fakeSequencer{err: errGPIO}
	d, _ := New(sm)
	if err := d.SendCommands([]byte{0x01}); !errors.Is(err, errGPIO) {
		t.Errorf("SendCommands() = %v, want %v", err, errGPIO)
	}
}

func TestString(t *testing.T) {
	d, _ := New(&fakeSequencer{})
	if got := d.String(); got != "spi9" {
		t.Errorf("String() = %q", got)
	}
}
