// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789

import (
	"errors"
	"fmt"
	"iter"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Bus is the communication channel to the controller.
//
// A command byte is always followed by its parameters, if any, sent as data.
type Bus interface {
	// SendCommands sends command bytes.
	SendCommands(cmds []byte) error
	// SendData sends parameter or pixel bytes.
	SendData(data []byte) error
	// SendData16 sends 16 bits values, big-endian.
	SendData16(data iter.Seq[uint16]) error
}

// DefaultSPIOpts is the recommended default options for NewSPI.
var DefaultSPIOpts = SPIOpts{
	Freq: 8 * physic.MegaHertz,
}

// SPIOpts defines the options for NewSPI.
type SPIOpts struct {
	// Freq is the SPI clock. The ST7789 write cycle is 66ns, so it is
	// specified for up to 15MHz. Most panels work fine much faster.
	Freq physic.Frequency
	// MaxTxSize is the largest transfer, in bytes. Larger writes are split.
	// When 0, the limit of the SPI port is used, or 4096 if it has none.
	MaxTxSize int
}

const defaultMaxTxSize = 4096

// NewSPI returns a Bus that communicates over 4-wire SPI.
//
// # Wiring
//
// Connect SDA to SPI_MOSI, SCL to SPI_CLK, CS to SPI_CS and D/CX to dc.
// The controller samples on the rising edge with an idle high clock (mode 3).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *SPIOpts) (Bus, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("st7789: dc pin is required for 4-wire SPI")
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, err
	}
	f := opts.Freq
	if f == 0 {
		f = DefaultSPIOpts.Freq
	}
	c, err := p.Connect(f, spi.Mode3, 8)
	if err != nil {
		return nil, err
	}
	maxTx := opts.MaxTxSize
	if maxTx <= 0 {
		if l, ok := c.(conn.Limits); ok {
			maxTx = l.MaxTxSize()
		}
		if maxTx <= 0 {
			maxTx = defaultMaxTxSize
		}
	}
	// Keep 16 bits values in one transfer.
	maxTx &^= 1
	if maxTx == 0 {
		maxTx = 2
	}
	return &spiBus{c: c, dc: dc, maxTx: maxTx, level: gpio.Low}, nil
}

// spiBus is the 4-wire SPI Bus.
type spiBus struct {
	c     spi.Conn
	dc    gpio.PinOut
	maxTx int
	// level is the last D/CX level driven.
	level gpio.Level
	buf   []byte
}

func (s *spiBus) String() string {
	return fmt.Sprintf("%s, %s", s.c, s.dc)
}

func (s *spiBus) SendCommands(cmds []byte) error {
	if err := s.setDC(gpio.Low); err != nil {
		return err
	}
	return s.tx(cmds)
}

func (s *spiBus) SendData(data []byte) error {
	if err := s.setDC(gpio.High); err != nil {
		return err
	}
	return s.tx(data)
}

// SendData16 batches the values in transfers of at most maxTx bytes.
func (s *spiBus) SendData16(data iter.Seq[uint16]) error {
	if err := s.setDC(gpio.High); err != nil {
		return err
	}
	if cap(s.buf) < s.maxTx {
		s.buf = make([]byte, 0, s.maxTx)
	}
	b := s.buf[:0]
	for v := range data {
		b = append(b, byte(v>>8), byte(v))
		if len(b) == s.maxTx {
			if err := s.c.Tx(b, nil); err != nil {
				return err
			}
			b = b[:0]
		}
	}
	if len(b) != 0 {
		return s.c.Tx(b, nil)
	}
	return nil
}

func (s *spiBus) tx(b []byte) error {
	for len(b) != 0 {
		n := min(len(b), s.maxTx)
		if err := s.c.Tx(b[:n], nil); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func (s *spiBus) setDC(l gpio.Level) error {
	if s.level == l {
		return nil
	}
	if err := s.dc.Out(l); err != nil {
		return err
	}
	s.level = l
	return nil
}

var _ Bus = &spiBus{}
