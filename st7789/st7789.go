// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"

	"github.com/GermanBionicSystems/picosystem/st7789/image565"
)

// Commands
const (
	swReset  byte = 0x01 // Software reset
	slpIn    byte = 0x10 // Sleep in
	slpOut   byte = 0x11 // Sleep out
	norOn    byte = 0x13 // Normal display mode on
	invOff   byte = 0x20 // Display inversion off
	invOn    byte = 0x21 // Display inversion on
	dispOff  byte = 0x28 // Display off
	dispOn   byte = 0x29 // Display on
	caSet    byte = 0x2A // Column address set
	raSet    byte = 0x2B // Row address set
	ramWr    byte = 0x2C // Memory write
	vScrDef  byte = 0x33 // Vertical scrolling definition
	teOff    byte = 0x34 // Tearing effect line off
	teOn     byte = 0x35 // Tearing effect line on
	madCtl   byte = 0x36 // Memory data access control
	vScrSAdd byte = 0x37 // Vertical scroll start address of RAM
	colMod   byte = 0x3A // Interface pixel format
)

// colMod16Bit selects 65K colors on the RGB interface and 16 bits per pixel on
// the control interface.
const colMod16Bit = 0x55

// Size of the controller RAM in the native (portrait) orientation.
const (
	ramWidth  = 240
	ramHeight = 320
)

// Settle delays required by the controller.
const (
	resetPulse    = 10 * time.Microsecond
	swResetSettle = 150 * time.Millisecond
	slpOutSettle  = 10 * time.Millisecond
	modeSettle    = 10 * time.Millisecond
)

// Orientation is the memory access control (MADCTL) setting.
//
// Each value is a fixed combination of row/column inversion and row/column
// exchange.
type Orientation byte

// Possible orientations.
const (
	// Portrait is the native orientation, nothing inverted.
	Portrait Orientation = 0b0000_0000
	// Landscape inverts the column order and exchanges rows and columns.
	Landscape Orientation = 0b0110_0000
	// PortraitSwapped inverts both the row and the column order.
	PortraitSwapped Orientation = 0b1100_0000
	// LandscapeSwapped inverts the row order and exchanges rows and columns.
	LandscapeSwapped Orientation = 0b1010_0000
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "Portrait"
	case Landscape:
		return "Landscape"
	case PortraitSwapped:
		return "PortraitSwapped"
	case LandscapeSwapped:
		return "LandscapeSwapped"
	default:
		return fmt.Sprintf("Orientation(%#02x)", byte(o))
	}
}

// landscape returns true when rows and columns are exchanged.
func (o Orientation) landscape() bool {
	return o == Landscape || o == LandscapeSwapped
}

// TearingEffect is the tearing effect output line setting.
type TearingEffect uint8

// Possible tearing effect settings.
const (
	// TearingOff disables the output.
	TearingOff TearingEffect = iota
	// TearingVertical outputs the vertical blanking information.
	TearingVertical
	// TearingHorizontalAndVertical outputs both the horizontal and the
	// vertical blanking information.
	TearingHorizontalAndVertical
)

// Combine determines how single pixels are combined with the Framebuffer.
type Combine uint8

// Possible combine policies.
const (
	// Overwrite replaces the stored pixel.
	Overwrite Combine = iota
	// Toggle XORs the new color into the stored pixel. Painting the same
	// pixels twice restores the original content, which is handy for cursors
	// and overlays.
	Toggle
)

// DefaultOpts is the configuration of the 240x240 PicoSystem panel.
var DefaultOpts = Opts{
	Width:   240,
	Height:  240,
	Combine: Toggle,
}

// Opts defines the options for the device.
type Opts struct {
	// Width and Height is the visible size of the panel, in pixels. It must fit
	// in the 240x320 RAM, in either orientation.
	Width  int
	Height int
	// Combine is the policy used by DrawPixels and SetPixel when a Framebuffer
	// is used. It is ignored otherwise, pixels are then always overwritten.
	Combine Combine
	// Framebuffer is an optional mirror of the controller RAM. When set, paint
	// operations only update it and Display or Flush transmit it.
	Framebuffer *Framebuffer
}

// Dev is an open handle to the display controller.
//
// Dev is not safe for concurrent use. Commands and their data are sent in
// order and a multi-step sequence cannot be interrupted.
type Dev struct {
	bus Bus
	rst gpio.PinOut

	// Visible size.
	w, h int

	orientation Orientation
	fb          *Framebuffer
	combine     Combine

	// err is the first transmission error hit by SetPixel, which cannot return
	// it. It is returned by Display.
	err error
}

// New returns a Dev object that communicates over bus to a ST7789 display
// controller.
//
// rst is the optional hardware reset line. Use nil when it is not connected;
// the controller is then only reset by command.
//
// No data is sent to the display. Init must be called before painting.
func New(bus Bus, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	if bus == nil {
		return nil, errors.New("st7789: bus is required")
	}
	if rst == gpio.INVALID {
		return nil, errors.New("st7789: use nil for rst when not connected, do not use gpio.INVALID")
	}
	if opts.Width <= 0 || opts.Height <= 0 ||
		!(opts.Width <= ramWidth && opts.Height <= ramHeight || opts.Width <= ramHeight && opts.Height <= ramWidth) {
		return nil, fmt.Errorf("st7789: invalid size %dx%d, the controller RAM is %dx%d", opts.Width, opts.Height, ramWidth, ramHeight)
	}
	return &Dev{
		bus:         bus,
		rst:         rst,
		w:           opts.Width,
		h:           opts.Height,
		orientation: Portrait,
		fb:          opts.Framebuffer,
		combine:     opts.Combine,
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%dx%d, %s}", d.w, d.h, d.orientation)
}

// Init resets and configures the controller.
//
// delay is called for every mandatory settle time; time.Sleep is fine.
//
// The first failure aborts the sequence, nothing is sent afterward.
// Orientation reports Portrait as soon as the controller accepted it.
func (d *Dev) Init(delay func(time.Duration)) error {
	if err := d.HardReset(delay); err != nil {
		return err
	}
	eh := errorHandler{d: d}
	eh.sendCommand(swReset)
	eh.delay(delay, swResetSettle)
	eh.sendCommand(slpOut)
	eh.delay(delay, slpOutSettle)
	eh.sendCommand(invOff)
	// Top fixed area, vertical scrolling area, bottom fixed area. VSA is 320
	// big-endian, {0x01, 0x40}; 0x14 0x00 would be a 5120 rows area.
	eh.sendCommand(vScrDef)
	eh.sendData(0, 0, ramHeight>>8, ramHeight&0xFF, 0, 0)
	eh.sendCommand(madCtl)
	eh.sendData(byte(Portrait))
	if eh.err == nil {
		// The controller is in portrait from here on, even if a later step fails.
		d.orientation = Portrait
	}
	eh.sendCommand(colMod)
	eh.sendData(colMod16Bit)
	// The panel glass is inverted.
	eh.sendCommand(invOn)
	eh.delay(delay, modeSettle)
	eh.sendCommand(norOn)
	eh.delay(delay, modeSettle)
	eh.sendCommand(dispOn)
	eh.delay(delay, modeSettle)
	return eh.err
}

// HardReset pulses the reset line.
//
// It is a no-op when no reset line was provided.
func (d *Dev) HardReset(delay func(time.Duration)) error {
	if d.rst == nil {
		return nil
	}
	eh := errorHandler{d: d}
	eh.rstOut(gpio.High)
	eh.delay(delay, resetPulse)
	eh.rstOut(gpio.Low)
	eh.delay(delay, resetPulse)
	eh.rstOut(gpio.High)
	eh.delay(delay, resetPulse)
	return eh.err
}

// Orientation returns the current orientation.
func (d *Dev) Orientation() Orientation {
	return d.orientation
}

// SetOrientation changes the memory access control.
//
// The orientation is only updated once the controller accepted it.
func (d *Dev) SetOrientation(o Orientation) error {
	if err := d.writeCommand(madCtl); err != nil {
		return err
	}
	if err := d.writeData([]byte{byte(o)}); err != nil {
		return err
	}
	d.orientation = o
	return nil
}

// SetScrollOffset sets the first RAM row shown at the top of the vertical
// scrolling area, shifting the displayed picture.
func (d *Dev) SetScrollOffset(offset uint16) error {
	if err := d.writeCommand(vScrSAdd); err != nil {
		return err
	}
	return d.writeData([]byte{byte(offset >> 8), byte(offset)})
}

// SetTearingEffect configures the tearing effect output line.
func (d *Dev) SetTearingEffect(t TearingEffect) error {
	switch t {
	case TearingOff:
		return d.writeCommand(teOff)
	case TearingVertical:
		if err := d.writeCommand(teOn); err != nil {
			return err
		}
		return d.writeData([]byte{0})
	case TearingHorizontalAndVertical:
		if err := d.writeCommand(teOn); err != nil {
			return err
		}
		return d.writeData([]byte{1})
	default:
		return fmt.Errorf("st7789: invalid tearing effect %d", t)
	}
}

// Invert turns the color inversion on or off.
//
// Init turns it on, as the panel glass is itself inverted.
func (d *Dev) Invert(on bool) error {
	if on {
		return d.writeCommand(invOn)
	}
	return d.writeCommand(invOff)
}

// Sleep puts the controller in sleep mode.
func (d *Dev) Sleep() error {
	return d.writeCommand(slpIn)
}

// Wake leaves sleep mode.
func (d *Dev) Wake(delay func(time.Duration)) error {
	if err := d.writeCommand(slpOut); err != nil {
		return err
	}
	delay(slpOutSettle)
	return nil
}

// Halt implements conn.Resource.
//
// It turns the display off. The RAM content is kept.
func (d *Dev) Halt() error {
	return d.writeCommand(dispOff)
}

// Release returns the bus and the reset line.
//
// Nothing is sent to the display. d must not be used afterward.
func (d *Dev) Release() (Bus, gpio.PinOut) {
	bus, rst := d.bus, d.rst
	d.bus, d.rst = nil, nil
	return bus, rst
}

// SetPixel565 sets the pixel at (x, y) of the controller RAM.
func (d *Dev) SetPixel565(x, y uint16, c image565.RGB565) error {
	if err := d.setAddressWindow(x, y, x, y); err != nil {
		return err
	}
	if err := d.writeCommand(ramWr); err != nil {
		return err
	}
	return d.writeData16(func(yield func(uint16) bool) {
		yield(uint16(c))
	})
}

// SetPixels sets the pixels of the RAM window (x0, y0)-(x1, y1), both
// corners included, in row-major order.
//
// colors must yield exactly (x1-x0+1)*(y1-y0+1) pixels.
func (d *Dev) SetPixels(x0, y0, x1, y1 uint16, colors iter.Seq[image565.RGB565]) error {
	if err := d.setAddressWindow(x0, y0, x1, y1); err != nil {
		return err
	}
	if err := d.writeCommand(ramWr); err != nil {
		return err
	}
	return d.writeData16(func(yield func(uint16) bool) {
		for c := range colors {
			if !yield(uint16(c)) {
				return
			}
		}
	})
}

// setAddressWindow sets the RAM window written by the next memory write.
//
// Coordinates are inclusive and not clipped.
func (d *Dev) setAddressWindow(x0, y0, x1, y1 uint16) error {
	eh := errorHandler{d: d}
	eh.sendCommand(caSet)
	eh.sendData(byte(x0>>8), byte(x0), byte(x1>>8), byte(x1))
	eh.sendCommand(raSet)
	eh.sendData(byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
	return eh.err
}

func (d *Dev) writeCommand(cmd byte) error {
	if err := d.bus.SendCommands([]byte{cmd}); err != nil {
		return displayError(err)
	}
	return nil
}

func (d *Dev) writeData(data []byte) error {
	if err := d.bus.SendData(data); err != nil {
		return displayError(err)
	}
	return nil
}

func (d *Dev) writeData16(data iter.Seq[uint16]) error {
	if err := d.bus.SendData16(data); err != nil {
		return displayError(err)
	}
	return nil
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
