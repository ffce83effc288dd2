// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview implements a display.Drawer that outputs to terminal
// (stdout) using ANSI color codes.
//
// Useful to preview a Framebuffer while the panel is not wired yet.
package termview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	W, H int
	// Scale is the number of pixels per side shown as a single block. 0 is
	// treated as 1.
	Scale   int
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is a display emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	rect    image.Rectangle
	scale   int
	palette ansi256.Palette

	pixels []color.NRGBA
	buf    bytes.Buffer
	// rows is the number of lines printed by the last refresh.
	rows int
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	return NewWriter(colorable.NewColorableStdout(), opts)
}

// NewWriter returns a Dev that writes to w.
func NewWriter(w io.Writer, opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("termview: invalid size %dx%d", opts.W, opts.H)
	}
	if opts.Scale < 0 {
		return nil, errors.New("termview: invalid scale")
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	s := opts.Scale
	if s == 0 {
		s = 1
	}
	return &Dev{
		w:       w,
		rect:    image.Rect(0, 0, opts.W, opts.H),
		scale:   s,
		palette: *p,
		pixels:  make([]color.NRGBA, opts.W*opts.H),
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermView{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	// Clip the destination to the screen and shift sp accordingly.
	clipped := r.Intersect(d.rect)
	sp = sp.Add(clipped.Min.Sub(r.Min))
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			c := src.At(sp.X+x-clipped.Min.X, sp.Y+y-clipped.Min.Y)
			d.pixels[x+y*d.rect.Dx()] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
	}
	return d.refresh()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	if d.rows != 0 {
		// Redraw over the previous frame.
		fmt.Fprintf(&d.buf, "\033[%dA", d.rows)
	}
	d.rows = 0
	w := d.rect.Dx()
	for y := 0; y < d.rect.Dy(); y += d.scale {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := 0; x < w; x += d.scale {
			_, _ = io.WriteString(&d.buf, d.palette.Block(d.pixels[x+y*w]))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
		d.rows++
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
