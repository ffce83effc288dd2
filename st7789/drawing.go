// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789

import (
	"errors"
	"image"
	"image/color"
	"iter"
	"math/bits"

	"periph.io/x/conn/v3/display"
	"tinygo.org/x/drivers"

	"github.com/GermanBionicSystems/picosystem/st7789/image565"
)

var errShortPixels = errors.New("st7789: pixel sequence too short for the area")

// Pixel is a single colored point.
type Pixel struct {
	image.Point
	Color image565.RGB565
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds implements display.Drawer. It is the visible area, Min is always
// {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.w, d.h)
}

// Size implements drivers.Displayer. It returns the visible size, which may
// be smaller than the controller RAM.
func (d *Dev) Size() (x, y int16) {
	return int16(d.w), int16(d.h)
}

// boundingBox returns the addressable RAM grid for the current orientation.
func (d *Dev) boundingBox() image.Rectangle {
	if d.orientation.landscape() {
		return image.Rect(0, 0, ramHeight, ramWidth)
	}
	return image.Rect(0, 0, ramWidth, ramHeight)
}

// DrawPixels paints individual pixels.
//
// With a Framebuffer, pixels are combined into it according to the Combine
// policy. Both coordinates must then be within [0, Stride), other pixels are
// dropped.
//
// Without a Framebuffer, pixels within the addressable RAM are sent right
// away, one window each.
//
// Out of range pixels are not an error.
func (d *Dev) DrawPixels(pixels iter.Seq[Pixel]) error {
	f := d.fb
	if f == nil {
		bb := d.boundingBox()
		for p := range pixels {
			if !p.In(bb) {
				continue
			}
			if err := d.SetPixel565(uint16(p.X), uint16(p.Y), p.Color); err != nil {
				return err
			}
		}
		return nil
	}

	for p := range pixels {
		// The mirror was laid out for a square panel: rows beyond the stride are
		// only reachable through FillContiguous.
		if p.X < 0 || p.Y < 0 || p.X >= f.Stride || p.Y >= f.Stride {
			continue
		}
		i := p.X + p.Y*f.Stride
		f.mu.Lock()
		if i < len(f.Pix) {
			if d.combine == Toggle {
				f.Pix[i] ^= swap(p.Color)
			} else {
				f.Pix[i] = swap(p.Color)
			}
		}
		f.mu.Unlock()
	}
	return nil
}

// FillContiguous fills area with colors, in row-major order.
//
// colors must yield area.Dx()*area.Dy() pixels. The part of area outside the
// addressable RAM is consumed from colors but not painted. Once the last
// visible row is painted, colors is not drained further. If nothing is
// visible, colors is not consumed at all.
//
// With a Framebuffer, only the mirror is updated.
func (d *Dev) FillContiguous(area image.Rectangle, colors iter.Seq[image565.RGB565]) error {
	clipped := area.Intersect(d.boundingBox())
	if area.Empty() || clipped.Empty() {
		return nil
	}
	// Pixels cropped from the top/left and from the bottom/right.
	skipTL := clipped.Min.Sub(area.Min)
	skipBR := area.Max.Sub(clipped.Max)

	next, stop := iter.Pull(colors)
	defer stop()
	skip := func(n int) bool {
		for range n {
			if _, ok := next(); !ok {
				return false
			}
		}
		return true
	}

	if f := d.fb; f != nil {
		if !skip(skipTL.Y * area.Dx()) {
			return errShortPixels
		}
		// colors may read the Framebuffer, so it is only locked to store a row.
		row := make([]uint16, clipped.Dx())
		for y := range clipped.Dy() {
			if !skip(skipTL.X) {
				return errShortPixels
			}
			for x := range row {
				c, ok := next()
				if !ok {
					return errShortPixels
				}
				row[x] = swap(c)
			}
			i := clipped.Min.X + (clipped.Min.Y+y)*f.Stride
			f.mu.Lock()
			if i < len(f.Pix) {
				copy(f.Pix[i:], row)
			}
			f.mu.Unlock()
			if !skip(skipBR.X) {
				return errShortPixels
			}
		}
		return nil
	}

	return d.SetPixels(uint16(clipped.Min.X), uint16(clipped.Min.Y), uint16(clipped.Max.X-1), uint16(clipped.Max.Y-1),
		func(yield func(image565.RGB565) bool) {
			if !skip(skipTL.Y * area.Dx()) {
				return
			}
			for range clipped.Dy() {
				if !skip(skipTL.X) {
					return
				}
				for range clipped.Dx() {
					c, ok := next()
					if !ok || !yield(c) {
						return
					}
				}
				if !skip(skipBR.X) {
					return
				}
			}
		})
}

// Draw implements display.Drawer.
//
// Only the part of r within both the visible area and src is painted, the
// rest of the display is left untouched. The pixels of src are converted to
// RGB565 and painted with FillContiguous.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	clipped := r.Intersect(d.Bounds()).Intersect(src.Bounds().Sub(sp).Add(r.Min))
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(r.Min))
	srcR := image.Rectangle{Min: sp, Max: sp.Add(clipped.Size())}
	return d.FillContiguous(clipped, image565.Pixels(src, srcR))
}

// SetPixel implements drivers.Displayer.
//
// A transmission error is returned by the next call to Display.
func (d *Dev) SetPixel(x, y int16, c color.RGBA) {
	err := d.DrawPixels(func(yield func(Pixel) bool) {
		yield(Pixel{Point: image.Pt(int(x), int(y)), Color: image565.FromRGBA(c)})
	})
	if err != nil && d.err == nil {
		d.err = err
	}
}

// Display implements drivers.Displayer.
//
// It transmits the visible part of the Framebuffer, if any.
func (d *Dev) Display() error {
	if err := d.err; err != nil {
		d.err = nil
		return err
	}
	return d.Flush(d.Bounds())
}

// Flush transmits the part of the Framebuffer within r.
//
// The window is streamed in one memory write; the bus splits it in transfers
// it can handle. Painters are blocked until the transmission is done.
func (d *Dev) Flush(r image.Rectangle) error {
	f := d.fb
	if f == nil {
		return nil
	}
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return d.SetPixels(uint16(r.Min.X), uint16(r.Min.Y), uint16(r.Max.X-1), uint16(r.Max.Y-1),
		func(yield func(image565.RGB565) bool) {
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					var v uint16
					if i := x + y*f.Stride; i < len(f.Pix) {
						v = f.Pix[i]
					}
					if !yield(image565.RGB565(bits.ReverseBytes16(v))) {
						return
					}
				}
			}
		})
}

var _ display.Drawer = &Dev{}
var _ drivers.Displayer = &Dev{}
