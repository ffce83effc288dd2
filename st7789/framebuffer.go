// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789

import (
	"image"
	"image/color"
	"math/bits"
	"sync"

	"github.com/GermanBionicSystems/picosystem/st7789/image565"
)

// Framebuffer is an in-memory mirror of the controller RAM.
//
// Pixels are stored byte-swapped: a little-endian dump of Pix is the
// big-endian stream expected by the controller. XOR composition works the
// same on either representation.
//
// A Framebuffer is safe for concurrent use. It is owned by the caller and can
// be shared with other consumers, like a preview.
type Framebuffer struct {
	mu sync.Mutex
	// Pix holds one byte-swapped RGB565 pixel per element at x + y*Stride.
	Pix    []uint16
	Stride int
	Rect   image.Rectangle
}

// NewFramebuffer returns a Framebuffer covering the whole 240x320 controller
// RAM.
func NewFramebuffer() *Framebuffer {
	return NewFramebufferSize(ramWidth, ramHeight)
}

// NewFramebufferSize returns a Framebuffer of w*h pixels with a stride of w.
func NewFramebufferSize(w, h int) *Framebuffer {
	return &Framebuffer{
		Pix:    make([]uint16, w*h),
		Stride: w,
		Rect:   image.Rect(0, 0, w, h),
	}
}

// ColorModel implements image.Image.
func (f *Framebuffer) ColorModel() color.Model {
	return image565.Model
}

// Bounds implements image.Image.
func (f *Framebuffer) Bounds() image.Rectangle {
	return f.Rect
}

// At implements image.Image.
func (f *Framebuffer) At(x, y int) color.Color {
	return f.RGB565At(x, y)
}

// RGB565At returns the pixel at (x, y), in host order.
func (f *Framebuffer) RGB565At(x, y int) image565.RGB565 {
	if !(image.Point{X: x, Y: y}.In(f.Rect)) {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return image565.RGB565(bits.ReverseBytes16(f.Pix[x+y*f.Stride]))
}

// Clear sets every pixel to c.
func (f *Framebuffer) Clear(c image565.RGB565) {
	v := swap(c)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Pix {
		f.Pix[i] = v
	}
}

// swap returns c in the storage order of Pix.
func swap(c image565.RGB565) uint16 {
	return bits.ReverseBytes16(uint16(c))
}

var _ image.Image = &Framebuffer{}
