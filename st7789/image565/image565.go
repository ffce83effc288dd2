// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image565 implements the 16 bits RGB565 pixel format used by TFT
// controllers like the ST7789.
//
// Pixels are kept in host order. Conversion to the big-endian wire format is
// done by the driver at transmission time.
package image565

import (
	"image"
	"image/color"
	"iter"
)

// RGB565 is a 16 bits color: 5 bits red, 6 bits green, 5 bits blue.
type RGB565 uint16

// Common colors.
const (
	Black RGB565 = 0x0000
	White RGB565 = 0xFFFF
	Red   RGB565 = 0xF800
	Green RGB565 = 0x07E0
	Blue  RGB565 = 0x001F
)

// RGBA implements color.Color.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F
	// Replicate the high bits into the low bits so full intensity maps to
	// 0xFFFF.
	r = (r5<<11 | r5<<6 | r5<<1 | r5>>4)
	g = (g6<<10 | g6<<4 | g6>>2)
	b = (b5<<11 | b5<<6 | b5<<1 | b5>>4)
	return r, g, b, 0xFFFF
}

// FromRGBA returns the closest RGB565 for c, ignoring alpha.
func FromRGBA(c color.RGBA) RGB565 {
	return RGB565(uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B)>>3)
}

func convert(c color.Color) color.Color {
	if v, ok := c.(RGB565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return RGB565((r & 0xF800) | (g&0xFC00)>>5 | (b&0xF800)>>11)
}

// Model converts any color.Color to RGB565.
var Model = color.ModelFunc(convert)

// Image is an in-memory RGB565 image.
type Image struct {
	// Pix holds one pixel per element in row-major order.
	Pix    []uint16
	Stride int
	Rect   image.Rectangle
}

// New returns an initialized Image instance, all black.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{Pix: make([]uint16, w*h), Stride: w, Rect: r}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.RGB565At(x, y)
}

// RGB565At is the optimized version of At().
func (i *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return 0
	}
	return RGB565(i.Pix[i.PixOffset(x, y)])
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetRGB565(x, y, Model.Convert(c).(RGB565))
}

// SetRGB565 is the optimized version of Set().
func (i *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	i.Pix[i.PixOffset(x, y)] = uint16(c)
}

// PixOffset returns the index of the element of Pix that corresponds to the
// pixel at (x, y).
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x - i.Rect.Min.X)
}

// Pixels returns the pixels of r in row-major order.
//
// Points of r outside the image bounds yield Black, so the sequence always
// has exactly r.Dx()*r.Dy() elements.
func (i *Image) Pixels(r image.Rectangle) iter.Seq[RGB565] {
	return func(yield func(RGB565) bool) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if !yield(i.RGB565At(x, y)) {
					return
				}
			}
		}
	}
}

// Pixels returns the pixels of src in r, converted to RGB565, in row-major
// order.
func Pixels(src image.Image, r image.Rectangle) iter.Seq[RGB565] {
	if img, ok := src.(*Image); ok {
		return img.Pixels(r)
	}
	return func(yield func(RGB565) bool) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if !yield(Model.Convert(src.At(x, y)).(RGB565)) {
					return
				}
			}
		}
	}
}

var _ color.Color = RGB565(0)
var _ image.Image = &Image{}
