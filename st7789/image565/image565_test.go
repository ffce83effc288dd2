// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package image565

import (
	"image"
	"image/color"
	"image/draw"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRGB565_RGBA(t *testing.T) {
	for _, tc := range []struct {
		name       string
		c          RGB565
		r, g, b, a uint32
	}{
		{"black", Black, 0, 0, 0, 0xFFFF},
		{"white", White, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF},
		{"red", Red, 0xFFFF, 0, 0, 0xFFFF},
		{"green", Green, 0, 0xFFFF, 0, 0xFFFF},
		{"blue", Blue, 0, 0, 0xFFFF, 0xFFFF},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b, a := tc.c.RGBA()
			if r != tc.r || g != tc.g || b != tc.b || a != tc.a {
				t.Errorf("RGBA() = (%#x, %#x, %#x, %#x), want (%#x, %#x, %#x, %#x)", r, g, b, a, tc.r, tc.g, tc.b, tc.a)
			}
		})
	}
}

func TestModel(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   color.Color
		want RGB565
	}{
		{"passthrough", RGB565(0x1234), 0x1234},
		{"black", color.Black, Black},
		{"white", color.White, White},
		{"red", color.RGBA{R: 0xFF, A: 0xFF}, Red},
		{"green", color.NRGBA{G: 0xFF, A: 0xFF}, Green},
		{"blue", color.RGBA{B: 0xFF, A: 0xFF}, Blue},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := Model.Convert(tc.in).(RGB565); got != tc.want {
				t.Errorf("Convert(%v) = %#04x, want %#04x", tc.in, got, tc.want)
			}
		})
	}
}

func TestModel_roundTrip(t *testing.T) {
	for _, c := range []RGB565{0x0000, 0x0001, 0x0020, 0x0800, 0x1234, 0xABCD, 0xFFFF} {
		if got := Model.Convert(color.RGBA64Model.Convert(c)).(RGB565); got != c {
			t.Errorf("round trip of %#04x = %#04x", c, got)
		}
	}
}

func TestFromRGBA(t *testing.T) {
	if got := FromRGBA(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}); got != White {
		t.Errorf("FromRGBA(white) = %#04x", got)
	}
	if got := FromRGBA(color.RGBA{R: 0x08, G: 0x04, B: 0x08}); got != 0x0821 {
		t.Errorf("FromRGBA(low bits) = %#04x, want 0x0821", got)
	}
}

func TestImage(t *testing.T) {
	img := New(image.Rect(10, 20, 14, 23))
	if len(img.Pix) != 12 || img.Stride != 4 {
		t.Fatalf("len(Pix) = %d, Stride = %d", len(img.Pix), img.Stride)
	}
	img.SetRGB565(11, 21, Red)
	img.Set(13, 22, color.White)
	img.SetRGB565(0, 0, Blue) // Out of bounds, ignored.
	if got := img.RGB565At(11, 21); got != Red {
		t.Errorf("RGB565At(11, 21) = %#04x", got)
	}
	if got := img.At(13, 22); got != White {
		t.Errorf("At(13, 22) = %v", got)
	}
	if got := img.RGB565At(0, 0); got != Black {
		t.Errorf("RGB565At(0, 0) = %#04x", got)
	}
	if got := img.PixOffset(11, 21); got != 5 {
		t.Errorf("PixOffset(11, 21) = %d", got)
	}
}

func TestNew_empty(t *testing.T) {
	img := New(image.Rect(0, 0, 0, 5))
	if img.Pix != nil {
		t.Errorf("expected no pixel storage, got %d", len(img.Pix))
	}
}

func TestImage_Pixels(t *testing.T) {
	img := New(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = uint16(i + 1)
	}
	got := slices.Collect(img.Pixels(image.Rect(1, 0, 4, 2)))
	want := []RGB565{2, 3, 0, 5, 6, 0}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Pixels() difference (-got +want):\n%s", diff)
	}
}

func TestPixels_generic(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	draw.Draw(src, src.Bounds(), image.White, image.Point{}, draw.Src)
	src.Set(1, 1, color.RGBA{R: 0xFF, A: 0xFF})
	got := slices.Collect(Pixels(src, src.Bounds()))
	want := []RGB565{White, White, White, Red}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Pixels() difference (-got +want):\n%s", diff)
	}
}

func TestPixels_stopEarly(t *testing.T) {
	img := New(image.Rect(0, 0, 4, 4))
	n := 0
	for range Pixels(img, img.Bounds()) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("n = %d", n)
	}
}
