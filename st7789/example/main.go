// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// example draws an animated scene on a ST7789 panel.
//
// The panel is driven either over the SPI port with a D/CX pin, or with three
// GPIOs sending 9 bits words:
//
//	example -spi SPI0.0 -dc GPIO25 -rst GPIO27
//	example -bitbang -clk GPIO11 -sdo GPIO10 -cs GPIO8 -rst GPIO27
//
// Use -term to mirror the frames on the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/GermanBionicSystems/picosystem/spi9"
	"github.com/GermanBionicSystems/picosystem/st7789"
	"github.com/GermanBionicSystems/picosystem/st7789/image565"
	"github.com/GermanBionicSystems/picosystem/termview"
)

var (
	spiName = flag.String("spi", "", "SPI port to use")
	dcName  = flag.String("dc", "GPIO25", "D/CX pin, for 4-wire SPI")
	rstName = flag.String("rst", "", "optional reset pin")
	bitbang = flag.Bool("bitbang", false, "send 9 bits words with GPIOs instead of using the SPI port")
	clkName = flag.String("clk", "GPIO11", "clock pin, with -bitbang")
	sdoName = flag.String("sdo", "GPIO10", "data pin, with -bitbang")
	csName  = flag.String("cs", "GPIO8", "chip select pin, with -bitbang")
	term    = flag.Bool("term", false, "mirror the frames on the terminal")
	frames  = flag.Int("frames", 100, "number of frames to draw")
)

func main() {
	hz := st7789.DefaultSPIOpts.Freq
	flag.Var(&hz, "hz", "bus clock")
	flag.Parse()
	if err := mainImpl(hz); err != nil {
		log.Fatal(err)
	}
}

func mainImpl(hz physic.Frequency) error {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return err
	}
	bus, closer, err := openBus(hz)
	if err != nil {
		return err
	}
	defer closer()

	var rst gpio.PinOut
	if *rstName != "" {
		if rst = gpioreg.ByName(*rstName); rst == nil {
			return fmt.Errorf("unknown pin %q", *rstName)
		}
	}

	fb := st7789.NewFramebuffer()
	opts := st7789.DefaultOpts
	opts.Framebuffer = fb
	dev, err := st7789.New(bus, rst, &opts)
	if err != nil {
		return err
	}
	if err := dev.Init(time.Sleep); err != nil {
		return err
	}
	defer dev.Halt()
	if err := dev.SetTearingEffect(st7789.TearingVertical); err != nil {
		return err
	}
	log.Printf("device=%s", dev)

	var preview *termview.Dev
	if *term {
		b := dev.Bounds()
		if preview, err = termview.New(&termview.Opts{W: b.Dx(), H: b.Dy(), Scale: 6}); err != nil {
			return err
		}
		defer preview.Halt()
	}

	scene, err := renderScene(dev.Bounds())
	if err != nil {
		return err
	}
	if err := dev.Draw(dev.Bounds(), scene, image.Point{}); err != nil {
		return err
	}
	label := renderLabel("periph + st7789")
	at := label.Bounds().Add(image.Pt(8, dev.Bounds().Dy()-label.Bounds().Dy()-8))
	if err := dev.FillContiguous(at, label.Pixels(label.Bounds())); err != nil {
		return err
	}

	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	for i := range *frames {
		// Text is painted with XOR, painting it again erases it.
		text := fmt.Sprintf("frame %d", i)
		tinyfont.WriteLine(dev, &proggy.TinySZ8pt7b, 8, 16, text, white)
		if err := dev.Display(); err != nil {
			return err
		}
		if preview != nil {
			if err := preview.Draw(dev.Bounds(), fb, image.Point{}); err != nil {
				return err
			}
		}
		tinyfont.WriteLine(dev, &proggy.TinySZ8pt7b, 8, 16, text, white)
		if err := dev.SetScrollOffset(uint16(i % 320)); err != nil {
			return err
		}
		time.Sleep(20 * time.Millisecond)
	}
	return dev.SetScrollOffset(0)
}

// openBus returns the bus selected on the command line.
func openBus(hz physic.Frequency) (st7789.Bus, func(), error) {
	if *bitbang {
		var pins [3]gpio.PinOut
		for i, n := range []string{*clkName, *sdoName, *csName} {
			p := gpioreg.ByName(n)
			if p == nil {
				return nil, nil, fmt.Errorf("unknown pin %q", n)
			}
			pins[i] = p
		}
		b, err := spi9.NewBitbang(pins[0], pins[1], pins[2], hz)
		if err != nil {
			return nil, nil, err
		}
		d, err := spi9.New(b)
		if err != nil {
			return nil, nil, err
		}
		return d, func() {}, nil
	}

	// Use spireg SPI port registry to find the first available SPI port.
	p, err := spireg.Open(*spiName)
	if err != nil {
		return nil, nil, err
	}
	dc := gpioreg.ByName(*dcName)
	if dc == nil {
		p.Close()
		return nil, nil, errors.New("a D/CX pin is required for 4-wire SPI")
	}
	bus, err := st7789.NewSPI(p, dc, &st7789.SPIOpts{Freq: hz})
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return bus, func() { p.Close() }, nil
}

// renderScene draws the background with gg.
func renderScene(r image.Rectangle) (image.Image, error) {
	w, h := r.Dx(), r.Dy()
	dc := gg.NewContext(w, h)
	dc.SetRGB(0.05, 0.05, 0.15)
	dc.Clear()
	for i := 0; i < 8; i++ {
		dc.SetRGB(float64(i)/8, 0.4, 1-float64(i)/8)
		dc.DrawCircle(float64(w)/2, float64(h)/2, float64(w)/2-float64(i)*12)
		dc.SetLineWidth(4)
		dc.Stroke()
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: 28}))
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("PicoSystem", float64(w)/2, float64(h)/2, 0.5, 0.5)
	return dc.Image(), nil
}

// renderLabel draws s with a fixed font, already in the panel format.
func renderLabel(s string) *image565.Image {
	face := basicfont.Face7x13
	img := image565.New(image.Rect(0, 0, font.MeasureString(face, s).Ceil()+4, face.Height+2))
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(image565.Green),
		Face: face,
		Dot:  fixed.P(2, face.Ascent+1),
	}
	drawer.DrawString(s)
	return img
}
