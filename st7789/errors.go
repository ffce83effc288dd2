// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// ErrDisplay is returned, wrapped, when a command or data transmission
// failed.
var ErrDisplay = errors.New("st7789: display error")

// PinError is returned when the reset line could not be driven.
type PinError struct {
	Err error
}

func (e *PinError) Error() string {
	return "st7789: reset pin: " + e.Err.Error()
}

func (e *PinError) Unwrap() error {
	return e.Err
}

func displayError(err error) error {
	return fmt.Errorf("%w: %w", ErrDisplay, err)
}

// errorHandler is a wrapper for error management.
//
// Once a step failed, all the following steps are skipped.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	if err := eh.d.rst.Out(l); err != nil {
		eh.err = &PinError{Err: err}
	}
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.writeCommand(cmd)
}

func (eh *errorHandler) sendData(data ...byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.writeData(data)
}

func (eh *errorHandler) delay(f func(time.Duration), d time.Duration) {
	if eh.err != nil {
		return
	}
	f(d)
}
