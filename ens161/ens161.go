// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ens161

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is used when the ADDR pin is pulled low.
	DefaultAddress uint16 = 0x52
	// AlternateAddress is used when the ADDR pin is pulled high.
	AlternateAddress uint16 = 0x53

	// Values of the PART_ID register.
	PartIDENS160 uint16 = 0x0160
	PartIDENS161 uint16 = 0x0161
)

// Register addresses.
const (
	regPartID     byte = 0x00
	regOpMode     byte = 0x10
	regTempIn     byte = 0x13
	regRHIn       byte = 0x15
	regDataStatus byte = 0x20
	regDataAQI    byte = 0x21
	regDataTVOC   byte = 0x22
	regDataECO2   byte = 0x24
	regDataHCHO   byte = 0x26
	regDataHP0    byte = 0x28
	regDataHP1    byte = 0x2a
	regDataHP2    byte = 0x2c
	regDataHP3    byte = 0x2e
)

const (
	opModeIdle     byte = 0x01
	opModeStandard byte = 0x02

	statusNewData byte = 1 << 1

	// Fixed point scales of the TEMP_IN and RH_IN registers.
	tempScale = 64
	rhScale   = 512

	settleDelay = 100 * time.Millisecond
	modeDelay   = 20 * time.Millisecond
)

// Sink receives a freshly read value of one quantity.
type Sink func(value float64)

// Opts holds the configuration options for the device.
type Opts struct {
	// Sinks maps each quantity to publish to the function receiving it.
	// Update only reads quantities that have a sink; with no sinks it reads
	// the status register alone. Sense reads the quantities with a sink, or
	// every quantity when Sinks is empty.
	Sinks map[Quantity]Sink
	// Temperature is the ambient temperature written to the compensation
	// register at startup. Must be within [0, 1023.98]°C.
	Temperature physic.Temperature
	// Humidity is the relative humidity written to the compensation
	// register at startup. Must be within [0, 100]%rH.
	Humidity physic.RelativeHumidity
	// Logger receives diagnostics. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// DefaultOpts holds the default configuration options for the device. Start
// from a copy of it when only some fields need changing; the compensation
// fields of Opts are used as given.
var DefaultOpts = Opts{
	Temperature: physic.ZeroCelsius + 24*physic.Kelvin,
	Humidity:    40 * physic.PercentRH,
}

// Dev is a handle to an ENS161 device.
//
// Dev is not safe for concurrent use; the caller is expected to serialize
// calls to Update and Sense.
type Dev struct {
	d    *i2c.Dev
	opts Opts
	log  logrus.FieldLogger

	// Quantities read by Sense and by Update, in register order.
	quantities []Quantity
	published  []Quantity
	tempIn     uint16
	rhIn       uint16

	partID  uint16
	failed  bool
	warning bool
}

// NewI2C returns a handle to an ENS161 on bus b at address addr, which must
// be DefaultAddress or AlternateAddress. opts may be nil.
//
// The device is identified, the compensation values are written and the
// device is switched to standard mode. If any of that fails the device is
// marked as failed and the error returned along with the handle; Failed()
// then reports true and Update never touches the bus again.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if addr != DefaultAddress && addr != AlternateAddress {
		return nil, fmt.Errorf("ens161: invalid address 0x%x, expected 0x%x or 0x%x", addr, DefaultAddress, AlternateAddress)
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	tempIn, err := encodeCompensation(float64(o.Temperature-physic.ZeroCelsius)/float64(physic.Kelvin), tempScale)
	if err != nil {
		return nil, fmt.Errorf("ens161: temperature %s: %w", o.Temperature, err)
	}
	if o.Humidity < 0 || o.Humidity > 100*physic.PercentRH {
		return nil, fmt.Errorf("ens161: humidity %s out of range", o.Humidity)
	}
	rhIn, err := encodeCompensation(float64(o.Humidity)/float64(physic.PercentRH), rhScale)
	if err != nil {
		return nil, fmt.Errorf("ens161: humidity %s: %w", o.Humidity, err)
	}
	log := o.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Dev{
		d:      &i2c.Dev{Bus: b, Addr: addr},
		opts:   o,
		log:    log.WithField("device", "ens161"),
		tempIn: tempIn,
		rhIn:   rhIn,
	}
	for _, q := range allQuantities {
		if o.Sinks[q] != nil {
			d.published = append(d.published, q)
		}
	}
	d.quantities = d.published
	if len(d.published) == 0 {
		d.quantities = AllQuantities()
	}
	return d, d.start()
}

// encodeCompensation converts v to the unsigned fixed point format of the
// compensation registers.
func encodeCompensation(v float64, scale float64) (uint16, error) {
	r := math.Round(v * scale)
	if r < 0 || r > math.MaxUint16 {
		return 0, fmt.Errorf("value %g does not fit the compensation register", v)
	}
	return uint16(r), nil
}

// start runs the power-up sequence. Compensation writes only happen while
// the device is idle.
func (d *Dev) start() error {
	time.Sleep(settleDelay)

	r, err := d.readRegister(regPartID, 2)
	if err != nil {
		d.fail("failed to read part id, check wiring and that the address is 0x52 or 0x53", err)
		return err
	}
	d.partID = binary.LittleEndian.Uint16(r)
	d.log.Infof("part id 0x%04x", d.partID)
	if d.partID != PartIDENS160 && d.partID != PartIDENS161 {
		err := &IdentityMismatchError{PartID: d.partID}
		d.fail("unexpected part id", err)
		return err
	}

	if err := d.writeRegister(regOpMode, opModeIdle); err != nil {
		d.fail("failed to set idle mode", err)
		return err
	}
	time.Sleep(modeDelay)

	d.writeCompensation(regTempIn, d.tempIn)
	d.writeCompensation(regRHIn, d.rhIn)

	if err := d.writeRegister(regOpMode, opModeStandard); err != nil {
		d.fail("failed to set standard mode", err)
		return err
	}
	time.Sleep(modeDelay)
	d.log.Info("initialized")
	return nil
}

func (d *Dev) fail(msg string, err error) {
	d.failed = true
	d.log.WithError(err).Error(msg)
}

// writeCompensation writes v low byte first to reg and reg+1. The device
// keeps running with its power-on compensation if a write fails, so the
// error is only logged.
func (d *Dev) writeCompensation(reg byte, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	for i := range b {
		if err := d.writeRegister(reg+byte(i), b[i]); err != nil {
			d.log.WithError(err).Warn("failed to write compensation")
		}
	}
}

// Sense reads the data status register and, when new data is ready, every
// configured quantity into f. A quantity whose register could not be read is
// left unset in f; the others are still read.
//
// It returns ErrFailed if setup failed, or a *TransportError if the status
// register could not be read, in which case Warning() reports true until the
// next successful status read.
func (d *Dev) Sense(f *Frame) error {
	return d.sense(f, d.quantities)
}

func (d *Dev) sense(f *Frame, qs []Quantity) error {
	*f = Frame{}
	if d.failed {
		return ErrFailed
	}
	r, err := d.readRegister(regDataStatus, 1)
	if err != nil {
		d.warning = true
		d.log.WithError(err).Warn("failed to read status")
		return err
	}
	d.warning = false
	f.Status = r[0]
	if !f.Ready() {
		d.log.Debugf("no new data available (status: 0x%02x)", f.Status)
		return nil
	}
	for _, q := range qs {
		reg := registers[q]
		r, err := d.readRegister(reg.addr, reg.width)
		if err != nil {
			d.log.WithError(err).Debugf("skipping %s", q)
			continue
		}
		var raw uint16
		if reg.width == 2 {
			raw = binary.LittleEndian.Uint16(r)
		} else {
			raw = uint16(r[0])
		}
		v := float64(raw) / reg.div
		f.set(q, v)
		d.log.Debugf("%s: %g %s", q, v, q.Unit())
	}
	return nil
}

// Update reads the device once and publishes each fresh value to its sink.
// It is meant to be called by the host on every polling tick.
//
// When no new data is ready no sink is called and nil is returned.
func (d *Dev) Update() error {
	var f Frame
	if err := d.sense(&f, d.published); err != nil {
		return err
	}
	for _, q := range d.published {
		v, ok := f.Get(q)
		if !ok {
			continue
		}
		if sink := d.opts.Sinks[q]; sink != nil {
			sink(v)
		}
	}
	return nil
}

// Failed reports whether setup failed. A failed device is never polled.
func (d *Dev) Failed() bool {
	return d.failed
}

// Warning reports whether the last status read failed.
func (d *Dev) Warning() bool {
	return d.warning
}

// PartID returns the identifier read at startup, or 0 if it could not be
// read.
func (d *Dev) PartID() uint16 {
	return d.partID
}

// Quantities returns the quantities read by Sense.
func (d *Dev) Quantities() []Quantity {
	return append([]Quantity(nil), d.quantities...)
}

func (d *Dev) String() string {
	return fmt.Sprintf("ens161: %s", d.d.String())
}

func (d *Dev) readRegister(reg byte, n int) ([]byte, error) {
	r := make([]byte, n)
	if err := d.d.Tx([]byte{reg}, r); err != nil {
		return nil, &TransportError{Op: "read", Register: reg, Err: err}
	}
	return r, nil
}

func (d *Dev) writeRegister(reg, v byte) error {
	if err := d.d.Tx([]byte{reg, v}, nil); err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

// Frame holds the result of one Sense call.
type Frame struct {
	// Status is the raw DATA_STATUS register.
	Status byte

	values [numQuantities]float64
	valid  [numQuantities]bool
}

// Ready reports whether the device flagged new data.
func (f *Frame) Ready() bool {
	return f.Status&statusNewData != 0
}

// Get returns the value of q and whether it was read.
func (f *Frame) Get(q Quantity) (float64, bool) {
	if !q.valid() {
		return 0, false
	}
	return f.values[q], f.valid[q]
}

func (f *Frame) set(q Quantity, v float64) {
	f.values[q] = v
	f.valid[q] = true
}

func (f *Frame) String() string {
	var parts []string
	for _, q := range allQuantities {
		if v, ok := f.Get(q); ok {
			s := fmt.Sprintf("%s: %g", strings.ToUpper(q.String()), v)
			if u := q.Unit(); u != "" {
				s += " " + u
			}
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("status: 0x%02x, no data", f.Status)
	}
	return strings.Join(parts, " ")
}
