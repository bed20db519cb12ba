// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ens161

import (
	"fmt"
	"strings"
)

// Quantity identifies one of the values the sensor reports.
type Quantity int

const (
	// AQI is the UBA air quality index, 1 (excellent) to 5 (unhealthy).
	AQI Quantity = iota
	// TVOC is the total volatile organic compounds concentration in ppb.
	TVOC
	// ECO2 is the equivalent CO2 concentration in ppm.
	ECO2
	// HCHO is the formaldehyde concentration in ppb.
	HCHO
	// HP0 to HP3 are the raw resistance codes of the four hot plates.
	HP0
	HP1
	HP2
	HP3

	numQuantities
)

var allQuantities = [...]Quantity{AQI, TVOC, ECO2, HCHO, HP0, HP1, HP2, HP3}

// AllQuantities returns every quantity in register order.
func AllQuantities() []Quantity {
	return append([]Quantity(nil), allQuantities[:]...)
}

// register describes where and how a quantity is stored on the device.
type register struct {
	addr  byte
	width int
	// Divisor applied to the raw little endian value.
	div  float64
	name string
	unit string
}

var registers = [numQuantities]register{
	AQI:  {addr: regDataAQI, width: 1, div: 1, name: "aqi"},
	TVOC: {addr: regDataTVOC, width: 2, div: 1, name: "tvoc", unit: "ppb"},
	ECO2: {addr: regDataECO2, width: 2, div: 1, name: "eco2", unit: "ppm"},
	HCHO: {addr: regDataHCHO, width: 2, div: 10, name: "hcho", unit: "ppb"},
	HP0:  {addr: regDataHP0, width: 2, div: 1, name: "hp0"},
	HP1:  {addr: regDataHP1, width: 2, div: 1, name: "hp1"},
	HP2:  {addr: regDataHP2, width: 2, div: 1, name: "hp2"},
	HP3:  {addr: regDataHP3, width: 2, div: 1, name: "hp3"},
}

func (q Quantity) valid() bool {
	return q >= 0 && q < numQuantities
}

// String returns the short lower case name of the quantity, as used in
// configuration files and metric names.
func (q Quantity) String() string {
	if !q.valid() {
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
	return registers[q].name
}

// Unit returns the unit the published value is expressed in, or an empty
// string for unitless values.
func (q Quantity) Unit() string {
	if !q.valid() {
		return ""
	}
	return registers[q].unit
}

// ParseQuantity returns the Quantity matching name. Matching is case
// insensitive.
func ParseQuantity(name string) (Quantity, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, q := range allQuantities {
		if registers[q].name == n {
			return q, nil
		}
	}
	return 0, fmt.Errorf("ens161: unknown quantity %q", name)
}
