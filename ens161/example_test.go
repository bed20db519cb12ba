//go:build examples
// +build examples

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ens161_test

import (
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/ens161/ens161"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	opts := ens161.DefaultOpts
	opts.Sinks = map[ens161.Quantity]ens161.Sink{
		ens161.ECO2: func(v float64) { fmt.Printf("eCO2: %g ppm\n", v) },
		ens161.TVOC: func(v float64) { fmt.Printf("TVOC: %g ppb\n", v) },
		ens161.AQI:  func(v float64) { fmt.Printf("AQI: %g\n", v) },
	}
	dev, err := ens161.NewI2C(b, ens161.DefaultAddress, &opts)
	if err != nil {
		log.Fatalf("failed to initialize ENS161: %v", err)
	}

	// The sensor produces a new sample every second in standard mode.
	for i := 0; i < 5; i++ {
		time.Sleep(time.Second)
		if err := dev.Update(); err != nil {
			log.Println(err)
		}
	}

	// Or pull a frame with the published quantities.
	var f ens161.Frame
	if err := dev.Sense(&f); err == nil {
		fmt.Println(f.String())
	}
}
