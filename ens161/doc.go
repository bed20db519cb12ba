// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ens161 provides a driver for the ScioSense ENS161 digital
// metal-oxide multi-gas sensor. The ENS160 is register compatible and is
// also accepted.
//
// The device reports an air quality index (AQI), total volatile organic
// compounds (TVOC), equivalent CO2 (eCO2), formaldehyde (HCHO) and the raw
// resistance of its four hot plates. Readings are delivered either by
// pulling a Frame with Sense, or by registering a Sink per quantity and
// calling Update on a schedule owned by the caller.
//
// Datasheet
//
// https://www.sciosense.com/ens16x-digital-metal-oxide-multi-gas-sensor/
package ens161
