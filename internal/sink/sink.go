// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sink forwards ENS161 readings to metrics and messaging backends.
package sink

import (
	"github.com/GermanBionicSystems/ens161/ens161"
)

// Publisher receives every reading forwarded by the driver.
type Publisher interface {
	Publish(q ens161.Quantity, v float64)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(q ens161.Quantity, v float64)

func (f PublisherFunc) Publish(q ens161.Quantity, v float64) {
	f(q, v)
}

// Fanout publishes each reading to all of its publishers in order.
type Fanout []Publisher

func (f Fanout) Publish(q ens161.Quantity, v float64) {
	for _, p := range f {
		p.Publish(q, v)
	}
}

// Sinks returns the driver sinks forwarding the quantities qs to p.
func Sinks(p Publisher, qs []ens161.Quantity) map[ens161.Quantity]ens161.Sink {
	m := make(map[ens161.Quantity]ens161.Sink, len(qs))
	for _, q := range qs {
		q := q
		m[q] = func(v float64) { p.Publish(q, v) }
	}
	return m
}
