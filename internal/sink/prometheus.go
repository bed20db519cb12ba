// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sink

import (
	"github.com/GermanBionicSystems/ens161/ens161"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	StateOK      = "ok"
	StateWarning = "warning"
	StateFailed  = "failed"
)

var help = map[ens161.Quantity]string{
	ens161.AQI:  "Air quality index (UBA, 1-5)",
	ens161.TVOC: "Total volatile organic compounds (units: ppb)",
	ens161.ECO2: "Equivalent CO2 concentration (units: ppm)",
	ens161.HCHO: "Formaldehyde concentration (units: ppb)",
	ens161.HP0:  "Raw resistance code of hot plate 0",
	ens161.HP1:  "Raw resistance code of hot plate 1",
	ens161.HP2:  "Raw resistance code of hot plate 2",
	ens161.HP3:  "Raw resistance code of hot plate 3",
}

// Prometheus exposes the last reading of each quantity as a gauge labelled
// with the device name, plus a status gauge.
type Prometheus struct {
	device string
	gauges map[ens161.Quantity]*prometheus.GaugeVec
	status *prometheus.GaugeVec
}

// NewPrometheus registers the gauges for qs on reg.
func NewPrometheus(reg prometheus.Registerer, device string, qs []ens161.Quantity) (*Prometheus, error) {
	p := &Prometheus{
		device: device,
		gauges: make(map[ens161.Quantity]*prometheus.GaugeVec, len(qs)),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ens161_status",
			Help: "Device status, 1 for the current state",
		}, []string{"device", "state"}),
	}
	if err := reg.Register(p.status); err != nil {
		return nil, errors.Wrap(err, "failed to register status gauge")
	}
	for _, q := range qs {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ens161_" + q.String(),
			Help: help[q],
		}, []string{"device"})
		if err := reg.Register(g); err != nil {
			return nil, errors.Wrapf(err, "failed to register %s gauge", q)
		}
		p.gauges[q] = g
	}
	return p, nil
}

func (p *Prometheus) Publish(q ens161.Quantity, v float64) {
	if g, ok := p.gauges[q]; ok {
		g.WithLabelValues(p.device).Set(v)
	}
}

// SetStatus records the device health.
func (p *Prometheus) SetStatus(failed, warning bool) {
	state := StateOK
	switch {
	case failed:
		state = StateFailed
	case warning:
		state = StateWarning
	}
	for _, s := range []string{StateOK, StateWarning, StateFailed} {
		v := 0.0
		if s == state {
			v = 1
		}
		p.status.WithLabelValues(p.device, s).Set(v)
	}
}
