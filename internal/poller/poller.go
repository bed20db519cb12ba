// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package poller calls a device's Update on a fixed interval.
package poller

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Device is the part of *ens161.Dev driven by the poller.
type Device interface {
	Update() error
	Failed() bool
	Warning() bool
}

// Opts holds the optional settings of a Poller.
type Opts struct {
	Logger logrus.FieldLogger
	// OnStatus is called after every cycle with the device health.
	OnStatus func(failed, warning bool)
}

// Poller serializes calls to Device.Update: a tick is skipped while the
// previous cycle is still running.
type Poller struct {
	dev      Device
	log      logrus.FieldLogger
	onStatus func(failed, warning bool)
	cron     *cron.Cron
}

// New returns a poller updating dev every interval. Intervals below one
// second are rounded up to one second.
func New(dev Device, interval time.Duration, opts *Opts) *Poller {
	if opts == nil {
		opts = &Opts{}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Poller{dev: dev, log: log, onStatus: opts.OnStatus}
	l := cron.PrintfLogger(log)
	p.cron = cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	p.cron.Schedule(cron.Every(interval), cron.FuncJob(p.Poll))
	return p
}

// Start runs a first cycle immediately, then one per interval in the
// background.
func (p *Poller) Start() {
	p.Poll()
	p.cron.Start()
}

// Stop stops scheduling cycles. The returned context is done once a running
// cycle has completed.
func (p *Poller) Stop() context.Context {
	return p.cron.Stop()
}

// Poll runs a single cycle. Failed devices are not updated.
func (p *Poller) Poll() {
	if !p.dev.Failed() {
		if err := p.dev.Update(); err != nil {
			p.log.WithError(err).Warn("update failed")
		}
	}
	if p.onStatus != nil {
		p.onStatus(p.dev.Failed(), p.dev.Warning())
	}
}
