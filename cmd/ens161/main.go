// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ens161 reads an ENS161 air quality sensor on a fixed interval and exports
// the readings to Prometheus, and optionally to MQTT and InfluxDB.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/ens161/ens161"
	"github.com/GermanBionicSystems/ens161/internal/config"
	"github.com/GermanBionicSystems/ens161/internal/poller"
	"github.com/GermanBionicSystems/ens161/internal/sink"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := mainImpl(); err != nil {
		log.Fatal(err)
	}
}

func mainImpl() error {
	cfg, err := config.Load(pflag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}
	log.SetLevel(cfg.LogLevel)

	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize periph")
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return errors.Wrap(err, "failed to open I²C bus")
	}
	defer bus.Close()

	device := fmt.Sprintf("0x%02x", cfg.Address)
	logger := log.WithField("address", device)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewBuildInfoCollector())
	prom, err := sink.NewPrometheus(reg, device, cfg.Sensors)
	if err != nil {
		return err
	}
	pubs := sink.Fanout{prom}

	if cfg.MQTT.Broker != "" {
		c, err := sink.DialMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password)
		if err != nil {
			return err
		}
		defer c.Disconnect(250)
		pubs = append(pubs, sink.NewMQTT(c, cfg.MQTT.TopicPrefix, logger))
	}
	if cfg.Influx.URL != "" {
		w, closeInflux := sink.DialInflux(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
		defer closeInflux()
		pubs = append(pubs, sink.NewInflux(w, cfg.Influx.Measurement, map[string]string{"device": device}, logger))
	}

	opts := ens161.Opts{
		Sinks:       sink.Sinks(pubs, cfg.Sensors),
		Temperature: cfg.Temperature,
		Humidity:    cfg.Humidity,
		Logger:      logger,
	}
	dev, err := ens161.NewI2C(bus, cfg.Address, &opts)
	if dev == nil {
		return err
	}
	// A device that failed setup stays visible through the status gauge.
	if err != nil {
		logger.WithError(err).Error("device setup failed, not polling")
	}

	p := poller.New(dev, cfg.UpdateInterval, &poller.Opts{Logger: logger, OnStatus: prom.SetStatus})
	p.Start()
	defer func() { <-p.Stop().Done() }()

	var srv *http.Server
	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
		srv = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Fatal("metrics server failed")
			}
		}()
		log.Infof("serving metrics on %s", cfg.Metrics.Listen)
	}

	log.Infof("polling %s every %s", dev, cfg.UpdateInterval)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
	return nil
}
