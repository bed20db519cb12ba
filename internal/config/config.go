// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the exporter configuration from command line flags,
// ENS161_* environment variables and an optional YAML file, in that order
// of precedence.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/GermanBionicSystems/ens161/ens161"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"periph.io/x/conn/v3/physic"
)

// Largest temperature in °C the TEMP_IN register can hold.
const maxTemperature = 1023.98

// Config is the exporter configuration.
type Config struct {
	Bus            string
	Address        uint16
	UpdateInterval time.Duration
	Sensors        []ens161.Quantity
	// Compensation values written at startup.
	Temperature physic.Temperature
	Humidity    physic.RelativeHumidity
	LogLevel    logrus.Level
	Metrics     MetricsConfig
	MQTT        MQTTConfig
	Influx      InfluxConfig
}

type MetricsConfig struct {
	Listen string
}

// MQTTConfig is disabled when Broker is empty.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// InfluxConfig is disabled when URL is empty.
type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// Load registers the exporter flags on fs, parses args and returns the
// resulting configuration.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	fs.String("config", "", "configuration file, defaults to ens161.yaml in . or /etc/ens161")
	fs.String("i2c.bus", "", "I²C bus name or number, empty for the first available bus")
	fs.String("i2c.address", "0x52", "I²C address of the sensor, 0x52 or 0x53")
	fs.Duration("update_interval", 60*time.Second, "interval between sensor reads")
	fs.StringSlice("sensors", []string{"aqi", "tvoc", "eco2"}, "quantities to publish: aqi, tvoc, eco2, hcho, hp0..hp3")
	fs.Float64("compensation.temperature", 24, "ambient temperature compensation in °C")
	fs.Float64("compensation.humidity", 40, "relative humidity compensation in %")
	fs.String("log_level", "info", "log level")
	fs.String("metrics.listen", ":8080", "address serving /metrics, empty to disable")
	fs.String("mqtt.broker", "", "MQTT broker URL, empty to disable")
	fs.String("mqtt.client_id", "ens161", "MQTT client id")
	fs.String("mqtt.username", "", "MQTT user name")
	fs.String("mqtt.password", "", "MQTT password")
	fs.String("mqtt.topic_prefix", "sensors/ens161", "MQTT topic prefix")
	fs.String("influx.url", "", "InfluxDB URL, empty to disable")
	fs.String("influx.token", "", "InfluxDB token")
	fs.String("influx.org", "", "InfluxDB organization")
	fs.String("influx.bucket", "", "InfluxDB bucket")
	fs.String("influx.measurement", "air_quality", "InfluxDB measurement")
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "failed to parse flags")
	}

	v := viper.New()
	v.SetEnvPrefix("ens161")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else {
		v.SetConfigName("ens161")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/ens161")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Bus:            v.GetString("i2c.bus"),
		UpdateInterval: v.GetDuration("update_interval"),
		Metrics: MetricsConfig{
			Listen: v.GetString("metrics.listen"),
		},
		MQTT: MQTTConfig{
			Broker:      v.GetString("mqtt.broker"),
			ClientID:    v.GetString("mqtt.client_id"),
			Username:    v.GetString("mqtt.username"),
			Password:    v.GetString("mqtt.password"),
			TopicPrefix: strings.TrimSuffix(v.GetString("mqtt.topic_prefix"), "/"),
		},
		Influx: InfluxConfig{
			URL:         v.GetString("influx.url"),
			Token:       v.GetString("influx.token"),
			Org:         v.GetString("influx.org"),
			Bucket:      v.GetString("influx.bucket"),
			Measurement: v.GetString("influx.measurement"),
		},
	}

	a, err := strconv.ParseUint(v.GetString("i2c.address"), 0, 16)
	if err != nil {
		return nil, errors.Wrap(err, "invalid i2c.address")
	}
	cfg.Address = uint16(a)
	if cfg.Address != ens161.DefaultAddress && cfg.Address != ens161.AlternateAddress {
		return nil, errors.Errorf("invalid i2c.address 0x%x, expected 0x52 or 0x53", cfg.Address)
	}

	if cfg.UpdateInterval <= 0 {
		return nil, errors.Errorf("invalid update_interval %s", cfg.UpdateInterval)
	}

	// Environment variables arrive as a single string; accept commas too.
	seen := map[ens161.Quantity]bool{}
	for _, s := range v.GetStringSlice("sensors") {
		for _, name := range strings.Split(s, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			q, err := ens161.ParseQuantity(name)
			if err != nil {
				return nil, errors.Wrap(err, "invalid sensors")
			}
			if !seen[q] {
				seen[q] = true
				cfg.Sensors = append(cfg.Sensors, q)
			}
		}
	}
	if len(cfg.Sensors) == 0 {
		return nil, errors.New("no sensors configured")
	}

	t := v.GetFloat64("compensation.temperature")
	if t < 0 || t > maxTemperature {
		return nil, errors.Errorf("invalid compensation.temperature %g, expected 0 to %g", t, maxTemperature)
	}
	cfg.Temperature = physic.ZeroCelsius + physic.Temperature(t*float64(physic.Kelvin))
	h := v.GetFloat64("compensation.humidity")
	if h < 0 || h > 100 {
		return nil, errors.Errorf("invalid compensation.humidity %g", h)
	}
	cfg.Humidity = physic.RelativeHumidity(h * float64(physic.PercentRH))

	if cfg.LogLevel, err = logrus.ParseLevel(v.GetString("log_level")); err != nil {
		return nil, errors.Wrap(err, "invalid log_level")
	}

	if cfg.Influx.URL != "" && (cfg.Influx.Org == "" || cfg.Influx.Bucket == "") {
		return nil, errors.New("influx.org and influx.bucket are required with influx.url")
	}
	return cfg, nil
}
