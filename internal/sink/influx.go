// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sink

import (
	"context"
	"time"

	"github.com/GermanBionicSystems/ens161/ens161"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// PointWriter is the part of api.WriteAPIBlocking used by Influx.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Influx writes one point per reading, with the quantity as field name.
type Influx struct {
	w           PointWriter
	measurement string
	tags        map[string]string
	log         logrus.FieldLogger
}

func NewInflux(w PointWriter, measurement string, tags map[string]string, log logrus.FieldLogger) *Influx {
	return &Influx{w: w, measurement: measurement, tags: tags, log: log}
}

func (i *Influx) Publish(q ens161.Quantity, v float64) {
	p := influxdb2.NewPoint(i.measurement, i.tags, map[string]interface{}{q.String(): v}, time.Now())
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := i.w.WritePoint(ctx, p); err != nil {
		i.log.WithError(err).WithField("quantity", q).Warn("influx write failed")
	}
}

// DialInflux returns a blocking writer for bucket and a function closing
// the client.
func DialInflux(url, token, org, bucket string) (PointWriter, func()) {
	c := influxdb2.NewClient(url, token)
	return c.WriteAPIBlocking(org, bucket), c.Close
}
