// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GermanBionicSystems/ens161/ens161"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reading struct {
	q ens161.Quantity
	v float64
}

type collector []reading

func (c *collector) Publish(q ens161.Quantity, v float64) {
	*c = append(*c, reading{q, v})
}

func TestSinks(t *testing.T) {
	var a, b collector
	sinks := Sinks(Fanout{&a, &b}, []ens161.Quantity{ens161.TVOC, ens161.HCHO})
	require.Len(t, sinks, 2)
	assert.Nil(t, sinks[ens161.AQI])

	sinks[ens161.TVOC](300)
	sinks[ens161.HCHO](12.3)

	expected := collector{{ens161.TVOC, 300}, {ens161.HCHO, 12.3}}
	assert.Equal(t, expected, a)
	assert.Equal(t, expected, b)
}

func TestPublisherFunc(t *testing.T) {
	var got reading
	PublisherFunc(func(q ens161.Quantity, v float64) { got = reading{q, v} }).Publish(ens161.AQI, 3)
	assert.Equal(t, reading{ens161.AQI, 3}, got)
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "0x52", []ens161.Quantity{ens161.ECO2, ens161.HCHO})
	require.NoError(t, err)

	p.Publish(ens161.ECO2, 800)
	p.Publish(ens161.HCHO, 12.3)
	// Not registered, ignored.
	p.Publish(ens161.AQI, 2)

	assert.Equal(t, 800.0, testutil.ToFloat64(p.gauges[ens161.ECO2].WithLabelValues("0x52")))
	assert.Equal(t, 12.3, testutil.ToFloat64(p.gauges[ens161.HCHO].WithLabelValues("0x52")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.gauges[ens161.ECO2])+testutil.CollectAndCount(p.gauges[ens161.HCHO]))

	p.SetStatus(false, true)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.status.WithLabelValues("0x52", StateWarning)))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.status.WithLabelValues("0x52", StateOK)))
	p.SetStatus(true, true)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.status.WithLabelValues("0x52", StateFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.status.WithLabelValues("0x52", StateWarning)))
	p.SetStatus(false, false)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.status.WithLabelValues("0x52", StateOK)))

	// Registering twice on the same registry fails.
	_, err = NewPrometheus(reg, "0x52", nil)
	assert.Error(t, err)
}

type token struct {
	err     error
	timeout bool
}

func (t *token) Wait() bool                       { return !t.timeout }
func (t *token) WaitTimeout(_ time.Duration) bool { return !t.timeout }
func (t *token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *token) Error() error { return t.err }

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  interface{}
}

type fakeClient struct {
	sent []message
	tok  *token
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, message{topic, qos, retained, payload})
	return c.tok
}

func TestMQTT(t *testing.T) {
	c := &fakeClient{tok: &token{}}
	l, hook := test.NewNullLogger()
	m := NewMQTT(c, "home/air", l)

	m.Publish(ens161.HCHO, 12.3)
	m.Publish(ens161.ECO2, 400)

	assert.Equal(t, []message{
		{"home/air/hcho", 0, true, "12.3"},
		{"home/air/eco2", 0, true, "400"},
	}, c.sent)
	assert.Empty(t, hook.AllEntries())

	c.tok = &token{err: errors.New("not connected")}
	m.Publish(ens161.AQI, 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	hook.Reset()
	c.tok = &token{timeout: true}
	m.Publish(ens161.AQI, 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "mqtt publish timed out", hook.LastEntry().Message)
}

type fakeWriter struct {
	points []*write.Point
	err    error
}

func (w *fakeWriter) WritePoint(ctx context.Context, point ...*write.Point) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	w.points = append(w.points, point...)
	return w.err
}

func TestInflux(t *testing.T) {
	w := &fakeWriter{}
	l, hook := test.NewNullLogger()
	i := NewInflux(w, "air_quality", map[string]string{"device": "0x52"}, l)

	i.Publish(ens161.TVOC, 300)
	require.Len(t, w.points, 1)
	p := w.points[0]
	assert.Equal(t, "air_quality", p.Name())
	require.Len(t, p.TagList(), 1)
	assert.Equal(t, "device", p.TagList()[0].Key)
	assert.Equal(t, "0x52", p.TagList()[0].Value)
	require.Len(t, p.FieldList(), 1)
	assert.Equal(t, "tvoc", p.FieldList()[0].Key)
	assert.Equal(t, 300.0, p.FieldList()[0].Value)
	assert.Empty(t, hook.AllEntries())

	w.err = errors.New("unauthorized")
	i.Publish(ens161.TVOC, 310)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
