// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sink

import (
	"strconv"
	"time"

	"github.com/GermanBionicSystems/ens161/ens161"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	qos            byte = 0
	publishTimeout      = 5 * time.Second
)

// MQTTPublisher is the part of mqtt.Client used by MQTT.
type MQTTPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes each reading as a retained text message to
// <prefix>/<quantity>.
type MQTT struct {
	c      MQTTPublisher
	prefix string
	log    logrus.FieldLogger
}

func NewMQTT(c MQTTPublisher, prefix string, log logrus.FieldLogger) *MQTT {
	return &MQTT{c: c, prefix: prefix, log: log}
}

func (m *MQTT) Publish(q ens161.Quantity, v float64) {
	topic := m.prefix + "/" + q.String()
	token := m.c.Publish(topic, qos, true, strconv.FormatFloat(v, 'f', -1, 64))
	if !token.WaitTimeout(publishTimeout) {
		m.log.WithField("topic", topic).Warn("mqtt publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		m.log.WithError(err).WithField("topic", topic).Warn("mqtt publish failed")
	}
}

// DialMQTT connects to broker.
func DialMQTT(broker, clientID, username, password string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetAutoReconnect(true)
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "failed to connect to mqtt broker %s", broker)
	}
	return c, nil
}
