// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ens161

import (
	"errors"
	"fmt"
)

// ErrFailed is returned by Update and Sense once setup has failed. The
// device is not polled again.
var ErrFailed = errors.New("ens161: device failed setup")

// TransportError is returned when a register transaction on the bus did not
// complete.
type TransportError struct {
	// Op is "read" or "write".
	Op       string
	Register byte
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ens161: %s register 0x%02x: %v", e.Op, e.Register, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IdentityMismatchError is returned when the part id register holds a value
// other than the ENS160 or ENS161 identifiers.
type IdentityMismatchError struct {
	PartID uint16
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("ens161: invalid part id 0x%04x, expected 0x%04x or 0x%04x", e.PartID, PartIDENS160, PartIDENS161)
}
