// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout           = errors.New("ytlink: rpc timeout")
	ErrMessageTooLarge   = errors.New("ytlink: message too large")
	ErrSequenceExhausted = errors.New("ytlink: sequence id space exhausted")
	ErrEmptyPath         = errors.New("ytlink: empty remote path")
	ErrNoResponseData    = errors.New("ytlink: response carries no data")
)

// RpcError is returned when the device answers with a status other than
// SUCCESS or CONTINUE.
type RpcError struct {
	Func     Func
	Sequence uint32
	Code     StatusCode
	Message  string
}

// Error implements the error interface
func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc %s (seq %d) failed: %s (%d)", FormatFunc(e.Func), e.Sequence, e.Message, int32(e.Code))
}

// TransferError aborts a file upload after the chunk retry budget is spent.
type TransferError struct {
	Path     string
	Offset   int
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *TransferError) Error() string {
	return fmt.Sprintf("upload %s failed at offset %d after %d attempts: %v", e.Path, e.Offset, e.Attempts, e.Err)
}

// Unwrap returns the last RPC error
func (e *TransferError) Unwrap() error {
	return e.Err
}
