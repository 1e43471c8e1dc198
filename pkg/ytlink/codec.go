// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec serializes the Message envelope carried inside a frame payload.
type Codec interface {
	Marshal(msg *Message) ([]byte, error)
	Unmarshal(data []byte, msg *Message) error
	Name() string
}

// CBORCodec encodes messages as integer-keyed CBOR maps
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBORCodec creates the default envelope codec.
// Encoding is deterministic so identical messages produce identical frames.
func NewCBORCodec() *CBORCodec {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ytlink: cbor enc mode: %v", err))
	}
	dec, err := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("ytlink: cbor dec mode: %v", err))
	}
	return &CBORCodec{enc: enc, dec: dec}
}

// Marshal encodes a message
func (c *CBORCodec) Marshal(msg *Message) ([]byte, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}
	data, err := c.enc.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a message
func (c *CBORCodec) Unmarshal(data []byte, msg *Message) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR payload")
	}
	if err := c.dec.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to decode CBOR: %w", err)
	}
	return msg.validate()
}

// Name returns the codec name
func (c *CBORCodec) Name() string {
	return "cbor"
}
