// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"testing"
	"time"
)

// fakeDevice is a scripted VisionSeed on the far side of an in-memory
// transport. It deframes everything the host writes and answers each
// request through handler.
type fakeDevice struct {
	t       *testing.T
	rx      []byte // device -> host bytes not yet read
	decoder *Decoder
	codec   *CBORCodec

	handler  func(req *Rpc) []*Message
	requests []*Rpc
}

func newFakeDevice(t *testing.T, handler func(req *Rpc) []*Message) *fakeDevice {
	t.Helper()
	return &fakeDevice{
		t:       t,
		decoder: NewDecoder(),
		codec:   NewCBORCodec(),
		handler: handler,
	}
}

// Read returns 0, nil when nothing is pending, like a serial port timeout
func (f *fakeDevice) Read(p []byte) (int, error) {
	if len(f.rx) == 0 {
		return 0, nil
	}
	n := copy(p, f.rx)
	f.rx = f.rx[n:]
	return n, nil
}

func (f *fakeDevice) Write(p []byte) (int, error) {
	for _, b := range p {
		frame, err := f.decoder.DecodeByte(b)
		if err != nil {
			f.t.Errorf("host sent a bad frame: %v", err)
			continue
		}
		if frame == nil {
			continue
		}
		msg := &Message{}
		if err := f.codec.Unmarshal(frame.Payload(), msg); err != nil {
			f.t.Errorf("host sent an undecodable message: %v", err)
			continue
		}
		if msg.Rpc == nil {
			f.t.Errorf("host sent %s, want RPC", FormatMessageKind(msg.Kind()))
			continue
		}
		f.requests = append(f.requests, msg.Rpc)
		if f.handler != nil {
			for _, reply := range f.handler(msg.Rpc) {
				f.push(reply)
			}
		}
	}
	return len(p), nil
}

// push queues a framed message for the host
func (f *fakeDevice) push(m *Message) {
	f.t.Helper()
	payload, err := f.codec.Marshal(m)
	if err != nil {
		f.t.Fatalf("failed to marshal reply: %v", err)
	}
	f.pushPayload(payload)
}

// pushPayload frames arbitrary payload bytes for the host
func (f *fakeDevice) pushPayload(payload []byte) {
	f.t.Helper()
	frame, err := EncodeFrame(payload)
	if err != nil {
		f.t.Fatalf("EncodeFrame failed: %v", err)
	}
	f.rx = append(f.rx, frame...)
}

// pushRaw queues raw wire bytes, no framing
func (f *fakeDevice) pushRaw(b []byte) {
	f.rx = append(f.rx, b...)
}

func newTestLink(dev *fakeDevice) *Link {
	return NewLink(dev, Config{RpcTimeout: 500 * time.Millisecond})
}

// ok answers a request with SUCCESS
func ok(req *Rpc) *Message {
	return &Message{Response: &Response{Sequence: req.Sequence, Code: StatusSuccess}}
}

// fail answers a request with the given status
func fail(req *Rpc, code StatusCode) *Message {
	return &Message{Response: &Response{Sequence: req.Sequence, Code: code}}
}

// rawFrame builds a wire frame from an unescaped body (length, CRCs and
// payload written by the caller)
func rawFrame(body ...byte) []byte {
	return append([]byte{SOFByte}, EscapeBytes(body)...)
}

// feed pushes bytes through a decoder and collects frames and anomalies
func feed(d *Decoder, data []byte) ([]*Frame, []*FramingAnomaly) {
	var frames []*Frame
	var anomalies []*FramingAnomaly
	for _, b := range data {
		frame, err := d.DecodeByte(b)
		if err != nil {
			anomalies = append(anomalies, err.(*FramingAnomaly))
			continue
		}
		if frame != nil {
			frames = append(frames, frame)
		}
	}
	return frames, anomalies
}
