// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import "time"

// Frame is a dual-CRC validated frame payload
type Frame struct {
	length    int
	lengthCRC uint16
	payload   []byte
	crc       uint16
	timestamp time.Time
}

// Length returns the declared payload length
func (f *Frame) Length() int {
	return f.length
}

// LengthCRC returns the validated CRC of the length field
func (f *Frame) LengthCRC() uint16 {
	return f.lengthCRC
}

// Payload returns the frame payload (the serialized message)
func (f *Frame) Payload() []byte {
	return f.payload
}

// CRC returns the validated payload CRC
func (f *Frame) CRC() uint16 {
	return f.crc
}

// Timestamp returns the frame decode time
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// Decoder implements the YtMsg frame reassembly state machine
type Decoder struct {
	state       int
	escapeNext  bool
	msgLen      int
	crcRecv     uint16 // CRC bytes as received
	crcCalc     uint16 // running CRC of the current domain
	lenCRC      uint16
	buffer      []byte // frame buffer, reused across frames
	bufferIndex int
	bulkRequest int // bytes the deframer may read in one go
}

// NewDecoder creates a new protocol decoder
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.Reset()
	return d
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.escapeNext = false
	d.msgLen = 0
	d.crcRecv = 0
	d.crcCalc = crcInitial
	d.bufferIndex = 0
	d.bulkRequest = 0
}

// Idle reports whether the decoder is between frames
func (d *Decoder) Idle() bool {
	return d.state == stateIdle
}

// takeBulkRequest returns the payload length announced by a frame whose
// length CRC just validated, once per frame.
func (d *Decoder) takeBulkRequest() int {
	n := d.bulkRequest
	d.bulkRequest = 0
	return n
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed frame, or nil if the frame is incomplete.
// A non-nil error is always a *FramingAnomaly; the decoder has already
// recovered from it and may be fed the next byte.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	if b == SOFByte {
		var anomaly error
		if d.state != stateIdle {
			anomaly = newUnfinishedAnomaly(d.bufferIndex, d.msgLen)
		}
		d.Reset()
		d.state = stateLen1
		return nil, anomaly
	}

	if b == TransByte {
		d.escapeNext = true
		return nil, nil
	}

	if d.escapeNext {
		b ^= TransXor
		d.escapeNext = false
	}

	switch d.state {
	case stateIdle:
		// Waiting for SOF
		return nil, nil

	case stateLen1, stateLen2, stateLen3:
		d.crcCalc = CRCUpdate(d.crcCalc, b, d.state == stateLen1)
		d.msgLen = d.msgLen<<8 | int(b)
		if d.state == stateLen3 && d.msgLen > MaxMessageSize {
			declared := d.msgLen
			d.Reset()
			return nil, newOversizeAnomaly(declared)
		}
		d.state++
		return nil, nil

	case stateLenCRCHi:
		d.crcRecv = uint16(b) << 8
		d.state = stateLenCRCLo
		return nil, nil

	case stateLenCRCLo:
		d.crcRecv |= uint16(b)
		if d.crcRecv != d.crcCalc {
			anomaly := newCRCAnomaly(AnomalyLengthCRC, d.crcCalc, d.crcRecv)
			d.Reset()
			return nil, anomaly
		}
		d.lenCRC = d.crcRecv
		if cap(d.buffer) < d.msgLen {
			d.buffer = make([]byte, d.msgLen)
		}
		d.buffer = d.buffer[:d.msgLen]
		d.bufferIndex = 0
		if d.msgLen == 0 {
			// Nothing to fold: the payload CRC of an empty payload is the initial value
			d.crcCalc = crcInitial
			d.state = stateCRCHi
			return nil, nil
		}
		d.bulkRequest = d.msgLen
		d.state = stateData
		return nil, nil

	case stateData:
		d.crcCalc = CRCUpdate(d.crcCalc, b, d.bufferIndex == 0)
		d.buffer[d.bufferIndex] = b
		d.bufferIndex++
		if d.bufferIndex == d.msgLen {
			d.state = stateCRCHi
		}
		return nil, nil

	case stateCRCHi:
		d.crcRecv = uint16(b) << 8
		d.state = stateCRCLo
		return nil, nil

	case stateCRCLo:
		d.crcRecv |= uint16(b)
		if d.crcRecv != d.crcCalc {
			anomaly := newCRCAnomaly(AnomalyPayloadCRC, d.crcCalc, d.crcRecv)
			d.Reset()
			return nil, anomaly
		}

		payload := make([]byte, d.msgLen)
		copy(payload, d.buffer[:d.msgLen])
		frame := &Frame{
			length:    d.msgLen,
			lengthCRC: d.lenCRC,
			payload:   payload,
			crc:       d.crcRecv,
			timestamp: time.Now(),
		}

		d.Reset()
		return frame, nil

	default:
		d.Reset()
		return nil, nil
	}
}
