// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import "fmt"

// AnomalyType represents the different ways a frame can be dropped
type AnomalyType int

const (
	AnomalyUnfinishedFrame AnomalyType = iota
	AnomalyOversizeLength
	AnomalyLengthCRC
	AnomalyPayloadCRC
	AnomalyDecodeError
)

// String returns the counter name used in logs and statistics
func (a AnomalyType) String() string {
	switch a {
	case AnomalyUnfinishedFrame:
		return "unfinished_frame"
	case AnomalyOversizeLength:
		return "oversize_length"
	case AnomalyLengthCRC:
		return "length_crc"
	case AnomalyPayloadCRC:
		return "payload_crc"
	case AnomalyDecodeError:
		return "decode_error"
	default:
		return "unknown"
	}
}

// FramingAnomaly describes a discarded frame. The deframer never returns it
// to RPC callers; it is logged, counted and passed to Link.OnAnomaly.
type FramingAnomaly struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (a *FramingAnomaly) Error() string {
	return a.Message
}

func newUnfinishedAnomaly(received, declared int) *FramingAnomaly {
	return &FramingAnomaly{
		Type:    AnomalyUnfinishedFrame,
		Message: fmt.Sprintf("unfinished frame (%d/%d) interrupted by SOF", received, declared),
		Details: map[string]interface{}{"received": received, "declared": declared},
	}
}

func newOversizeAnomaly(declared int) *FramingAnomaly {
	return &FramingAnomaly{
		Type:    AnomalyOversizeLength,
		Message: fmt.Sprintf("declared length %d exceeds max %d", declared, MaxMessageSize),
		Details: map[string]interface{}{"declared": declared, "max": MaxMessageSize},
	}
}

func newCRCAnomaly(kind AnomalyType, calculated, received uint16) *FramingAnomaly {
	what := "payload"
	if kind == AnomalyLengthCRC {
		what = "length"
	}
	return &FramingAnomaly{
		Type:    kind,
		Message: fmt.Sprintf("%s CRC mismatch: expected 0x%04X, got 0x%04X", what, calculated, received),
		Details: map[string]interface{}{"calculated": calculated, "received": received},
	}
}

func newDecodeAnomaly(length int, err error) *FramingAnomaly {
	return &FramingAnomaly{
		Type:    AnomalyDecodeError,
		Message: fmt.Sprintf("failed to decode %d byte message: %v", length, err),
		Details: map[string]interface{}{"length": length, "error": err.Error()},
	}
}
