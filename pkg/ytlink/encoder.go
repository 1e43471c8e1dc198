// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import "fmt"

// EncodeFrame wraps a payload into a complete wire frame:
// [SOF, len(3, BE), lenCRC(2, BE), payload..., crc(2, BE)]
// Every byte after SOF equal to SOF or TRANS is escaped.
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrMessageTooLarge, len(payload), MaxMessageSize)
	}

	n := len(payload)
	data := make([]byte, 0, n+FrameOverhead-1)
	data = append(data, byte(n>>16), byte(n>>8), byte(n))

	lcrc := lengthCRC(n)
	data = append(data, byte(lcrc>>8), byte(lcrc))
	data = append(data, payload...)

	crc := CalculateCRC(payload)
	data = append(data, byte(crc>>8), byte(crc))

	frame := make([]byte, 0, len(data)+escapeCount(data)+1)
	frame = append(frame, SOFByte)
	return appendEscaped(frame, data), nil
}

// escapeCount returns how many bytes of data need a TRANS prefix
func escapeCount(data []byte) int {
	count := 0
	for _, b := range data {
		if needsEscape(b) {
			count++
		}
	}
	return count
}

func needsEscape(b byte) bool {
	return b == SOFByte || b == TransByte
}

// appendEscaped appends data to dst, replacing SOF/TRANS with TRANS + (b ^ TransXor)
func appendEscaped(dst, data []byte) []byte {
	for _, b := range data {
		if needsEscape(b) {
			dst = append(dst, TransByte, b^TransXor)
		} else {
			dst = append(dst, b)
		}
	}
	return dst
}

// EscapeBytes applies byte transparency to data (no SOF is added)
func EscapeBytes(data []byte) []byte {
	return appendEscaped(make([]byte, 0, len(data)+escapeCount(data)), data)
}

// UnescapeBytes removes byte transparency from escaped data.
// This is the inverse of EscapeBytes.
func UnescapeBytes(data []byte) ([]byte, error) {
	result := make([]byte, 0, len(data))
	escapeNext := false

	for _, b := range data {
		if escapeNext {
			result = append(result, b^TransXor)
			escapeNext = false
		} else if b == TransByte {
			escapeNext = true
		} else {
			result = append(result, b)
		}
	}

	if escapeNext {
		return nil, fmt.Errorf("incomplete escape sequence at end of data")
	}

	return result, nil
}
