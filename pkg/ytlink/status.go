// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import "fmt"

// StatusCode is the result code carried in every RPC response
type StatusCode int32

// Status code values
const (
	StatusSuccess          StatusCode = 0
	StatusContinue         StatusCode = 1
	StatusUnknownFunc      StatusCode = -1
	StatusInvalidParam     StatusCode = -2
	StatusAuthFailed       StatusCode = -3
	StatusFileNotFound     StatusCode = -4
	StatusFileIO           StatusCode = -5
	StatusNoSpace          StatusCode = -6
	StatusBusy             StatusCode = -7
	StatusTimeout          StatusCode = -8
	StatusNoFace           StatusCode = -9
	StatusMultipleFaces    StatusCode = -10
	StatusFaceLibFull      StatusCode = -11
	StatusFaceIDNotFound   StatusCode = -12
	StatusFaceNameNotFound StatusCode = -13
	StatusLowQuality       StatusCode = -14
	StatusImageDecode      StatusCode = -15
	StatusConfigInvalid    StatusCode = -16
	StatusOffsetMismatch   StatusCode = -17
)

var statusMessages = map[StatusCode]string{
	StatusSuccess:          "success",
	StatusContinue:         "continue",
	StatusUnknownFunc:      "unknown function",
	StatusInvalidParam:     "invalid parameter",
	StatusAuthFailed:       "authentication failed",
	StatusFileNotFound:     "file not found",
	StatusFileIO:           "file read/write error",
	StatusNoSpace:          "no space left on device",
	StatusBusy:             "device busy",
	StatusTimeout:          "operation timed out on device",
	StatusNoFace:           "no face detected",
	StatusMultipleFaces:    "more than one face detected",
	StatusFaceLibFull:      "face library is full",
	StatusFaceIDNotFound:   "face id not found",
	StatusFaceNameNotFound: "face name not found",
	StatusLowQuality:       "face quality too low",
	StatusImageDecode:      "failed to decode image",
	StatusConfigInvalid:    "invalid config content",
	StatusOffsetMismatch:   "file part offset mismatch",
}

// Message resolves the human-readable text for a status code
func (c StatusCode) Message() string {
	if msg, ok := statusMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error code %d", int32(c))
}

// OK reports whether the code lets the call complete
func (c StatusCode) OK() bool {
	return c == StatusSuccess || c == StatusContinue
}
