// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"fmt"
	"time"
)

// Message is the envelope carried in a frame payload. Exactly one of the
// fields is set.
type Message struct {
	Rpc      *Rpc         `cbor:"1,keyasint,omitempty"`
	Response *Response    `cbor:"2,keyasint,omitempty"`
	Result   *ResultEvent `cbor:"3,keyasint,omitempty"`

	// Set by the deframer, not serialized
	timestamp time.Time
}

// Timestamp returns the decode time of a received message
func (m *Message) Timestamp() time.Time {
	return m.timestamp
}

// Rpc is a request sent from host to device
type Rpc struct {
	Sequence  uint32 `cbor:"0,keyasint"`
	Func      Func   `cbor:"1,keyasint"`
	Auth      string `cbor:"2,keyasint,omitempty"`
	IntParams *int32 `cbor:"3,keyasint,omitempty"`
	StrParams string `cbor:"4,keyasint,omitempty"`

	FilePart                       *FilePart                       `cbor:"5,keyasint,omitempty"`
	CameraExposureParams           *CameraExposureParams           `cbor:"6,keyasint,omitempty"`
	FlasherParams                  *FlasherParams                  `cbor:"7,keyasint,omitempty"`
	SetFaceIDParams                *SetFaceIDParams                `cbor:"8,keyasint,omitempty"`
	RegisterFaceIDFromCameraParams *RegisterFaceIDFromCameraParams `cbor:"9,keyasint,omitempty"`
	RegisterFaceIDWithPicParams    *RegisterFaceIDWithPicParams    `cbor:"10,keyasint,omitempty"`
	ListFaceIDParams               *ListFaceIDParams               `cbor:"11,keyasint,omitempty"`
}

// Response is the device answer to an Rpc with the same sequence id
type Response struct {
	Sequence uint32     `cbor:"0,keyasint"`
	Code     StatusCode `cbor:"1,keyasint"`
	IntData  *int32     `cbor:"2,keyasint,omitempty"`
	StrData  string     `cbor:"3,keyasint,omitempty"`

	FilePart       *FilePart       `cbor:"4,keyasint,omitempty"`
	FileListResult *FileListResult `cbor:"5,keyasint,omitempty"`
	FaceIDListData *FaceIDListData `cbor:"6,keyasint,omitempty"`
}

// ResultEvent is an unsolicited inference result pushed by the device
type ResultEvent struct {
	FrameID   uint32 `cbor:"0,keyasint"`
	Timestamp uint64 `cbor:"1,keyasint,omitempty"` // device uptime in ms
	Width     uint32 `cbor:"2,keyasint,omitempty"`
	Height    uint32 `cbor:"3,keyasint,omitempty"`
	DataV2    []byte `cbor:"4,keyasint,omitempty"`
}

// FilePart carries one chunk of a file or a config blob
type FilePart struct {
	Path        string `cbor:"0,keyasint"`
	TotalLength uint32 `cbor:"1,keyasint"`
	Offset      uint32 `cbor:"2,keyasint"`
	Data        []byte `cbor:"3,keyasint"`
}

// FileListResult lists the files of a remote directory
type FileListResult struct {
	Files []string `cbor:"0,keyasint"`
}

// FaceIDEntry is one face library record
type FaceIDEntry struct {
	FaceID   int32  `cbor:"0,keyasint"`
	FaceName string `cbor:"1,keyasint"`
}

// FaceIDListData is one page of the face library
type FaceIDListData struct {
	Faces []FaceIDEntry `cbor:"0,keyasint"`
}

// CameraExposureParams configures exposure for one camera
type CameraExposureParams struct {
	Type   ExposureType `cbor:"0,keyasint"`
	CamID  int32        `cbor:"1,keyasint"`
	TimeUs int32        `cbor:"2,keyasint,omitempty"`
	Gain   int32        `cbor:"3,keyasint,omitempty"`
}

// FlasherParams sets flasher intensity
type FlasherParams struct {
	IR    int32 `cbor:"0,keyasint"`
	White int32 `cbor:"1,keyasint,omitempty"`
}

// SetFaceIDParams renames a face library entry
type SetFaceIDParams struct {
	FaceID   int32  `cbor:"0,keyasint"`
	FaceName string `cbor:"1,keyasint"`
}

// RegisterFaceIDFromCameraParams registers the next face seen by the camera
type RegisterFaceIDFromCameraParams struct {
	FaceName  string `cbor:"0,keyasint"`
	TimeoutMs int32  `cbor:"1,keyasint"`
}

// RegisterFaceIDWithPicParams registers a face from a picture on the device
type RegisterFaceIDWithPicParams struct {
	FilePath string `cbor:"0,keyasint"`
	FaceName string `cbor:"1,keyasint"`
}

// ListFaceIDParams selects a page of the face library
type ListFaceIDParams struct {
	Start  int32 `cbor:"0,keyasint"`
	Length int32 `cbor:"1,keyasint"`
}

// MessageKind identifies which envelope branch is populated
type MessageKind int

// Message kinds
const (
	KindEmpty MessageKind = iota
	KindRpc
	KindResponse
	KindResult
)

// Kind returns the populated envelope branch
func (m *Message) Kind() MessageKind {
	switch {
	case m.Rpc != nil:
		return KindRpc
	case m.Response != nil:
		return KindResponse
	case m.Result != nil:
		return KindResult
	default:
		return KindEmpty
	}
}

// validate checks the exactly-one-branch invariant
func (m *Message) validate() error {
	n := 0
	if m.Rpc != nil {
		n++
	}
	if m.Response != nil {
		n++
	}
	if m.Result != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("message must carry exactly one of rpc/response/result, got %d", n)
	}
	return nil
}

// DecodeResult parses the DataV2 payload of a result event
func (e *ResultEvent) DecodeResult() *Result {
	return ParseResult(e.DataV2)
}
