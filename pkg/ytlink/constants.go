// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package ytlink provides a host-side Go implementation of the VisionSeed
// YtMsg serial protocol.
//
// The package covers the data-link framing (byte transparency plus two
// CRC-16-CCITT checks per frame), RPC correlation, chunked file upload and
// the DataV2 result decoder that turns an inference payload into a typed,
// path-addressable result tree.
package ytlink

// Protocol framing bytes
const (
	SOFByte   = 0x10
	TransByte = 0x11
	TransXor  = 0x11
)

// Size limits
const (
	MaxMessageSize = 2097152 // declared length upper bound (3-byte field)
	MaxChunkSize   = 131072  // file upload part size
	FrameOverhead  = 8       // SOF + 3 length + 2 length CRC + 2 payload CRC
)

// CRC-16-CCITT configuration
const (
	crcInitial = 0xFFFF
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateLen1
	stateLen2
	stateLen3
	stateLenCRCHi
	stateLenCRCLo
	stateData
	stateCRCHi
	stateCRCLo
)

// Deframer refill policy
const (
	defaultReadSize        = 16
	defaultRefillThreshold = 10
)

// Upload defaults
const (
	defaultChunkAttempts = 11 // 1 initial + 10 retries
	faceRegisterPath     = "/tmp/reg.jpg"
	faceListPageSize     = 100
)

// Model identifies the first path segment of a DataV2 result.
type Model uint8

// Model values
const (
	ModelFaceDetection Model = iota + 1
	ModelFaceLandmark
	ModelFacePose
	ModelFaceQuality
	ModelFaceRecognition
	ModelFaceLivenessRGB
	ModelFaceLivenessIR
	ModelEyeStatus
	ModelMouthStatus
	ModelDetectionTrace
	ModelObjectDetection
	ModelQRCode
)

// DataType is the DataV2 entry type tag.
type DataType uint8

// DataType values
const (
	DataClassification DataType = iota
	DataRect
	DataArray
	DataString
	DataPoints
	DataVarUint32
)

// Func identifies an RPC function on the device.
type Func uint32

// RPC function codes
const (
	FuncSetExposure Func = iota + 1
	FuncSetFlasher
	FuncSetMainCamera
	FuncSetCameraRotation
	FuncSetDebugDrawing
	FuncListFile
	FuncDeleteFile
	FuncUploadFile
	FuncGetConfig
	FuncSetConfig
	FuncResetConfig
	FuncGetDeviceInfo
	FuncGetTracePic
	FuncGetFacePic
	FuncClearFaceLib
	FuncSetFaceID
	FuncRegisterFaceIDFromCamera
	FuncRegisterFaceIDWithPic
	FuncDeleteFaceID
	FuncDeleteFaceName
	FuncListFaceID
)

// ExposureType selects automatic or manual camera exposure.
type ExposureType uint8

// Exposure types
const (
	ExposureManual ExposureType = 0x00
	ExposureAuto   ExposureType = 0x01
)
