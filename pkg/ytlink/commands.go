// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import "k8s.io/utils/ptr"

// Request builder functions create Rpc structs ready for Link.SendRpc.
// The sequence id is stamped by the link.

// NewRpc creates a request with no parameters
func NewRpc(fn Func) *Rpc {
	return &Rpc{Func: fn}
}

// NewIntRpc creates a request carrying a single integer parameter
func NewIntRpc(fn Func, value int32) *Rpc {
	return &Rpc{Func: fn, IntParams: ptr.To(value)}
}

// NewStrRpc creates a request carrying a single string parameter
func NewStrRpc(fn Func, value string) *Rpc {
	return &Rpc{Func: fn, StrParams: value}
}

// NewUploadFilePart creates one upload part (FuncUploadFile)
func NewUploadFilePart(path, auth string, total, offset int, chunk []byte) *Rpc {
	return &Rpc{
		Func: FuncUploadFile,
		Auth: auth,
		FilePart: &FilePart{
			Path:        path,
			TotalLength: uint32(total),
			Offset:      uint32(offset),
			Data:        chunk,
		},
	}
}

// NewSetConfig creates a SET_CONFIG request; the whole blob travels as one part
func NewSetConfig(domain string, content []byte) *Rpc {
	return &Rpc{
		Func: FuncSetConfig,
		FilePart: &FilePart{
			Path:        domain,
			TotalLength: uint32(len(content)),
			Offset:      0,
			Data:        content,
		},
	}
}

// NewCamExposure creates a SET_EXPOSURE request.
// timeUs and gain are ignored by the device in automatic mode.
func NewCamExposure(camID int32, mode ExposureType, timeUs, gain int32) *Rpc {
	params := &CameraExposureParams{Type: mode, CamID: camID}
	if mode == ExposureManual {
		params.TimeUs = timeUs
		params.Gain = gain
	}
	return &Rpc{Func: FuncSetExposure, CameraExposureParams: params}
}

// NewSetFlasher creates a SET_FLASHER request (IR intensity)
func NewSetFlasher(ir int32) *Rpc {
	return &Rpc{Func: FuncSetFlasher, FlasherParams: &FlasherParams{IR: ir}}
}

// NewDeleteFile creates a DELETE_FILE request
func NewDeleteFile(path, auth string) *Rpc {
	return &Rpc{Func: FuncDeleteFile, StrParams: path, Auth: auth}
}

// NewSetFaceID creates a SET_FACE_ID request (rename an entry)
func NewSetFaceID(faceID int32, faceName string) *Rpc {
	return &Rpc{
		Func:            FuncSetFaceID,
		SetFaceIDParams: &SetFaceIDParams{FaceID: faceID, FaceName: faceName},
	}
}

// NewRegisterFaceIDFromCamera registers the next face the camera sees
func NewRegisterFaceIDFromCamera(faceName string, timeoutMs int32) *Rpc {
	return &Rpc{
		Func: FuncRegisterFaceIDFromCamera,
		RegisterFaceIDFromCameraParams: &RegisterFaceIDFromCameraParams{
			FaceName:  faceName,
			TimeoutMs: timeoutMs,
		},
	}
}

// NewRegisterFaceIDWithPic registers a face from a picture already on the device
func NewRegisterFaceIDWithPic(remoteFile, faceName string) *Rpc {
	return &Rpc{
		Func: FuncRegisterFaceIDWithPic,
		RegisterFaceIDWithPicParams: &RegisterFaceIDWithPicParams{
			FilePath: remoteFile,
			FaceName: faceName,
		},
	}
}

// NewListFaceID requests one page of the face library
func NewListFaceID(start, length int32) *Rpc {
	return &Rpc{
		Func:             FuncListFaceID,
		ListFaceIDParams: &ListFaceIDParams{Start: start, Length: length},
	}
}
