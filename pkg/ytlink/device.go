// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Device wraps a Link with the VisionSeed RPC calls
type Device struct {
	link *Link
}

// NewDevice creates a device handle over an open link
func NewDevice(link *Link) *Device {
	return &Device{link: link}
}

// Link returns the underlying link
func (d *Device) Link() *Link {
	return d.link
}

func (d *Device) call(req *Rpc) (*Response, error) {
	return d.link.SendRpc(req, 0)
}

// Camera

// SetCamAutoExposure switches a camera to automatic exposure
func (d *Device) SetCamAutoExposure(camID int32) error {
	_, err := d.call(NewCamExposure(camID, ExposureAuto, 0, 0))
	return err
}

// SetCamManualExposure sets a fixed exposure time and gain
func (d *Device) SetCamManualExposure(camID, timeUs, gain int32) error {
	_, err := d.call(NewCamExposure(camID, ExposureManual, timeUs, gain))
	return err
}

// SetFlasher sets the IR flasher intensity
func (d *Device) SetFlasher(ir int32) error {
	_, err := d.call(NewSetFlasher(ir))
	return err
}

// SetMainCamID selects the camera used for inference
func (d *Device) SetMainCamID(camID int32) error {
	_, err := d.call(NewIntRpc(FuncSetMainCamera, camID))
	return err
}

// SetRotation sets the camera rotation
func (d *Device) SetRotation(value int32) error {
	_, err := d.call(NewIntRpc(FuncSetCameraRotation, value))
	return err
}

// SetDebugDrawing toggles on-device debug overlays
func (d *Device) SetDebugDrawing(value int32) error {
	_, err := d.call(NewIntRpc(FuncSetDebugDrawing, value))
	return err
}

// Files

// ListFile lists a remote directory
func (d *Device) ListFile(path string) ([]string, error) {
	resp, err := d.call(NewStrRpc(FuncListFile, path))
	if err != nil {
		return nil, err
	}
	if resp.FileListResult == nil {
		return nil, nil
	}
	return resp.FileListResult.Files, nil
}

// DeleteFile removes a remote file
func (d *Device) DeleteFile(path, auth string) error {
	_, err := d.call(NewDeleteFile(path, auth))
	return err
}

// UploadFile sends a local file to remotePath
func (d *Device) UploadFile(localPath, remotePath, auth string, onProgress ProgressFunc) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	return d.link.SendFile(data, remotePath, auth, onProgress)
}

// GetConfig reads a config domain as text
func (d *Device) GetConfig(domain string) (string, error) {
	resp, err := d.call(NewStrRpc(FuncGetConfig, domain))
	if err != nil {
		return "", err
	}
	if resp.FilePart == nil {
		return "", fmt.Errorf("get config %s: %w", domain, ErrNoResponseData)
	}
	return string(resp.FilePart.Data), nil
}

// SetConfig replaces a config domain
func (d *Device) SetConfig(domain, content string) error {
	_, err := d.call(NewSetConfig(domain, []byte(content)))
	return err
}

// ResetConfig restores a config domain to factory defaults
func (d *Device) ResetConfig(domain string) error {
	_, err := d.call(NewStrRpc(FuncResetConfig, domain))
	return err
}

// Info

// GetDeviceInfo returns the space separated device info fields
func (d *Device) GetDeviceInfo() ([]string, error) {
	resp, err := d.call(NewRpc(FuncGetDeviceInfo))
	if err != nil {
		return nil, err
	}
	return strings.Fields(resp.StrData), nil
}

// Face library

// GetTracePic downloads the snapshot of a trace
func (d *Device) GetTracePic(traceID int32) ([]byte, error) {
	return d.picture(NewIntRpc(FuncGetTracePic, traceID))
}

// GetFacePic downloads the registered picture of a face
func (d *Device) GetFacePic(faceID int32) ([]byte, error) {
	return d.picture(NewIntRpc(FuncGetFacePic, faceID))
}

func (d *Device) picture(req *Rpc) ([]byte, error) {
	resp, err := d.call(req)
	if err != nil {
		return nil, err
	}
	if resp.FilePart == nil {
		return nil, fmt.Errorf("%s: %w", FormatFunc(req.Func), ErrNoResponseData)
	}
	return resp.FilePart.Data, nil
}

// ClearFaceLib removes every registered face
func (d *Device) ClearFaceLib() error {
	_, err := d.call(NewRpc(FuncClearFaceLib))
	return err
}

// SetFaceID renames a registered face
func (d *Device) SetFaceID(faceID int32, faceName string) error {
	_, err := d.call(NewSetFaceID(faceID, faceName))
	return err
}

// RegisterFaceIDFromCamera waits for a face in front of the camera and
// registers it. The RPC deadline is extended by the registration window.
func (d *Device) RegisterFaceIDFromCamera(faceName string, timeoutMs int32) (int32, error) {
	window := time.Duration(timeoutMs)*time.Millisecond + d.link.cfg.RpcTimeout
	resp, err := d.link.SendRpc(NewRegisterFaceIDFromCamera(faceName, timeoutMs), window)
	if err != nil {
		return 0, err
	}
	return responseInt(resp, FuncRegisterFaceIDFromCamera)
}

// RegisterFaceIDWithRemotePic registers a face from a picture on the device
func (d *Device) RegisterFaceIDWithRemotePic(remoteFile, faceName string) (int32, error) {
	resp, err := d.call(NewRegisterFaceIDWithPic(remoteFile, faceName))
	if err != nil {
		return 0, err
	}
	return responseInt(resp, FuncRegisterFaceIDWithPic)
}

// RegisterFaceIDWithPic uploads a local picture and registers it
func (d *Device) RegisterFaceIDWithPic(localFile, faceName string, onProgress ProgressFunc) (int32, error) {
	if err := d.UploadFile(localFile, faceRegisterPath, "", onProgress); err != nil {
		return 0, err
	}
	return d.RegisterFaceIDWithRemotePic(faceRegisterPath, faceName)
}

// DeleteFaceID removes one registered face
func (d *Device) DeleteFaceID(faceID int32) error {
	_, err := d.call(NewIntRpc(FuncDeleteFaceID, faceID))
	return err
}

// DeleteFaceName removes every face registered under a name and returns
// how many were deleted
func (d *Device) DeleteFaceName(faceName string) (int32, error) {
	resp, err := d.call(NewStrRpc(FuncDeleteFaceName, faceName))
	if err != nil {
		return 0, err
	}
	return responseInt(resp, FuncDeleteFaceName)
}

// ListFaceID pages through the whole face library
func (d *Device) ListFaceID() ([]FaceIDEntry, error) {
	var faces []FaceIDEntry
	var start int32
	for {
		resp, err := d.call(NewListFaceID(start, faceListPageSize))
		if err != nil {
			return nil, err
		}
		if resp.FaceIDListData == nil || len(resp.FaceIDListData.Faces) == 0 {
			break
		}
		page := resp.FaceIDListData.Faces
		faces = append(faces, page...)
		start = page[len(page)-1].FaceID + 1
	}
	return faces, nil
}

func responseInt(resp *Response, fn Func) (int32, error) {
	if resp.IntData == nil {
		return 0, fmt.Errorf("%s: %w", FormatFunc(fn), ErrNoResponseData)
	}
	return *resp.IntData, nil
}
