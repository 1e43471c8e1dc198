// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"k8s.io/utils/ptr"
)

func TestDevice_GetDeviceInfo(t *testing.T) {
	dev := newFakeDevice(t, func(req *Rpc) []*Message {
		return []*Message{{Response: &Response{Sequence: req.Sequence, StrData: "VS-1  fw-2.1 sn123"}}}
	})
	info, err := NewDevice(newTestLink(dev)).GetDeviceInfo()
	if err != nil {
		t.Fatalf("GetDeviceInfo failed: %v", err)
	}
	if !reflect.DeepEqual(info, []string{"VS-1", "fw-2.1", "sn123"}) {
		t.Errorf("info = %q", info)
	}
}

func TestDevice_ListFile(t *testing.T) {
	dev := newFakeDevice(t, func(req *Rpc) []*Message {
		if req.StrParams != "/sdcard" {
			return []*Message{fail(req, StatusFileNotFound)}
		}
		return []*Message{{Response: &Response{
			Sequence:       req.Sequence,
			FileListResult: &FileListResult{Files: []string{"a.jpg", "b.jpg"}},
		}}}
	})
	d := NewDevice(newTestLink(dev))

	files, err := d.ListFile("/sdcard")
	if err != nil {
		t.Fatalf("ListFile failed: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"a.jpg", "b.jpg"}) {
		t.Errorf("files = %v", files)
	}
	if _, err := d.ListFile("/missing"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestDevice_Config(t *testing.T) {
	stored := map[string]string{"camera": "exposure=auto"}
	dev := newFakeDevice(t, func(req *Rpc) []*Message {
		switch req.Func {
		case FuncGetConfig:
			return []*Message{{Response: &Response{
				Sequence: req.Sequence,
				FilePart: &FilePart{Path: req.StrParams, Data: []byte(stored[req.StrParams])},
			}}}
		case FuncSetConfig:
			stored[req.FilePart.Path] = string(req.FilePart.Data)
			return []*Message{ok(req)}
		case FuncResetConfig:
			delete(stored, req.StrParams)
			return []*Message{ok(req)}
		}
		return []*Message{fail(req, StatusUnknownFunc)}
	})
	d := NewDevice(newTestLink(dev))

	if err := d.SetConfig("camera", "exposure=manual"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	got, err := d.GetConfig("camera")
	if err != nil || got != "exposure=manual" {
		t.Errorf("GetConfig = %q, %v", got, err)
	}
	if err := d.ResetConfig("camera"); err != nil {
		t.Fatalf("ResetConfig failed: %v", err)
	}
	if _, ok := stored["camera"]; ok {
		t.Error("config not reset")
	}
}

func TestDevice_GetConfig_NoData(t *testing.T) {
	dev := newFakeDevice(t, func(req *Rpc) []*Message { return []*Message{ok(req)} })
	_, err := NewDevice(newTestLink(dev)).GetConfig("camera")
	if !errors.Is(err, ErrNoResponseData) {
		t.Errorf("err = %v, want ErrNoResponseData", err)
	}
}

func TestDevice_CameraRequests(t *testing.T) {
	dev := newFakeDevice(t, func(req *Rpc) []*Message { return []*Message{ok(req)} })
	d := NewDevice(newTestLink(dev))

	d.SetCamAutoExposure(0)
	d.SetCamManualExposure(1, 5000, 16)
	d.SetFlasher(50)
	d.SetMainCamID(1)
	d.SetRotation(90)
	d.SetDebugDrawing(1)

	if len(dev.requests) != 6 {
		t.Fatalf("requests = %d, want 6", len(dev.requests))
	}
	auto := dev.requests[0].CameraExposureParams
	if auto == nil || auto.Type != ExposureAuto || auto.CamID != 0 || auto.TimeUs != 0 {
		t.Errorf("auto exposure = %+v", auto)
	}
	manual := dev.requests[1].CameraExposureParams
	if manual == nil || manual.Type != ExposureManual || manual.CamID != 1 || manual.TimeUs != 5000 || manual.Gain != 16 {
		t.Errorf("manual exposure = %+v", manual)
	}
	if f := dev.requests[2].FlasherParams; f == nil || f.IR != 50 {
		t.Errorf("flasher = %+v", f)
	}
	wantFuncs := []Func{FuncSetMainCamera, FuncSetCameraRotation, FuncSetDebugDrawing}
	wantInts := []int32{1, 90, 1}
	for i, req := range dev.requests[3:] {
		if req.Func != wantFuncs[i] || req.IntParams == nil || *req.IntParams != wantInts[i] {
			t.Errorf("request %d = %s %v", i+3, FormatFunc(req.Func), req.IntParams)
		}
	}
}

func TestDevice_ListFaceID_Paging(t *testing.T) {
	var lib []FaceIDEntry
	for i := 0; i < 250; i++ {
		lib = append(lib, FaceIDEntry{FaceID: int32(i * 2), FaceName: "face"})
	}
	dev := newFakeDevice(t, func(req *Rpc) []*Message {
		p := req.ListFaceIDParams
		var page []FaceIDEntry
		for _, f := range lib {
			if f.FaceID >= p.Start && int32(len(page)) < p.Length {
				page = append(page, f)
			}
		}
		return []*Message{{Response: &Response{Sequence: req.Sequence, FaceIDListData: &FaceIDListData{Faces: page}}}}
	})

	faces, err := NewDevice(newTestLink(dev)).ListFaceID()
	if err != nil {
		t.Fatalf("ListFaceID failed: %v", err)
	}
	if !reflect.DeepEqual(faces, lib) {
		t.Errorf("got %d faces, want %d", len(faces), len(lib))
	}
	if len(dev.requests) != 4 {
		t.Errorf("requests = %d, want 4 (three pages and an empty one)", len(dev.requests))
	}
	wantStarts := []int32{0, 199, 399, 499}
	for i, req := range dev.requests {
		if req.ListFaceIDParams.Start != wantStarts[i] || req.ListFaceIDParams.Length != faceListPageSize {
			t.Errorf("page %d params = %+v", i, req.ListFaceIDParams)
		}
	}
}

func TestDevice_RegisterFaceIDWithPic(t *testing.T) {
	sink := &uploadSink{}
	dev := newFakeDevice(t, func(req *Rpc) []*Message {
		if req.Func == FuncRegisterFaceIDWithPic {
			return []*Message{{Response: &Response{Sequence: req.Sequence, IntData: ptr.To[int32](12)}}}
		}
		return sink.handle(req)
	})

	pic := filepath.Join(t.TempDir(), "me.jpg")
	if err := os.WriteFile(pic, []byte("jpeg bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	id, err := NewDevice(newTestLink(dev)).RegisterFaceIDWithPic(pic, "me", nil)
	if err != nil {
		t.Fatalf("RegisterFaceIDWithPic failed: %v", err)
	}
	if id != 12 {
		t.Errorf("face id = %d, want 12", id)
	}
	if len(sink.parts) != 1 || sink.parts[0].Path != faceRegisterPath || string(sink.data) != "jpeg bytes" {
		t.Errorf("upload = %+v", sink.parts)
	}
	reg := dev.requests[len(dev.requests)-1].RegisterFaceIDWithPicParams
	if reg == nil || reg.FilePath != faceRegisterPath || reg.FaceName != "me" {
		t.Errorf("register params = %+v", reg)
	}
}

func TestDevice_RegisterFaceIDFromCamera(t *testing.T) {
	dev := newFakeDevice(t, func(req *Rpc) []*Message {
		return []*Message{{Response: &Response{Sequence: req.Sequence, IntData: ptr.To[int32](4)}}}
	})
	id, err := NewDevice(newTestLink(dev)).RegisterFaceIDFromCamera("bob", 5000)
	if err != nil || id != 4 {
		t.Fatalf("RegisterFaceIDFromCamera = %d, %v", id, err)
	}
	p := dev.requests[0].RegisterFaceIDFromCameraParams
	if p == nil || p.FaceName != "bob" || p.TimeoutMs != 5000 {
		t.Errorf("params = %+v", p)
	}
}

func TestDevice_DeleteFaceName_NoData(t *testing.T) {
	dev := newFakeDevice(t, func(req *Rpc) []*Message { return []*Message{ok(req)} })
	if _, err := NewDevice(newTestLink(dev)).DeleteFaceName("x"); !errors.Is(err, ErrNoResponseData) {
		t.Errorf("err = %v, want ErrNoResponseData", err)
	}
}

func TestDevice_GetFacePic(t *testing.T) {
	dev := newFakeDevice(t, func(req *Rpc) []*Message {
		return []*Message{{Response: &Response{Sequence: req.Sequence, FilePart: &FilePart{Data: []byte{0xFF, 0xD8}}}}}
	})
	pic, err := NewDevice(newTestLink(dev)).GetFacePic(3)
	if err != nil || len(pic) != 2 {
		t.Fatalf("GetFacePic = %v, %v", pic, err)
	}
	if dev.requests[0].Func != FuncGetFacePic || *dev.requests[0].IntParams != 3 {
		t.Errorf("request = %+v", dev.requests[0])
	}
}
