// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"fmt"
	"strings"
)

// FormatMessage formats a message into a human-readable string
func FormatMessage(m *Message) string {
	timestamp := m.timestamp.Format("15:04:05.000")
	kind := FormatMessageKind(m.Kind())

	switch m.Kind() {
	case KindRpc:
		r := m.Rpc
		return fmt.Sprintf("[%s] %s %s (0x%02X) seq=%d\n%s", timestamp, kind, FormatFunc(r.Func), uint32(r.Func), r.Sequence, formatRpcParams(r))
	case KindResponse:
		r := m.Response
		return fmt.Sprintf("[%s] %s seq=%d code=%s (%d)\n%s", timestamp, kind, r.Sequence, FormatStatus(r.Code), int32(r.Code), formatResponseData(r))
	case KindResult:
		e := m.Result
		header := fmt.Sprintf("[%s] %s frame=%d time=%d ms size=%dx%d\n", timestamp, kind, e.FrameID, e.Timestamp, e.Width, e.Height)
		return header + FormatResult(e.DecodeResult())
	default:
		return fmt.Sprintf("[%s] %s\n", timestamp, kind)
	}
}

// FormatMessageKind returns the human-readable name for a message kind
func FormatMessageKind(k MessageKind) string {
	switch k {
	case KindRpc:
		return "RPC"
	case KindResponse:
		return "RESPONSE"
	case KindResult:
		return "RESULT"
	default:
		return "EMPTY"
	}
}

// FormatFunc returns the human-readable name for an RPC function code
func FormatFunc(fn Func) string {
	switch fn {
	// Camera
	case FuncSetExposure:
		return "SET_EXPOSURE"
	case FuncSetFlasher:
		return "SET_FLASHER"
	case FuncSetMainCamera:
		return "SET_MAIN_CAMERA"
	case FuncSetCameraRotation:
		return "SET_CAMERA_ROTATION"
	case FuncSetDebugDrawing:
		return "SET_DEBUG_DRAWING"

	// Files and config
	case FuncListFile:
		return "LIST_FILE"
	case FuncDeleteFile:
		return "DELETE_FILE"
	case FuncUploadFile:
		return "UPLOAD_FILE"
	case FuncGetConfig:
		return "GET_CONFIG"
	case FuncSetConfig:
		return "SET_CONFIG"
	case FuncResetConfig:
		return "RESET_CONFIG"
	case FuncGetDeviceInfo:
		return "GET_DEVICE_INFO"

	// Face library
	case FuncGetTracePic:
		return "GET_TRACE_PIC"
	case FuncGetFacePic:
		return "GET_FACE_PIC"
	case FuncClearFaceLib:
		return "CLEAR_FACE_LIB"
	case FuncSetFaceID:
		return "SET_FACE_ID"
	case FuncRegisterFaceIDFromCamera:
		return "REGISTER_FACE_ID_FROM_CAMERA"
	case FuncRegisterFaceIDWithPic:
		return "REGISTER_FACE_ID_WITH_PIC"
	case FuncDeleteFaceID:
		return "DELETE_FACE_ID"
	case FuncDeleteFaceName:
		return "DELETE_FACE_NAME"
	case FuncListFaceID:
		return "LIST_FACE_ID"

	default:
		return fmt.Sprintf("FUNC_%d", uint32(fn))
	}
}

// FormatStatus returns the short name of a status code
func FormatStatus(code StatusCode) string {
	switch code {
	case StatusSuccess:
		return "SUCCESS"
	case StatusContinue:
		return "CONTINUE"
	default:
		return "ERROR"
	}
}

// FormatModel returns the human-readable name for a model id
func FormatModel(m Model) string {
	switch m {
	case ModelFaceDetection:
		return "FACE_DETECTION"
	case ModelFaceLandmark:
		return "FACE_LANDMARK"
	case ModelFacePose:
		return "FACE_POSE"
	case ModelFaceQuality:
		return "FACE_QUALITY"
	case ModelFaceRecognition:
		return "FACE_RECOGNITION"
	case ModelFaceLivenessRGB:
		return "FACE_LIVENESS_RGB"
	case ModelFaceLivenessIR:
		return "FACE_LIVENESS_IR"
	case ModelEyeStatus:
		return "EYE_STATUS"
	case ModelMouthStatus:
		return "MOUTH_STATUS"
	case ModelDetectionTrace:
		return "DETECTION_TRACE"
	case ModelObjectDetection:
		return "OBJECT_DETECTION"
	case ModelQRCode:
		return "QR_CODE"
	default:
		return fmt.Sprintf("MODEL_%d", uint8(m))
	}
}

// FormatPath renders a path as "[FACE_DETECTION 0 FACE_RECOGNITION]".
// Even positions after the first are instance indices.
func FormatPath(path []uint8) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		if i%2 == 0 {
			parts[i] = FormatModel(Model(seg))
		} else {
			parts[i] = fmt.Sprintf("%d", seg)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FormatValue renders one decoded value
func FormatValue(v Value) string {
	switch val := v.(type) {
	case Classification:
		return fmt.Sprintf("class=%d conf=%.2f", val.ClassID, val.Conf)
	case Rect:
		return fmt.Sprintf("rect x=%d y=%d w=%d h=%d class=%d conf=%.2f", val.X, val.Y, val.W, val.H, val.ClassID, val.Conf)
	case FloatArray:
		parts := make([]string, len(val))
		for i, f := range val {
			parts[i] = fmt.Sprintf("%.3f", f)
		}
		return "array [" + strings.Join(parts, ", ") + "]"
	case Text:
		return fmt.Sprintf("text %q conf=%.2f", val.Str, val.Conf)
	case PointList:
		if val.Shape != nil {
			return fmt.Sprintf("face shape %d points, mouth open: %t", len(val.Points), val.Shape.MouthOpen())
		}
		return fmt.Sprintf("points %v", val.Points)
	case VarUint:
		return fmt.Sprintf("%d", uint32(val))
	case RawBytes:
		return fmt.Sprintf("raw type=%d % X", uint8(val.Tag), val.Data)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatResult renders a result tree, one entry per line in path order
func FormatResult(r *Result) string {
	if r == nil || r.Len() == 0 {
		return "  (no results)\n"
	}
	var sb strings.Builder
	for _, path := range r.Paths() {
		v, _ := r.Get(path...)
		sb.WriteString(fmt.Sprintf("  %s %s\n", FormatPath(path), FormatValue(v)))
	}
	return sb.String()
}

func formatRpcParams(r *Rpc) string {
	var sb strings.Builder
	if r.IntParams != nil {
		sb.WriteString(fmt.Sprintf("  Int: %d\n", *r.IntParams))
	}
	if r.StrParams != "" {
		sb.WriteString(fmt.Sprintf("  Str: %q\n", r.StrParams))
	}
	if p := r.FilePart; p != nil {
		sb.WriteString(fmt.Sprintf("  File: %s offset=%d len=%d/%d\n", p.Path, p.Offset, len(p.Data), p.TotalLength))
	}
	if p := r.CameraExposureParams; p != nil {
		mode := "auto"
		if p.Type == ExposureManual {
			mode = "manual"
		}
		sb.WriteString(fmt.Sprintf("  Camera %d exposure: %s, time=%d us, gain=%d\n", p.CamID, mode, p.TimeUs, p.Gain))
	}
	if p := r.FlasherParams; p != nil {
		sb.WriteString(fmt.Sprintf("  Flasher: IR=%d, White=%d\n", p.IR, p.White))
	}
	if p := r.SetFaceIDParams; p != nil {
		sb.WriteString(fmt.Sprintf("  Face %d: %q\n", p.FaceID, p.FaceName))
	}
	if p := r.RegisterFaceIDFromCameraParams; p != nil {
		sb.WriteString(fmt.Sprintf("  Register %q from camera, timeout=%d ms\n", p.FaceName, p.TimeoutMs))
	}
	if p := r.RegisterFaceIDWithPicParams; p != nil {
		sb.WriteString(fmt.Sprintf("  Register %q from %s\n", p.FaceName, p.FilePath))
	}
	if p := r.ListFaceIDParams; p != nil {
		sb.WriteString(fmt.Sprintf("  List faces start=%d length=%d\n", p.Start, p.Length))
	}
	return sb.String()
}

func formatResponseData(r *Response) string {
	var sb strings.Builder
	if !r.Code.OK() {
		sb.WriteString(fmt.Sprintf("  Error: %s\n", r.Code.Message()))
	}
	if r.IntData != nil {
		sb.WriteString(fmt.Sprintf("  Int: %d\n", *r.IntData))
	}
	if r.StrData != "" {
		sb.WriteString(fmt.Sprintf("  Str: %q\n", r.StrData))
	}
	if p := r.FilePart; p != nil {
		sb.WriteString(fmt.Sprintf("  File: %s %d bytes\n", p.Path, len(p.Data)))
	}
	if l := r.FileListResult; l != nil {
		sb.WriteString(fmt.Sprintf("  Files: %s\n", strings.Join(l.Files, ", ")))
	}
	if l := r.FaceIDListData; l != nil {
		for _, f := range l.Faces {
			sb.WriteString(fmt.Sprintf("  Face %d: %s\n", f.FaceID, f.FaceName))
		}
	}
	return sb.String()
}
