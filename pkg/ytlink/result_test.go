// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

// entry encodes one DataV2 entry
func entry(path []uint8, tag DataType, payload []byte) []byte {
	b := []byte{byte(len(path))}
	b = append(b, path...)
	b = append(b, byte(tag))
	b = protowire.AppendVarint(b, uint64(len(payload)))
	return append(b, payload...)
}

// varEntry encodes a VARUINT32 entry, whose value is the length varint itself
func varEntry(path []uint8, value uint32) []byte {
	b := []byte{byte(len(path))}
	b = append(b, path...)
	b = append(b, byte(DataVarUint32))
	return protowire.AppendVarint(b, uint64(value))
}

func dataV2(entries ...[]byte) []byte {
	b := []byte{byte(len(entries))}
	for _, e := range entries {
		b = append(b, e...)
	}
	return b
}

func le16(v ...int16) []byte {
	b := make([]byte, 0, 2*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint16(b, uint16(x))
	}
	return b
}

func TestParseResult_Empty(t *testing.T) {
	for _, data := range [][]byte{nil, {0x00}} {
		r := ParseResult(data)
		if r.Len() != 0 {
			t.Errorf("ParseResult(% X).Len() = %d, want 0", data, r.Len())
		}
		if _, ok := r.Get(uint8(ModelFaceDetection)); ok {
			t.Error("Get on empty result should miss")
		}
	}
}

func TestParseResult_Rect(t *testing.T) {
	path := []uint8{uint8(ModelFaceDetection), 0}
	payload := append(le16(-1, 2), le16(10, -20, 100, 120)...) // conf 0xFFFF, class 2
	r := ParseResult(dataV2(entry(path, DataRect, payload)))

	rect, ok := r.Rect(path...)
	if !ok {
		t.Fatal("rect not found")
	}
	want := Rect{Conf: 1, ClassID: 2, X: 10, Y: -20, W: 100, H: 120}
	if rect != want {
		t.Errorf("rect = %+v, want %+v", rect, want)
	}
}

func TestParseResult_Classification(t *testing.T) {
	path := []uint8{uint8(ModelEyeStatus), 0}
	r := ParseResult(dataV2(entry(path, DataClassification, le16(0, 3))))

	c, ok := r.Classification(path...)
	if !ok {
		t.Fatal("classification not found")
	}
	if c.Conf != 0 || c.ClassID != 3 {
		t.Errorf("classification = %+v", c)
	}
}

func TestParseResult_Text(t *testing.T) {
	path := []uint8{uint8(ModelFaceDetection), 0, uint8(ModelFaceRecognition)}
	payload := append(le16(-1), []byte("alice\x00")...)
	r := ParseResult(dataV2(entry(path, DataString, payload)))

	text, ok := r.Text(path...)
	if !ok {
		t.Fatal("text not found")
	}
	if text.Str != "alice" || text.Conf != 1 {
		t.Errorf("text = %+v", text)
	}
}

func TestParseResult_TextLayout(t *testing.T) {
	qr := []uint8{uint8(ModelQRCode)}

	tests := []struct {
		name    string
		payload []byte
		want    string
	}{
		{"terminated", []byte{0xFF, 0xFF, 'q', 'r', 0x00}, "qr"},
		// The final byte is the terminator slot whatever it holds
		{"unterminated", []byte{0x00, 0x00, 'q', 'r', '!'}, "qr"},
		{"empty", []byte{0x00, 0x80, 0x00}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseResult(dataV2(entry(qr, DataString, tt.payload)))
			text, ok := r.Text(qr...)
			if !ok {
				t.Fatal("text not found")
			}
			if text.Str != tt.want {
				t.Errorf("Str = %q, want %q", text.Str, tt.want)
			}
		})
	}
}

func TestParseResult_Array(t *testing.T) {
	values := []float32{1.5, -30, 0.25}
	var payload []byte
	for _, v := range values {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(v))
	}
	path := []uint8{uint8(ModelFaceDetection), 0, uint8(ModelFacePose)}
	r := ParseResult(dataV2(entry(path, DataArray, payload)))

	arr, ok := r.Array(path...)
	if !ok {
		t.Fatal("array not found")
	}
	if !reflect.DeepEqual([]float32(arr), values) {
		t.Errorf("array = %v, want %v", arr, values)
	}
}

func TestParseResult_Points(t *testing.T) {
	path := []uint8{uint8(ModelFaceDetection), 0, uint8(ModelFaceLandmark)}
	r := ParseResult(dataV2(entry(path, DataPoints, le16(1, 2, -3, 4))))

	pts, ok := r.Points(path...)
	if !ok {
		t.Fatal("points not found")
	}
	want := []Point{{1, 2}, {-3, 4}}
	if !reflect.DeepEqual(pts.Points, want) {
		t.Errorf("points = %v, want %v", pts.Points, want)
	}
	if pts.Shape != nil {
		t.Error("two points must not produce a face shape")
	}
}

func TestParseResult_FaceShape(t *testing.T) {
	coords := make([]int16, 0, 2*FaceLandmarkCount)
	for i := 0; i < FaceLandmarkCount; i++ {
		coords = append(coords, int16(i), int16(-i))
	}
	path := []uint8{uint8(ModelFaceDetection), 0, uint8(ModelFaceLandmark)}
	r := ParseResult(dataV2(entry(path, DataPoints, le16(coords...))))

	pts, ok := r.Points(path...)
	if !ok || pts.Shape == nil {
		t.Fatal("face shape not built")
	}
	s := pts.Shape
	if got := s.RegionSizes(); !reflect.DeepEqual(got, []int{8, 8, 8, 8, 13, 22, 21, 2}) {
		t.Errorf("region sizes = %v", got)
	}
	// Regions are consumed in order
	if s.LeftEyebrow[0].X != 0 || s.RightEyebrow[0].X != 8 || s.Nose[0].X != 32 ||
		s.Mouth[0].X != 45 || s.FaceProfile[0].X != 67 || s.Pupil[1].X != 89 {
		t.Error("regions are not sliced in wire order")
	}
}

func TestParseResult_VarUint(t *testing.T) {
	count := varEntry([]uint8{uint8(ModelFaceDetection)}, 300) // two-byte varint
	trace := varEntry([]uint8{uint8(ModelFaceDetection), 0, uint8(ModelDetectionTrace)}, 5)
	r := ParseResult(dataV2(count, trace))

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if n := r.Count(uint8(ModelFaceDetection)); n != 300 {
		t.Errorf("Count = %d, want 300", n)
	}
	if id, ok := r.Uint(uint8(ModelFaceDetection), 0, uint8(ModelDetectionTrace)); !ok || id != 5 {
		t.Errorf("trace id = %d, %v", id, ok)
	}
}

func TestParseResult_VarUintOverflow(t *testing.T) {
	b := []byte{1, uint8(ModelFaceDetection), byte(DataVarUint32)}
	b = protowire.AppendVarint(b, 1<<32)
	r := ParseResult(dataV2(b))

	if _, ok := r.Uint(uint8(ModelFaceDetection)); ok {
		t.Error("64-bit value accepted as VarUint")
	}
	v, _ := r.Get(uint8(ModelFaceDetection))
	raw, ok := v.(RawBytes)
	if !ok {
		t.Fatalf("value = %T, want RawBytes", v)
	}
	if raw.Tag != DataVarUint32 || !reflect.DeepEqual(raw.Data, protowire.AppendVarint(nil, 1<<32)) {
		t.Errorf("raw = %+v", raw)
	}
}

func TestParseResult_FallbackToRaw(t *testing.T) {
	tests := []struct {
		name    string
		tag     DataType
		payload []byte
	}{
		{"short rect", DataRect, []byte{1, 2, 3, 4, 5}},
		{"long classification", DataClassification, []byte{1, 2, 3, 4, 5}},
		{"short string", DataString, []byte{1, 2}},
		{"unknown tag", DataType(9), []byte{0xAA}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseResult(dataV2(entry([]uint8{1}, tt.tag, tt.payload)))
			v, ok := r.Get(1)
			if !ok {
				t.Fatal("entry missing")
			}
			raw, ok := v.(RawBytes)
			if !ok {
				t.Fatalf("value = %T, want RawBytes", v)
			}
			if raw.Tag != tt.tag || !reflect.DeepEqual(raw.Data, tt.payload) {
				t.Errorf("raw = %+v", raw)
			}
			if raw.Type() != tt.tag {
				t.Errorf("Type() = %d", raw.Type())
			}
		})
	}
}

func TestParseResult_Truncated(t *testing.T) {
	first := varEntry([]uint8{uint8(ModelFaceDetection)}, 1)
	second := entry([]uint8{uint8(ModelFaceDetection), 0}, DataRect, make([]byte, rectSize))
	data := dataV2(first, second)
	data = data[:len(data)-4]

	r := ParseResult(data)
	if r.Count(uint8(ModelFaceDetection)) != 1 {
		t.Error("entry before truncation lost")
	}
	v, ok := r.Get(uint8(ModelFaceDetection), 0)
	if !ok {
		t.Fatal("truncated entry not kept")
	}
	if raw, ok := v.(RawBytes); !ok || len(raw.Data) != rectSize-4 {
		t.Errorf("truncated entry = %#v", v)
	}
}

func TestParseResult_EntryCountOverrun(t *testing.T) {
	data := dataV2(varEntry([]uint8{1}, 1))
	data[0] = 5 // claims more entries than present
	r := ParseResult(data)
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestResult_GetExactMatchOnly(t *testing.T) {
	r := ParseResult(dataV2(varEntry([]uint8{1, 0, 2}, 9)))
	if _, ok := r.Get(1, 0); ok {
		t.Error("prefix must not match")
	}
	if _, ok := r.Get(1, 0, 2, 0); ok {
		t.Error("longer path must not match")
	}
	if _, ok := r.Get(1, 0, 2); !ok {
		t.Error("exact path must match")
	}
}

func TestResult_TypedGetterMismatch(t *testing.T) {
	r := ParseResult(dataV2(varEntry([]uint8{1}, 9)))
	if _, ok := r.Rect(1); ok {
		t.Error("Rect on a VarUint entry must report false")
	}
	if n := r.Count(2); n != 0 {
		t.Errorf("Count on missing path = %d", n)
	}
}

func TestResult_Paths(t *testing.T) {
	r := ParseResult(dataV2(
		varEntry([]uint8{1, 1}, 0),
		varEntry([]uint8{1}, 2),
		varEntry([]uint8{1, 0}, 0),
	))
	want := [][]uint8{{1}, {1, 0}, {1, 1}}
	if got := r.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestResultEvent_DecodeResult(t *testing.T) {
	e := &ResultEvent{FrameID: 1, DataV2: dataV2(varEntry([]uint8{uint8(ModelFaceDetection)}, 2))}
	if n := e.DecodeResult().Count(uint8(ModelFaceDetection)); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

// ============================================================
// FaceShape Tests
// ============================================================

func TestPoint_Arithmetic(t *testing.T) {
	a := Point{3, 4}
	b := Point{1, 1}
	if got := a.Add(b); got != (Point{4, 5}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Point{2, 3}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Div(2); got != (Point{1.5, 2}) {
		t.Errorf("Div = %v", got)
	}
	if got := a.Length(); got != 5 {
		t.Errorf("Length = %v", got)
	}
}

func TestNewFaceShape_WrongCount(t *testing.T) {
	if NewFaceShape(make([]Point, FaceLandmarkCount-1)) != nil {
		t.Error("89 points must not build a face shape")
	}
}
