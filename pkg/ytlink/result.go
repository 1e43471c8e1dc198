// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"encoding/binary"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Fixed payload sizes of the DataV2 value types
const (
	classificationSize = 4
	rectSize           = 12
	textPrefixSize     = 2 // u16 conf, then text and a trailing NUL
	pointSize          = 4
)

// Result is a decoded DataV2 payload: a set of typed values addressed by
// their path. Lookups match the whole path exactly.
type Result struct {
	entries map[string]Value
	// Entries in wire order, kept for formatting
	order []string
}

// ParseResult decodes a DataV2 buffer. It never fails: an entry whose type
// and length do not agree is kept as RawBytes, and a truncated buffer ends
// the parse with whatever was decoded so far.
func ParseResult(data []byte) *Result {
	r := &Result{entries: make(map[string]Value)}
	if len(data) == 0 {
		return r
	}

	count := int(data[0])
	pos := 1
	for i := 0; i < count && pos < len(data); i++ {
		pathLen := int(data[pos])
		pos++
		if pos+pathLen+1 > len(data) {
			return r
		}
		key := string(data[pos : pos+pathLen])
		pos += pathLen

		tag := DataType(data[pos])
		pos++

		length, n := protowire.ConsumeVarint(data[pos:])
		if n < 0 {
			r.put(key, RawBytes{Tag: tag, Data: cloneBytes(data[pos:])})
			return r
		}
		raw := data[pos : pos+n]
		pos += n

		if tag == DataVarUint32 {
			if length > math.MaxUint32 {
				r.put(key, RawBytes{Tag: tag, Data: cloneBytes(raw)})
				continue
			}
			r.put(key, VarUint(uint32(length)))
			continue
		}

		if length > uint64(len(data)-pos) {
			r.put(key, RawBytes{Tag: tag, Data: cloneBytes(data[pos:])})
			return r
		}
		payload := data[pos : pos+int(length)]
		pos += int(length)

		r.put(key, decodeValue(tag, payload))
	}
	return r
}

func decodeValue(tag DataType, p []byte) Value {
	switch {
	case tag == DataClassification && len(p) == classificationSize:
		return Classification{Conf: confidence(p), ClassID: binary.LittleEndian.Uint16(p[2:])}

	case tag == DataRect && len(p) == rectSize:
		return Rect{
			Conf:    confidence(p),
			ClassID: binary.LittleEndian.Uint16(p[2:]),
			X:       int16(binary.LittleEndian.Uint16(p[4:])),
			Y:       int16(binary.LittleEndian.Uint16(p[6:])),
			W:       int16(binary.LittleEndian.Uint16(p[8:])),
			H:       int16(binary.LittleEndian.Uint16(p[10:])),
		}

	case tag == DataArray:
		arr := make(FloatArray, len(p)/4)
		for i := range arr {
			arr[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		}
		return arr

	case tag == DataString && len(p) > textPrefixSize:
		return Text{Conf: confidence(p), Str: string(p[textPrefixSize : len(p)-1])}

	case tag == DataPoints:
		points := make([]Point, len(p)/pointSize)
		for i := range points {
			off := i * pointSize
			points[i] = Point{
				X: float64(int16(binary.LittleEndian.Uint16(p[off:]))),
				Y: float64(int16(binary.LittleEndian.Uint16(p[off+2:]))),
			}
		}
		return PointList{Points: points, Shape: NewFaceShape(points)}
	}
	return RawBytes{Tag: tag, Data: cloneBytes(p)}
}

// confidence reads the leading u16 confidence as a 0..1 value
func confidence(p []byte) float32 {
	return float32(binary.LittleEndian.Uint16(p)) / 65535
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}

func (r *Result) put(key string, v Value) {
	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}
	r.entries[key] = v
}

func pathKey(path []uint8) string {
	return string(path)
}

// Len returns the number of entries
func (r *Result) Len() int {
	return len(r.entries)
}

// Get returns the value stored at path
func (r *Result) Get(path ...uint8) (Value, bool) {
	v, ok := r.entries[pathKey(path)]
	return v, ok
}

// Paths returns every stored path in lexical order
func (r *Result) Paths() [][]uint8 {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	paths := make([][]uint8, len(keys))
	for i, k := range keys {
		paths[i] = []uint8(k)
	}
	return paths
}

// Count returns the instance count stored as a VarUint at path, for
// example the number of detected faces at [ModelFaceDetection]. Missing
// or differently typed entries count as zero.
func (r *Result) Count(path ...uint8) int {
	v, ok := r.Uint(path...)
	if !ok {
		return 0
	}
	return int(v)
}

// Uint returns the VarUint at path
func (r *Result) Uint(path ...uint8) (uint32, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return 0, false
	}
	u, ok := v.(VarUint)
	return uint32(u), ok
}

// Rect returns the Rect at path
func (r *Result) Rect(path ...uint8) (Rect, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return Rect{}, false
	}
	rect, ok := v.(Rect)
	return rect, ok
}

// Text returns the Text at path
func (r *Result) Text(path ...uint8) (Text, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return Text{}, false
	}
	t, ok := v.(Text)
	return t, ok
}

// Array returns the FloatArray at path
func (r *Result) Array(path ...uint8) (FloatArray, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return nil, false
	}
	a, ok := v.(FloatArray)
	return a, ok
}

// Points returns the PointList at path
func (r *Result) Points(path ...uint8) (PointList, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return PointList{}, false
	}
	p, ok := v.(PointList)
	return p, ok
}

// Classification returns the Classification at path
func (r *Result) Classification(path ...uint8) (Classification, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return Classification{}, false
	}
	c, ok := v.(Classification)
	return c, ok
}
