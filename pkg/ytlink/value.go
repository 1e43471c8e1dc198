// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

// Value is a decoded DataV2 entry. The set of implementations is closed:
// Classification, Rect, FloatArray, Text, PointList, VarUint and RawBytes.
type Value interface {
	// Type returns the wire type the value was decoded as
	Type() DataType
	isValue()
}

// Classification is a class id with its confidence
type Classification struct {
	Conf    float32
	ClassID uint16
}

// Rect is a detection box
type Rect struct {
	Conf    float32
	ClassID uint16
	X, Y    int16
	W, H    int16
}

// FloatArray is a vector of float32 values (pose angles, embeddings, ...)
type FloatArray []float32

// Text is a recognized string (face name, QR content, ...)
type Text struct {
	Conf float32
	Str  string
}

// PointList is a list of points. Shape is set only for 90-point face
// landmark results.
type PointList struct {
	Points []Point
	Shape  *FaceShape
}

// VarUint is a bare unsigned value (trace id, counts)
type VarUint uint32

// RawBytes keeps an entry whose tag/length combination is not understood
type RawBytes struct {
	Tag  DataType
	Data []byte
}

func (Classification) Type() DataType { return DataClassification }
func (Rect) Type() DataType           { return DataRect }
func (FloatArray) Type() DataType     { return DataArray }
func (Text) Type() DataType           { return DataString }
func (PointList) Type() DataType      { return DataPoints }
func (VarUint) Type() DataType        { return DataVarUint32 }
func (r RawBytes) Type() DataType     { return r.Tag }

func (Classification) isValue() {}
func (Rect) isValue()           {}
func (FloatArray) isValue()     {}
func (Text) isValue()           {}
func (PointList) isValue()      {}
func (VarUint) isValue()        {}
func (RawBytes) isValue()       {}
