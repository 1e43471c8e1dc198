// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import "fmt"

// IssueType classifies a suspicious result entry
type IssueType int

const (
	IssueRawEntry IssueType = iota
	IssueEmptyRect
	IssueRectOutOfFrame
	IssueIndexBeyondCount
)

// String returns the issue name used in logs
func (t IssueType) String() string {
	switch t {
	case IssueRawEntry:
		return "raw_entry"
	case IssueEmptyRect:
		return "empty_rect"
	case IssueRectOutOfFrame:
		return "rect_out_of_frame"
	case IssueIndexBeyondCount:
		return "index_beyond_count"
	default:
		return "unknown"
	}
}

// ValidationError is one problem found in a result event. The event was
// framed and decoded correctly; its content just looks wrong.
type ValidationError struct {
	Type    IssueType
	Path    []uint8
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateResult checks a result event for entries a well-behaved device
// would not send. It returns nil when nothing looks wrong.
func ValidateResult(e *ResultEvent) []ValidationError {
	r := e.DecodeResult()
	var errors []ValidationError

	for _, path := range r.Paths() {
		v, _ := r.Get(path...)
		switch val := v.(type) {
		case RawBytes:
			errors = append(errors, ValidationError{
				Type:    IssueRawEntry,
				Path:    path,
				Message: fmt.Sprintf("%s: undecodable entry (tag %d, %d bytes)", FormatPath(path), val.Tag, len(val.Data)),
				Details: map[string]interface{}{"tag": val.Tag, "length": len(val.Data)},
			})
		case Rect:
			errors = append(errors, validateRect(path, val, e.Width, e.Height)...)
		}

		if issue := validateIndex(r, path); issue != nil {
			errors = append(errors, *issue)
		}
	}

	return errors
}

// validateRect checks box geometry against the frame size
func validateRect(path []uint8, rect Rect, width, height uint32) []ValidationError {
	if rect.W <= 0 || rect.H <= 0 {
		return []ValidationError{{
			Type:    IssueEmptyRect,
			Path:    path,
			Message: fmt.Sprintf("%s: empty box (w=%d, h=%d)", FormatPath(path), rect.W, rect.H),
			Details: map[string]interface{}{"w": rect.W, "h": rect.H},
		}}
	}

	// Frame size unknown
	if width == 0 || height == 0 {
		return nil
	}

	x0, y0 := int(rect.X), int(rect.Y)
	x1, y1 := x0+int(rect.W), y0+int(rect.H)
	if x0 < 0 || y0 < 0 || x1 > int(width) || y1 > int(height) {
		return []ValidationError{{
			Type: IssueRectOutOfFrame,
			Path: path,
			Message: fmt.Sprintf("%s: box x=%d y=%d w=%d h=%d outside %dx%d frame",
				FormatPath(path), rect.X, rect.Y, rect.W, rect.H, width, height),
			Details: map[string]interface{}{
				"x": rect.X, "y": rect.Y, "w": rect.W, "h": rect.H,
				"width": width, "height": height,
			},
		}}
	}
	return nil
}

// validateIndex flags [model, i] entries whose i is not below the count
// stored at [model]
func validateIndex(r *Result, path []uint8) *ValidationError {
	if len(path) != 2 {
		return nil
	}
	count, ok := r.Uint(path[0])
	if !ok || uint32(path[1]) < count {
		return nil
	}
	return &ValidationError{
		Type:    IssueIndexBeyondCount,
		Path:    path,
		Message: fmt.Sprintf("%s: index %d beyond count %d", FormatPath(path), path[1], count),
		Details: map[string]interface{}{"index": path[1], "count": count},
	}
}
