// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"fmt"
	"math"
)

// Point is a 2D image coordinate
type Point struct {
	X, Y float64
}

// Add returns p+o
func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y}
}

// Sub returns p-o
func (p Point) Sub(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y}
}

// Div scales p by 1/d
func (p Point) Div(d float64) Point {
	return Point{p.X / d, p.Y / d}
}

// Length returns the euclidean norm
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// FaceLandmarkCount is the point count of a face landmark result
const FaceLandmarkCount = 90

// Landmark region sizes, in wire order
var faceRegionSizes = [...]int{8, 8, 8, 8, 13, 22, 21, 2}

// FaceShape groups a 90-point landmark result into named regions
type FaceShape struct {
	LeftEyebrow  []Point
	RightEyebrow []Point
	LeftEye      []Point
	RightEye     []Point
	Nose         []Point
	Mouth        []Point
	FaceProfile  []Point
	Pupil        []Point
}

// NewFaceShape slices points into regions. It returns nil unless exactly
// FaceLandmarkCount points are given.
func NewFaceShape(points []Point) *FaceShape {
	if len(points) != FaceLandmarkCount {
		return nil
	}
	s := &FaceShape{}
	regions := s.regions()
	idx := 0
	for i, size := range faceRegionSizes {
		*regions[i] = points[idx : idx+size : idx+size]
		idx += size
	}
	return s
}

// regions returns pointers to the region slices in wire order
func (s *FaceShape) regions() [len(faceRegionSizes)]*[]Point {
	return [...]*[]Point{
		&s.LeftEyebrow, &s.RightEyebrow, &s.LeftEye, &s.RightEye,
		&s.Nose, &s.Mouth, &s.FaceProfile, &s.Pupil,
	}
}

// RegionSizes returns the size of every region in wire order
func (s *FaceShape) RegionSizes() []int {
	sizes := make([]int, 0, len(faceRegionSizes))
	for _, r := range s.regions() {
		sizes = append(sizes, len(*r))
	}
	return sizes
}

// MouthOpen compares the inner mouth height to its width
func (s *FaceShape) MouthOpen() bool {
	width := s.Mouth[0].Sub(s.Mouth[6]).Length()
	height := s.Mouth[3].Sub(s.Mouth[9]).Length()
	return height/(width+0.01) > 1
}
