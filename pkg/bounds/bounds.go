/*
Copyright 2022 The Rekall Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package bounds implements Bounds3D, an immutable axis-aligned volume over
// one temporal axis and two spatial axes. The engine is coordinate-system
// agnostic; by convention the temporal axis is in seconds and the spatial
// axes are normalized to [0,1] by the caller. Bounds3D only ever compares
// coordinates, it never rescales them.
package bounds

import (
	"fmt"
)

// Axis identifies one of the three axes of a Bounds3D.
type Axis int

const (
	// T is the temporal axis.
	T Axis = iota
	// X is the horizontal spatial axis.
	X
	// Y is the vertical spatial axis.
	Y
)

func (a Axis) String() string {
	switch a {
	case T:
		return "t"
	case X:
		return "x"
	case Y:
		return "y"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ConstructionError is returned when a Bounds3D would be created with
// lo > hi on any axis, for example by dilating with a large negative amount.
// Invalid bounds are rejected, never clipped.
type ConstructionError struct {
	Axis Axis
	Lo   float64
	Hi   float64
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid bounds on axis %s: lo %v > hi %v", e.Axis, e.Lo, e.Hi)
}

// Bounds3D is an immutable axis-aligned volume. All operations that would
// modify a Bounds3D return a new value instead.
type Bounds3D struct {
	t1, t2 float64
	x1, x2 float64
	y1, y2 float64
}

// New validates lo <= hi on every axis and returns the bounds, otherwise a
// ConstructionError naming the first offending axis.
func New(t1, t2, x1, x2, y1, y2 float64) (Bounds3D, error) {
	if t1 > t2 {
		return Bounds3D{}, &ConstructionError{Axis: T, Lo: t1, Hi: t2}
	}
	if x1 > x2 {
		return Bounds3D{}, &ConstructionError{Axis: X, Lo: x1, Hi: x2}
	}
	if y1 > y2 {
		return Bounds3D{}, &ConstructionError{Axis: Y, Lo: y1, Hi: y2}
	}
	return Bounds3D{t1: t1, t2: t2, x1: x1, x2: x2, y1: y1, y2: y2}, nil
}

// NewTemporal returns bounds covering [t1, t2) with the full spatial extent
// [0,1] on both spatial axes.
func NewTemporal(t1, t2 float64) (Bounds3D, error) {
	return New(t1, t2, 0, 1, 0, 1)
}

func (b Bounds3D) T1() float64 { return b.t1 }
func (b Bounds3D) T2() float64 { return b.t2 }
func (b Bounds3D) X1() float64 { return b.x1 }
func (b Bounds3D) X2() float64 { return b.x2 }
func (b Bounds3D) Y1() float64 { return b.y1 }
func (b Bounds3D) Y2() float64 { return b.y2 }

// Lo returns the lower bound on the given axis.
func (b Bounds3D) Lo(ax Axis) float64 {
	switch ax {
	case T:
		return b.t1
	case X:
		return b.x1
	default:
		return b.y1
	}
}

// Hi returns the upper bound on the given axis.
func (b Bounds3D) Hi(ax Axis) float64 {
	switch ax {
	case T:
		return b.t2
	case X:
		return b.x2
	default:
		return b.y2
	}
}

// Size returns hi - lo on the given axis.
func (b Bounds3D) Size(ax Axis) float64 {
	return b.Hi(ax) - b.Lo(ax)
}

// Overlaps reports whether the two bounds overlap on the given axis under
// half-open semantics: touching endpoints do not overlap, and a zero-length
// extent overlaps nothing, including itself.
func (b Bounds3D) Overlaps(o Bounds3D, ax Axis) bool {
	return b.Lo(ax) < o.Hi(ax) && o.Lo(ax) < b.Hi(ax)
}

// Span returns the smallest bounds containing both inputs: per-axis min of
// the lower bounds and max of the upper bounds. Span is commutative.
func (b Bounds3D) Span(o Bounds3D) Bounds3D {
	return Bounds3D{
		t1: min(b.t1, o.t1), t2: max(b.t2, o.t2),
		x1: min(b.x1, o.x1), x2: max(b.x2, o.x2),
		y1: min(b.y1, o.y1), y2: max(b.y2, o.y2),
	}
}

// IOU returns the intersection-over-union of the two bounds' X/Y rectangles,
// ignoring the temporal axis. The result is in [0,1]; if the union area is
// zero the result is 0.
func (b Bounds3D) IOU(o Bounds3D) float64 {
	iw := min(b.x2, o.x2) - max(b.x1, o.x1)
	ih := min(b.y2, o.y2) - max(b.y1, o.y1)
	if iw < 0 {
		iw = 0
	}
	if ih < 0 {
		ih = 0
	}
	intersection := iw * ih
	union := b.Size(X)*b.Size(Y) + o.Size(X)*o.Size(Y) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// Dilate expands the bounds by amount on each side of the given axis. A
// negative amount shrinks the bounds; if the result would have lo > hi a
// ConstructionError is returned.
func (b Bounds3D) Dilate(amount float64, ax Axis) (Bounds3D, error) {
	lo, hi := b.Lo(ax)-amount, b.Hi(ax)+amount
	if lo > hi {
		return Bounds3D{}, &ConstructionError{Axis: ax, Lo: lo, Hi: hi}
	}
	out := b
	switch ax {
	case T:
		out.t1, out.t2 = lo, hi
	case X:
		out.x1, out.x2 = lo, hi
	case Y:
		out.y1, out.y2 = lo, hi
	}
	return out, nil
}
