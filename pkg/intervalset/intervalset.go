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

// Package intervalset implements IntervalSet, an ordered collection of
// intervals belonging to one logical track, and the set algebra over it:
// Filter, Map, Dilate, Minus, Coalesce, FilterSize and Join. Every
// operation is a pure function from its inputs to a new IntervalSet; the
// receiver is never mutated. An operation either fully succeeds or fails
// without returning a partially built set.
package intervalset

import (
	"fmt"
	"math"
	"sort"

	"github.com/lsheiba/rekall/pkg/bounds"
	"github.com/lsheiba/rekall/pkg/interval"
	"github.com/lsheiba/rekall/pkg/predicate"
)

// Unbounded is the upper size limit meaning "no limit" for FilterSize.
var Unbounded = math.Inf(1)

// IntervalSet is an ordered sequence of intervals. Duplicates are legal and
// meaningful; no temporal order is required at construction. Operations
// that merge adjacent intervals sort internally by the chosen axis's lower
// bound (stable, lower bound ascending then upper bound ascending).
type IntervalSet struct {
	intervals []*interval.Interval
}

// New creates an IntervalSet over the given intervals, preserving their
// order. The input slice is copied.
func New(intervals ...*interval.Interval) *IntervalSet {
	items := make([]*interval.Interval, len(intervals))
	copy(items, intervals)
	return &IntervalSet{intervals: items}
}

// Empty returns an IntervalSet with no intervals.
func Empty() *IntervalSet {
	return &IntervalSet{}
}

// Len returns the number of intervals in the set.
func (s *IntervalSet) Len() int {
	return len(s.intervals)
}

// IsEmpty reports whether the set has no intervals.
func (s *IntervalSet) IsEmpty() bool {
	return len(s.intervals) == 0
}

// Intervals returns a copy of the set's intervals in order.
func (s *IntervalSet) Intervals() []*interval.Interval {
	items := make([]*interval.Interval, len(s.intervals))
	copy(items, s.intervals)
	return items
}

// Filter returns a new set containing exactly the intervals for which the
// predicate holds, order preserved.
func (s *IntervalSet) Filter(pred predicate.Unary) (*IntervalSet, error) {
	out := make([]*interval.Interval, 0, len(s.intervals))
	for _, iv := range s.intervals {
		ok, err := pred(iv)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, iv)
		}
	}
	return &IntervalSet{intervals: out}, nil
}

// MapFunc replaces one interval with another. Implementations producing new
// bounds go through the bounds constructors, so an invalid result (lo > hi
// on any axis) surfaces as a ConstructionError from the constructor.
type MapFunc func(iv *interval.Interval) (*interval.Interval, error)

// Map returns a new set with each interval replaced by fn(interval).
func (s *IntervalSet) Map(fn MapFunc) (*IntervalSet, error) {
	out := make([]*interval.Interval, 0, len(s.intervals))
	for _, iv := range s.intervals {
		mapped, err := fn(iv)
		if err != nil {
			return nil, err
		}
		if mapped == nil {
			return nil, fmt.Errorf("map produced a nil interval for %s", iv.ID())
		}
		out = append(out, mapped)
	}
	return &IntervalSet{intervals: out}, nil
}

// Dilate returns a new set with every interval expanded by amount on each
// side of the given axis. A negative amount that would invert an interval
// is rejected with a ConstructionError; results are never clipped.
func (s *IntervalSet) Dilate(amount float64, ax bounds.Axis) (*IntervalSet, error) {
	return s.Map(func(iv *interval.Interval) (*interval.Interval, error) {
		b, err := iv.Bounds().Dilate(amount, ax)
		if err != nil {
			return nil, fmt.Errorf("dilate interval %s: %w", iv.ID(), err)
		}
		return iv.WithBounds(b), nil
	})
}

// FilterSize retains only intervals whose span on the given axis falls
// within [minSize, maxSize] inclusive. Pass Unbounded for no upper limit.
func (s *IntervalSet) FilterSize(minSize, maxSize float64, ax bounds.Axis) *IntervalSet {
	out := make([]*interval.Interval, 0, len(s.intervals))
	for _, iv := range s.intervals {
		size := iv.Bounds().Size(ax)
		if size >= minSize && size <= maxSize {
			out = append(out, iv)
		}
	}
	return &IntervalSet{intervals: out}
}

// Union returns a new set holding this set's intervals followed by the
// other set's intervals. No deduplication is performed.
func (s *IntervalSet) Union(other *IntervalSet) *IntervalSet {
	out := make([]*interval.Interval, 0, len(s.intervals)+len(other.intervals))
	out = append(out, s.intervals...)
	out = append(out, other.intervals...)
	return &IntervalSet{intervals: out}
}

// Sorted returns a new set ordered by the given axis's lower bound
// ascending, ties broken by upper bound ascending, then stable on the
// original order.
func (s *IntervalSet) Sorted(ax bounds.Axis) *IntervalSet {
	return &IntervalSet{intervals: sortedByAxis(s.intervals, ax)}
}

func sortedByAxis(items []*interval.Interval, ax bounds.Axis) []*interval.Interval {
	out := make([]*interval.Interval, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := out[i].Bounds(), out[j].Bounds()
		if bi.Lo(ax) != bj.Lo(ax) {
			return bi.Lo(ax) < bj.Lo(ax)
		}
		return bi.Hi(ax) < bj.Hi(ax)
	})
	return out
}
