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

package intervalset

import (
	"fmt"
	"sort"

	"github.com/lsheiba/rekall/pkg/bounds"
	"github.com/lsheiba/rekall/pkg/interval"
	"github.com/lsheiba/rekall/pkg/predicate"
)

// PairMerger produces one interval out of a matching pair.
type PairMerger func(a, b *interval.Interval) (*interval.Interval, error)

// SpanPair is a PairMerger producing a new interval over the span of both
// bounds, keeping a's payload.
func SpanPair(a, b *interval.Interval) (*interval.Interval, error) {
	return interval.New(a.Bounds().Span(b.Bounds()), a.Payload()), nil
}

// candidateScan walks, for every interval of s in order, the intervals of
// other within temporal distance window, and calls visit on each pair.
// visit returning stop=true ends the scan for the current interval of s.
//
// The scan sorts other by temporal lower bound once, then bounds the
// lookahead per interval with a binary search for the upper cutoff and a
// start index derived from the largest temporal span in other, avoiding
// the full cross product. window only prunes candidates; predicates are
// evaluated on the original bounds.
func (s *IntervalSet) candidateScan(other *IntervalSet, window float64, visit func(a, b *interval.Interval) (stop bool, err error)) error {
	if window < 0 {
		return fmt.Errorf("window must be non-negative, got %v", window)
	}
	if other.IsEmpty() {
		return nil
	}

	ordered := sortedByAxis(other.intervals, bounds.T)
	maxSpan := 0.0
	for _, b := range ordered {
		if span := b.Bounds().Size(bounds.T); span > maxSpan {
			maxSpan = span
		}
	}

	for _, a := range s.intervals {
		aLo := a.Bounds().Lo(bounds.T)
		aHi := a.Bounds().Hi(bounds.T)

		// earliest candidate whose upper bound can still reach aLo - window
		start := sort.Search(len(ordered), func(i int) bool {
			return ordered[i].Bounds().Lo(bounds.T) >= aLo-window-maxSpan
		})
		for _, b := range ordered[start:] {
			if b.Bounds().Lo(bounds.T) > aHi+window {
				break
			}
			if b.Bounds().Hi(bounds.T) < aLo-window {
				continue
			}
			stop, err := visit(a, b)
			if err != nil {
				return err
			}
			if stop {
				break
			}
		}
	}
	return nil
}

// Minus returns the intervals of s for which no interval of other within
// temporal distance window satisfies the predicate. Matching intervals are
// dropped; the rest are retained unchanged and in order. An empty other
// returns s's intervals unchanged. Adding intervals to other can only
// shrink the result.
func (s *IntervalSet) Minus(other *IntervalSet, pred predicate.Binary, window float64) (*IntervalSet, error) {
	dropped := make(map[*interval.Interval]bool)
	err := s.candidateScan(other, window, func(a, b *interval.Interval) (bool, error) {
		ok, err := pred(a, b)
		if err != nil {
			return false, err
		}
		if ok {
			dropped[a] = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*interval.Interval, 0, len(s.intervals))
	for _, iv := range s.intervals {
		if !dropped[iv] {
			out = append(out, iv)
		}
	}
	return &IntervalSet{intervals: out}, nil
}

// Join cross-relates two sets: for every pair (a from s, b from other)
// within temporal distance window and satisfying the predicate, merge(a, b)
// is emitted. Join is the primitive beneath Minus, exposed for callers
// that need the matching pairs themselves.
func (s *IntervalSet) Join(other *IntervalSet, pred predicate.Binary, window float64, merge PairMerger) (*IntervalSet, error) {
	out := make([]*interval.Interval, 0)
	err := s.candidateScan(other, window, func(a, b *interval.Interval) (bool, error) {
		ok, err := pred(a, b)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		mergedIv, err := merge(a, b)
		if err != nil {
			return false, err
		}
		if mergedIv == nil {
			return false, fmt.Errorf("join merger produced a nil interval for %s and %s", a.ID(), b.ID())
		}
		out = append(out, mergedIv)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return &IntervalSet{intervals: out}, nil
}
