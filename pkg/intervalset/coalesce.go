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
	"github.com/lsheiba/rekall/pkg/bounds"
	"github.com/lsheiba/rekall/pkg/interval"
	"github.com/lsheiba/rekall/pkg/predicate"
)

// BoundsMerger combines the bounds of two mergeable intervals into one.
// The usual merger is bounds.Bounds3D.Span.
type BoundsMerger func(a, b bounds.Bounds3D) bounds.Bounds3D

// PayloadMerger combines the payload of the open merged interval with the
// payload of the next interval absorbed into it.
type PayloadMerger func(into, from interval.Payload) interval.Payload

// KeepFirstPayload is the default payload policy: the merged interval
// keeps the payload of the first interval in its group and the payloads of
// later intervals are discarded.
func KeepFirstPayload(into, from interval.Payload) interval.Payload {
	return into
}

type coalesceOptions struct {
	payloadMerger PayloadMerger
}

// CoalesceOption customizes Coalesce.
type CoalesceOption func(*coalesceOptions)

// WithPayloadMerger overrides the keep-first payload policy.
func WithPayloadMerger(m PayloadMerger) CoalesceOption {
	return func(o *coalesceOptions) {
		o.payloadMerger = m
	}
}

// Coalesce sorts the intervals by the given axis's lower bound, then scans
// left to right keeping one open merged interval. The next interval is
// absorbed when it is adjacent or overlapping on the axis — touching
// endpoints DO merge here, unlike the half-open Overlaps rule — and the
// predicate holds for (current merged, next). Otherwise the open interval
// is emitted and the next interval opens a new group. Single linear pass
// after an O(n log n) sort.
//
// A group of one emits the original interval unchanged; a merged group
// emits a new interval whose bounds come from successive merge calls and
// whose payload follows the payload policy (default KeepFirstPayload).
func (s *IntervalSet) Coalesce(ax bounds.Axis, merge BoundsMerger, pred predicate.Binary, opts ...CoalesceOption) (*IntervalSet, error) {
	options := &coalesceOptions{payloadMerger: KeepFirstPayload}
	for _, opt := range opts {
		opt(options)
	}

	if len(s.intervals) == 0 {
		return Empty(), nil
	}

	ordered := sortedByAxis(s.intervals, ax)
	out := make([]*interval.Interval, 0, len(ordered))

	first := ordered[0]
	curBounds := first.Bounds()
	curPayload := first.Payload()
	merged := false

	emit := func() {
		if !merged {
			out = append(out, first)
			return
		}
		out = append(out, interval.New(curBounds, curPayload))
	}

	for _, next := range ordered[1:] {
		open := first
		if merged {
			open = first.WithBounds(curBounds).WithPayload(curPayload)
		}
		if next.Bounds().Lo(ax) <= curBounds.Hi(ax) {
			ok, err := pred(open, next)
			if err != nil {
				return nil, err
			}
			if ok {
				curBounds = merge(curBounds, next.Bounds())
				curPayload = options.payloadMerger(curPayload, next.Payload())
				merged = true
				continue
			}
		}
		emit()
		first = next
		curBounds = next.Bounds()
		curPayload = next.Payload()
		merged = false
	}
	emit()

	return &IntervalSet{intervals: out}, nil
}
