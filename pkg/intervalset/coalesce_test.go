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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsheiba/rekall/pkg/bounds"
	"github.com/lsheiba/rekall/pkg/interval"
	"github.com/lsheiba/rekall/pkg/predicate"
)

func TestCoalesce_MergesAdjacent(t *testing.T) {
	// three temporally adjacent, spatially matching intervals
	s := New(
		spatial(t, 0, 30, 0.1, 0.2, 0.5, 0.6, interval.Payload{"class": "car"}),
		spatial(t, 30, 60, 0.1, 0.2, 0.5, 0.6, interval.Payload{"class": "car"}),
		spatial(t, 60, 90, 0.1, 0.2, 0.5, 0.6, interval.Payload{"class": "car"}),
	)

	merged, err := s.Coalesce(bounds.T, bounds.Bounds3D.Span, predicate.Always())
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())

	only := merged.Intervals()[0]
	assert.Equal(t, [][2]float64{{0, 90}}, temporalSpans(merged))
	// keep-first payload policy
	cls, err := only.Payload().StringField("class")
	require.NoError(t, err)
	assert.Equal(t, "car", cls)
}

func TestCoalesce_GapsStayApart(t *testing.T) {
	s := New(
		temporal(t, 0, 30, nil),
		temporal(t, 40, 60, nil),
		temporal(t, 55, 90, nil),
	)

	merged, err := s.Coalesce(bounds.T, bounds.Bounds3D.Span, predicate.Always())
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{0, 30}, {40, 90}}, temporalSpans(merged))
}

func TestCoalesce_SortsBeforeMerging(t *testing.T) {
	s := New(
		temporal(t, 60, 90, nil),
		temporal(t, 0, 30, nil),
		temporal(t, 30, 60, nil),
	)

	merged, err := s.Coalesce(bounds.T, bounds.Bounds3D.Span, predicate.Always())
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{0, 90}}, temporalSpans(merged))
}

func TestCoalesce_PredicateGatesMerge(t *testing.T) {
	// spatially disjoint intervals must not merge when the predicate
	// requires spatial agreement
	s := New(
		spatial(t, 0, 30, 0.0, 0.1, 0.5, 0.6, nil),
		spatial(t, 20, 50, 0.05, 0.15, 0.5, 0.6, nil),
		spatial(t, 40, 70, 0.8, 0.9, 0.5, 0.6, nil),
	)

	merged, err := s.Coalesce(bounds.T, bounds.Bounds3D.Span, predicate.IOUAtLeast(0.1))
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{0, 50}, {40, 70}}, temporalSpans(merged))
}

func TestCoalesce_Idempotent(t *testing.T) {
	s := New(
		temporal(t, 0, 30, nil),
		temporal(t, 25, 60, nil),
		temporal(t, 100, 130, nil),
	)

	once, err := s.Coalesce(bounds.T, bounds.Bounds3D.Span, predicate.Always())
	require.NoError(t, err)
	twice, err := once.Coalesce(bounds.T, bounds.Bounds3D.Span, predicate.Always())
	require.NoError(t, err)

	assert.Equal(t, temporalSpans(once), temporalSpans(twice))
	assert.Equal(t, once.Len(), twice.Len())
}

func TestCoalesce_PayloadMergerOption(t *testing.T) {
	s := New(
		temporal(t, 0, 30, interval.Payload{"frames": 1}),
		temporal(t, 30, 60, interval.Payload{"frames": 2}),
	)

	merged, err := s.Coalesce(bounds.T, bounds.Bounds3D.Span, predicate.Always(),
		WithPayloadMerger(func(into, from interval.Payload) interval.Payload {
			out := into.Clone()
			out["frames"] = into["frames"].(int) + from["frames"].(int)
			return out
		}))
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())

	frames, err := merged.Intervals()[0].Payload().FloatField("frames")
	require.NoError(t, err)
	assert.Equal(t, 3.0, frames)
}

func TestCoalesce_Empty(t *testing.T) {
	merged, err := Empty().Coalesce(bounds.T, bounds.Bounds3D.Span, predicate.Always())
	require.NoError(t, err)
	assert.True(t, merged.IsEmpty())
}
