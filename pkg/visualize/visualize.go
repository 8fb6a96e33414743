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

// Package visualize serializes a finished IntervalSetMapping into the JSON
// shape consumed by the external grid widget: one track per key with the
// key order ascending and the interval order of each set preserved. The
// payload travels verbatim as the widget's opaque rendering hint.
package visualize

import (
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/lsheiba/rekall/pkg/interval"
	"github.com/lsheiba/rekall/pkg/mapping"
)

// IntervalJSON is the wire form of one interval.
type IntervalJSON struct {
	ID      string           `json:"id"`
	T1      float64          `json:"t1"`
	T2      float64          `json:"t2"`
	X1      float64          `json:"x1"`
	X2      float64          `json:"x2"`
	Y1      float64          `json:"y1"`
	Y2      float64          `json:"y2"`
	Payload interval.Payload `json:"payload,omitempty"`
}

// TrackJSON is the wire form of one key's IntervalSet.
type TrackJSON[K any] struct {
	Key       K              `json:"key"`
	Intervals []IntervalJSON `json:"intervals"`
}

// Export writes the mapping as JSON, keys ascending.
func Export[K int | string](m *mapping.Mapping[K], w io.Writer) error {
	keys := m.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	tracks := make([]TrackJSON[K], 0, len(keys))
	for _, key := range keys {
		ivs := m.Get(key).Intervals()
		track := TrackJSON[K]{Key: key, Intervals: make([]IntervalJSON, 0, len(ivs))}
		for _, iv := range ivs {
			b := iv.Bounds()
			track.Intervals = append(track.Intervals, IntervalJSON{
				ID: iv.ID().String(),
				T1: b.T1(), T2: b.T2(),
				X1: b.X1(), X2: b.X2(),
				Y1: b.Y1(), Y2: b.Y2(),
				Payload: iv.Payload(),
			})
		}
		tracks = append(tracks, track)
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(tracks); err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	return nil
}
