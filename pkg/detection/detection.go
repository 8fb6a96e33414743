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

// Package detection holds the data shapes exchanged with the external
// object-detection loader and turns raw per-frame detections into an
// IntervalSetMapping: one interval per box, one set per video, frame
// indexes converted to seconds via fps and pixel boxes normalized to [0,1]
// by frame width and height.
package detection

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/lsheiba/rekall/pkg/bounds"
	"github.com/lsheiba/rekall/pkg/interval"
	"github.com/lsheiba/rekall/pkg/intervalset"
	"github.com/lsheiba/rekall/pkg/mapping"
)

// Payload fields attached to every ingested interval.
const (
	FieldClass = "class"
	FieldScore = "score"
)

// VideoMetadata describes one video as reported by the loader.
type VideoMetadata struct {
	ID        int     `json:"id"`
	FPS       float64 `json:"fps"`
	NumFrames int     `json:"num_frames"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// Box is one detection in pixel coordinates. On the wire it is the tuple
// [x1, y1, x2, y2, class, score].
type Box struct {
	X1    float64
	Y1    float64
	X2    float64
	Y2    float64
	Class string
	Score float64
}

// UnmarshalJSON decodes the loader's heterogeneous tuple form.
func (b *Box) UnmarshalJSON(data []byte) error {
	var tuple []interface{}
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 6 {
		return fmt.Errorf("detection tuple has %d elements, want 6", len(tuple))
	}
	coords := make([]float64, 4)
	for i := 0; i < 4; i++ {
		f, ok := tuple[i].(float64)
		if !ok {
			return fmt.Errorf("detection tuple element %d is %T, want number", i, tuple[i])
		}
		coords[i] = f
	}
	class, ok := tuple[4].(string)
	if !ok {
		return fmt.Errorf("detection tuple element 4 is %T, want string", tuple[4])
	}
	score, ok := tuple[5].(float64)
	if !ok {
		return fmt.Errorf("detection tuple element 5 is %T, want number", tuple[5])
	}
	b.X1, b.Y1, b.X2, b.Y2 = coords[0], coords[1], coords[2], coords[3]
	b.Class = class
	b.Score = score
	return nil
}

// MarshalJSON encodes the tuple form back.
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{b.X1, b.Y1, b.X2, b.Y2, b.Class, b.Score})
}

// VideoDetections is one video's metadata plus its per-frame boxes,
// ordered by frame index.
type VideoDetections struct {
	Metadata VideoMetadata `json:"metadata"`
	Frames   [][]Box       `json:"frames"`
}

// Load decodes a list of VideoDetections from JSON.
func Load(r io.Reader) ([]VideoDetections, error) {
	var videos []VideoDetections
	if err := json.NewDecoder(r).Decode(&videos); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}
	return videos, nil
}

type ingestOptions struct {
	minScore float64
	classes  map[string]struct{}
}

// IngestOption customizes IntoMapping.
type IngestOption func(*ingestOptions)

// WithMinScore drops boxes scoring below min during ingestion.
func WithMinScore(min float64) IngestOption {
	return func(o *ingestOptions) {
		o.minScore = min
	}
}

// WithClasses keeps only boxes whose class label is listed.
func WithClasses(classes ...string) IngestOption {
	return func(o *ingestOptions) {
		o.classes = make(map[string]struct{}, len(classes))
		for _, c := range classes {
			o.classes[c] = struct{}{}
		}
	}
}

// IntoMapping builds an IntervalSetMapping keyed by video id: one interval
// per box, covering [frame/fps, (frame+1)/fps) on the temporal axis with
// spatial coordinates normalized by frame width and height, payload
// {class, score}.
func IntoMapping(videos []VideoDetections, opts ...IngestOption) (*mapping.Mapping[int], error) {
	options := &ingestOptions{}
	for _, opt := range opts {
		opt(options)
	}

	sets := make(map[int]*intervalset.IntervalSet, len(videos))
	for _, v := range videos {
		md := v.Metadata
		if md.FPS <= 0 {
			return nil, fmt.Errorf("video %d: fps must be positive, got %v", md.ID, md.FPS)
		}
		if md.Width <= 0 || md.Height <= 0 {
			return nil, fmt.Errorf("video %d: frame size must be positive, got %dx%d", md.ID, md.Width, md.Height)
		}
		if _, dup := sets[md.ID]; dup {
			return nil, fmt.Errorf("duplicate video id %d", md.ID)
		}

		var ivs []*interval.Interval
		w, h := float64(md.Width), float64(md.Height)
		for frame, boxes := range v.Frames {
			t1 := float64(frame) / md.FPS
			t2 := float64(frame+1) / md.FPS
			for _, box := range boxes {
				if box.Score < options.minScore {
					continue
				}
				if options.classes != nil {
					if _, ok := options.classes[box.Class]; !ok {
						continue
					}
				}
				b, err := bounds.New(t1, t2, box.X1/w, box.X2/w, box.Y1/h, box.Y2/h)
				if err != nil {
					return nil, fmt.Errorf("video %d frame %d: %w", md.ID, frame, err)
				}
				ivs = append(ivs, interval.New(b, interval.Payload{
					FieldClass: box.Class,
					FieldScore: box.Score,
				}))
			}
		}
		sets[md.ID] = intervalset.New(ivs...)
	}
	return mapping.FromSets(sets), nil
}
