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

package detection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsheiba/rekall/pkg/bounds"
)

const sample = `[
  {
    "metadata": {"id": 3, "fps": 2, "num_frames": 2, "width": 1000, "height": 500},
    "frames": [
      [[100, 250, 200, 300, "car", 0.92], [800, 0, 900, 50, "person", 0.4]],
      [[100, 250, 200, 300, "car", 0.95]]
    ]
  }
]`

func TestLoad(t *testing.T) {
	videos, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, videos, 1)

	v := videos[0]
	assert.Equal(t, 3, v.Metadata.ID)
	assert.Equal(t, 2.0, v.Metadata.FPS)
	require.Len(t, v.Frames, 2)
	require.Len(t, v.Frames[0], 2)
	assert.Equal(t, Box{X1: 100, Y1: 250, X2: 200, Y2: 300, Class: "car", Score: 0.92}, v.Frames[0][0])
}

func TestLoad_MalformedTuple(t *testing.T) {
	_, err := Load(strings.NewReader(`[{"metadata":{"id":1,"fps":1,"num_frames":1,"width":10,"height":10},"frames":[[[1,2,3,"car",0.5]]]}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5 elements")
}

func TestIntoMapping(t *testing.T) {
	videos, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	m, err := IntoMapping(videos)
	require.NoError(t, err)
	require.True(t, m.Has(3))

	ivs := m.Get(3).Intervals()
	require.Len(t, ivs, 3)

	// frame 0 at 2 fps covers [0, 0.5)
	b := ivs[0].Bounds()
	assert.Equal(t, 0.0, b.T1())
	assert.Equal(t, 0.5, b.T2())
	// pixels normalized by width/height
	assert.Equal(t, 0.1, b.X1())
	assert.Equal(t, 0.2, b.X2())
	assert.Equal(t, 0.5, b.Y1())
	assert.Equal(t, 0.6, b.Y2())

	cls, err := ivs[0].Payload().StringField(FieldClass)
	require.NoError(t, err)
	assert.Equal(t, "car", cls)
	score, err := ivs[0].Payload().FloatField(FieldScore)
	require.NoError(t, err)
	assert.Equal(t, 0.92, score)

	// frame 1 covers [0.5, 1)
	assert.Equal(t, 0.5, ivs[2].Bounds().T1())
	assert.Equal(t, 1.0, ivs[2].Bounds().T2())
}

func TestIntoMapping_Options(t *testing.T) {
	videos, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	m, err := IntoMapping(videos, WithMinScore(0.9), WithClasses("car"))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Get(3).Len())

	m, err = IntoMapping(videos, WithClasses("person"))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Get(3).Len())
}

func TestIntoMapping_RejectsBadMetadata(t *testing.T) {
	videos := []VideoDetections{{Metadata: VideoMetadata{ID: 1, FPS: 0, Width: 10, Height: 10}}}
	_, err := IntoMapping(videos)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fps")

	videos = []VideoDetections{{Metadata: VideoMetadata{ID: 1, FPS: 1, Width: 0, Height: 10}}}
	_, err = IntoMapping(videos)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame size")
}

func TestIntoMapping_SpansAnchorPipeline(t *testing.T) {
	videos, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	m, err := IntoMapping(videos, WithClasses("car"))
	require.NoError(t, err)

	// adjacent frame intervals must be coalescible into one span
	for _, iv := range m.Get(3).Intervals() {
		assert.InDelta(t, 0.5, iv.Bounds().Size(bounds.T), 1e-9)
	}
}
