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

	"github.com/montanaflynn/stats"

	"github.com/lsheiba/rekall/pkg/bounds"
)

// Summary describes the distribution of per-interval span on one axis.
type Summary struct {
	Count int
	Total float64
	Mean  float64
	Min   float64
	Max   float64
	P50   float64
	P95   float64
}

// Summary computes span statistics over the set on the given axis. An
// empty set yields a zero Summary.
func (s *IntervalSet) Summary(ax bounds.Axis) (Summary, error) {
	if len(s.intervals) == 0 {
		return Summary{}, nil
	}

	sizes := make(stats.Float64Data, 0, len(s.intervals))
	for _, iv := range s.intervals {
		sizes = append(sizes, iv.Bounds().Size(ax))
	}

	if len(sizes) == 1 {
		size := sizes[0]
		return Summary{Count: 1, Total: size, Mean: size, Min: size, Max: size, P50: size, P95: size}, nil
	}

	out := Summary{Count: len(sizes)}
	var err error
	if out.Total, err = stats.Sum(sizes); err != nil {
		return Summary{}, fmt.Errorf("summary on axis %s: %w", ax, err)
	}
	if out.Mean, err = stats.Mean(sizes); err != nil {
		return Summary{}, fmt.Errorf("summary on axis %s: %w", ax, err)
	}
	if out.Min, err = stats.Min(sizes); err != nil {
		return Summary{}, fmt.Errorf("summary on axis %s: %w", ax, err)
	}
	if out.Max, err = stats.Max(sizes); err != nil {
		return Summary{}, fmt.Errorf("summary on axis %s: %w", ax, err)
	}
	if out.P50, err = stats.Percentile(sizes, 50); err != nil {
		return Summary{}, fmt.Errorf("summary on axis %s: %w", ax, err)
	}
	if out.P95, err = stats.Percentile(sizes, 95); err != nil {
		return Summary{}, fmt.Errorf("summary on axis %s: %w", ax, err)
	}
	return out, nil
}
