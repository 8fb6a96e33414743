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

// Package mapping implements IntervalSetMapping, a mapping from an opaque
// key (typically a video id) to one IntervalSet. Every IntervalSet
// operation is lifted key-wise: it is applied independently to the set at
// each key and the results are re-assembled under the same keys. No
// cross-key interaction is ever permitted; that isolation is what makes
// the per-key fan-out safe.
//
// Binary operations between two mappings use the union of both key sets; a
// key missing from one side is treated as an empty IntervalSet, never an
// error.
package mapping

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lsheiba/rekall/pkg/bounds"
	"github.com/lsheiba/rekall/pkg/intervalset"
	"github.com/lsheiba/rekall/pkg/predicate"
	"github.com/lsheiba/rekall/pkg/shared/logging"
)

type config struct {
	parallelism int
	logger      *zap.SugaredLogger
}

// Option customizes a Mapping.
type Option func(*config)

// WithParallelism caps how many keys are processed concurrently during
// lifted operations. Defaults to GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithLogger sets the logger used by lifted operations. Without it the
// logger travels in the operation's context (logging.FromContext).
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Mapping is an IntervalSetMapping. It is constructed once and then
// immutable by convention: every lifted operation returns a new Mapping and
// never mutates the receiver.
type Mapping[K comparable] struct {
	sets map[K]*intervalset.IntervalSet
	cfg  config
}

// New creates an empty Mapping.
func New[K comparable](opts ...Option) *Mapping[K] {
	return FromSets(map[K]*intervalset.IntervalSet{}, opts...)
}

// FromSets creates a Mapping over the given sets. The map is copied; nil
// sets are replaced with empty ones.
func FromSets[K comparable](sets map[K]*intervalset.IntervalSet, opts ...Option) *Mapping[K] {
	cfg := config{parallelism: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&cfg)
	}
	copied := make(map[K]*intervalset.IntervalSet, len(sets))
	for k, s := range sets {
		if s == nil {
			s = intervalset.Empty()
		}
		copied[k] = s
	}
	return &Mapping[K]{sets: copied, cfg: cfg}
}

// Len returns the number of keys.
func (m *Mapping[K]) Len() int {
	return len(m.sets)
}

// Keys returns the mapping's keys in no particular order.
func (m *Mapping[K]) Keys() []K {
	keys := make([]K, 0, len(m.sets))
	for k := range m.sets {
		keys = append(keys, k)
	}
	return keys
}

// Get returns the IntervalSet at the key, or an empty set when the key is
// absent.
func (m *Mapping[K]) Get(key K) *intervalset.IntervalSet {
	if s, ok := m.sets[key]; ok {
		return s
	}
	return intervalset.Empty()
}

// Has reports whether the key is present.
func (m *Mapping[K]) Has(key K) bool {
	_, ok := m.sets[key]
	return ok
}

// lift applies one per-key operation across keys on a bounded errgroup and
// re-assembles the results under the same keys. Any per-key error aborts
// the whole operation: the caller gets the combined error and no partial
// mapping.
func lift[K comparable](ctx context.Context, m *Mapping[K], keys []K, op string, apply func(K) (*intervalset.IntervalSet, error)) (*Mapping[K], error) {
	log := m.cfg.logger
	if log == nil {
		log = logging.FromContext(ctx)
	}

	var (
		mu   sync.Mutex
		out  = make(map[K]*intervalset.IntervalSet, len(keys))
		errs error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.parallelism)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Debugw("applying operation", "op", op, "key", key)
			result, err := apply(key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				err = fmt.Errorf("key %v: %w", key, err)
				errs = multierr.Append(errs, err)
				return err
			}
			out[key] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errs != nil {
			return nil, errs
		}
		return nil, err
	}
	return &Mapping[K]{sets: out, cfg: m.cfg}, nil
}

// unionKeys returns the union of both mappings' key sets.
func unionKeys[K comparable](a, b *Mapping[K]) []K {
	seen := make(map[K]struct{}, len(a.sets)+len(b.sets))
	keys := make([]K, 0, len(a.sets)+len(b.sets))
	for k := range a.sets {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range b.sets {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Filter lifts IntervalSet.Filter across all keys.
func (m *Mapping[K]) Filter(ctx context.Context, pred predicate.Unary) (*Mapping[K], error) {
	return lift(ctx, m, m.Keys(), "filter", func(k K) (*intervalset.IntervalSet, error) {
		return m.sets[k].Filter(pred)
	})
}

// Map lifts IntervalSet.Map across all keys.
func (m *Mapping[K]) Map(ctx context.Context, fn intervalset.MapFunc) (*Mapping[K], error) {
	return lift(ctx, m, m.Keys(), "map", func(k K) (*intervalset.IntervalSet, error) {
		return m.sets[k].Map(fn)
	})
}

// Dilate lifts IntervalSet.Dilate across all keys.
func (m *Mapping[K]) Dilate(ctx context.Context, amount float64, ax bounds.Axis) (*Mapping[K], error) {
	return lift(ctx, m, m.Keys(), "dilate", func(k K) (*intervalset.IntervalSet, error) {
		return m.sets[k].Dilate(amount, ax)
	})
}

// FilterSize lifts IntervalSet.FilterSize across all keys.
func (m *Mapping[K]) FilterSize(ctx context.Context, minSize, maxSize float64, ax bounds.Axis) (*Mapping[K], error) {
	return lift(ctx, m, m.Keys(), "filter_size", func(k K) (*intervalset.IntervalSet, error) {
		return m.sets[k].FilterSize(minSize, maxSize, ax), nil
	})
}

// Coalesce lifts IntervalSet.Coalesce across all keys.
func (m *Mapping[K]) Coalesce(ctx context.Context, ax bounds.Axis, merge intervalset.BoundsMerger, pred predicate.Binary, opts ...intervalset.CoalesceOption) (*Mapping[K], error) {
	return lift(ctx, m, m.Keys(), "coalesce", func(k K) (*intervalset.IntervalSet, error) {
		return m.sets[k].Coalesce(ax, merge, pred, opts...)
	})
}

// Minus lifts IntervalSet.Minus across the union of both mappings' keys.
// A key missing from either side contributes an empty IntervalSet.
func (m *Mapping[K]) Minus(ctx context.Context, other *Mapping[K], pred predicate.Binary, window float64) (*Mapping[K], error) {
	return lift(ctx, m, unionKeys(m, other), "minus", func(k K) (*intervalset.IntervalSet, error) {
		return m.Get(k).Minus(other.Get(k), pred, window)
	})
}

// Join lifts IntervalSet.Join across the union of both mappings' keys.
// A key missing from either side contributes an empty IntervalSet.
func (m *Mapping[K]) Join(ctx context.Context, other *Mapping[K], pred predicate.Binary, window float64, merge intervalset.PairMerger) (*Mapping[K], error) {
	return lift(ctx, m, unionKeys(m, other), "join", func(k K) (*intervalset.IntervalSet, error) {
		return m.Get(k).Join(other.Get(k), pred, window, merge)
	})
}
