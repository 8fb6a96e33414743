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

// Package predicate implements composable boolean functions over intervals
// and interval pairs. Binary predicates parameterize Minus, Coalesce and
// Join; unary predicates parameterize Filter. Combinators short-circuit
// left to right and pass the same interval pair to every operand.
package predicate

import (
	"fmt"

	"github.com/lsheiba/rekall/pkg/bounds"
	"github.com/lsheiba/rekall/pkg/interval"
	sharedexpr "github.com/lsheiba/rekall/pkg/shared/expr"
)

// Unary evaluates a single interval.
type Unary func(iv *interval.Interval) (bool, error)

// Binary relates a pair of intervals.
type Binary func(a, b *interval.Interval) (bool, error)

// And returns a predicate that holds iff all operands hold. Evaluation
// short-circuits left to right.
func And(preds ...Binary) Binary {
	return func(a, b *interval.Interval) (bool, error) {
		for _, p := range preds {
			ok, err := p(a, b)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
}

// Or returns a predicate that holds iff any operand holds. Evaluation
// short-circuits left to right.
func Or(preds ...Binary) Binary {
	return func(a, b *interval.Interval) (bool, error) {
		for _, p := range preds {
			ok, err := p(a, b)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// Not negates a predicate.
func Not(p Binary) Binary {
	return func(a, b *interval.Interval) (bool, error) {
		ok, err := p(a, b)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

// Always holds for every pair. It is the pass-through predicate for
// Coalesce.
func Always() Binary {
	return func(a, b *interval.Interval) (bool, error) {
		return true, nil
	}
}

// Overlaps holds iff the two intervals overlap on the given axis under the
// half-open rule (touching endpoints do not overlap).
func Overlaps(ax bounds.Axis) Binary {
	return func(a, b *interval.Interval) (bool, error) {
		return a.Bounds().Overlaps(b.Bounds(), ax), nil
	}
}

// IOUAtLeast holds iff the X/Y rectangle intersection-over-union of the two
// intervals is at least threshold. A zero-area union never satisfies the
// predicate, whatever the threshold.
func IOUAtLeast(threshold float64) Binary {
	return func(a, b *interval.Interval) (bool, error) {
		ab, bb := a.Bounds(), b.Bounds()
		if ab.Size(bounds.X)*ab.Size(bounds.Y) == 0 && bb.Size(bounds.X)*bb.Size(bounds.Y) == 0 {
			return false, nil
		}
		return ab.IOU(bb) >= threshold, nil
	}
}

// Before holds iff a ends at or before b starts on the temporal axis.
func Before() Binary {
	return func(a, b *interval.Interval) (bool, error) {
		return a.Bounds().T2() <= b.Bounds().T1(), nil
	}
}

// After holds iff a starts at or after b ends on the temporal axis.
func After() Binary {
	return func(a, b *interval.Interval) (bool, error) {
		return a.Bounds().T1() >= b.Bounds().T2(), nil
	}
}

// AllOf returns a unary predicate that holds iff all operands hold,
// short-circuiting left to right.
func AllOf(preds ...Unary) Unary {
	return func(iv *interval.Interval) (bool, error) {
		for _, p := range preds {
			ok, err := p(iv)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
}

// FieldEquals holds iff the payload field equals want. A missing field is a
// FieldError, not false.
func FieldEquals(field string, want interface{}) Unary {
	return func(iv *interval.Interval) (bool, error) {
		v, err := iv.Payload().Field(field)
		if err != nil {
			return false, fmt.Errorf("interval %s: %w", iv.ID(), err)
		}
		return v == want, nil
	}
}

// FieldAtLeast holds iff the numeric payload field is at least min.
func FieldAtLeast(field string, min float64) Unary {
	return func(iv *interval.Interval) (bool, error) {
		v, err := iv.Payload().FloatField(field)
		if err != nil {
			return false, fmt.Errorf("interval %s: %w", iv.ID(), err)
		}
		return v >= min, nil
	}
}

// Expr compiles an expression into a unary payload predicate, e.g.
// `payload.class == "car" && payload.score >= 0.9`. Compiled programs are
// cached, so constructing the same expression repeatedly is cheap.
//
// A field the expression reads but the payload lacks is a FieldError
// naming the interval, never a silent false: the evaluator fetches a
// missing map key as nil, so the fields the expression references are
// checked for presence before every evaluation.
func Expr(expression string) Unary {
	fields := sharedexpr.ReferencedFields(expression)
	return func(iv *interval.Interval) (bool, error) {
		payload := iv.Payload()
		for _, field := range fields {
			if _, ok := payload[field]; !ok {
				return false, fmt.Errorf("interval %s: %w", iv.ID(), &interval.FieldError{Field: field})
			}
		}
		ok, err := sharedexpr.EvalBool(expression, payload)
		if err != nil {
			return false, fmt.Errorf("interval %s: %w", iv.ID(), err)
		}
		return ok, nil
	}
}
