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

// Package interval implements Interval, the atomic unit of the model: a
// Bounds3D plus an opaque payload. Payloads have no engine-enforced schema;
// predicates read fields by key and fail at evaluation time if a field is
// absent.
package interval

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/lsheiba/rekall/pkg/bounds"
)

// FieldError is returned when a payload field a predicate expects is missing
// or has an unexpected type.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("payload field %q is missing or has an unexpected type", e.Field)
}

// Payload is an arbitrary associative structure attached to an Interval.
// Downstream predicates read fields by key.
type Payload map[string]interface{}

// Field returns the raw value of the named field.
func (p Payload) Field(name string) (interface{}, error) {
	v, ok := p[name]
	if !ok {
		return nil, &FieldError{Field: name}
	}
	return v, nil
}

// StringField returns the named field as a string.
func (p Payload) StringField(name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", &FieldError{Field: name}
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: name}
	}
	return s, nil
}

// FloatField returns the named field as a float64. Integer values are
// widened; anything else is a FieldError.
func (p Payload) FloatField(name string) (float64, error) {
	v, ok := p[name]
	if !ok {
		return 0, &FieldError{Field: name}
	}
	switch w := v.(type) {
	case float64:
		return w, nil
	case float32:
		return float64(w), nil
	case int:
		return float64(w), nil
	case int64:
		return float64(w), nil
	default:
		return 0, &FieldError{Field: name}
	}
}

// Clone returns a shallow copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Interval is a Bounds3D with a payload and a stable identity. Two
// structurally equal Intervals remain distinct elements of a set unless
// explicitly deduplicated; identity, not structure, is what set operations
// compare.
type Interval struct {
	id      uuid.UUID
	bounds  bounds.Bounds3D
	payload Payload
}

// New creates an Interval with a fresh identity.
func New(b bounds.Bounds3D, p Payload) *Interval {
	return &Interval{
		id:      uuid.New(),
		bounds:  b,
		payload: p,
	}
}

// ID returns the interval's identity.
func (iv *Interval) ID() uuid.UUID { return iv.id }

// Bounds returns the interval's bounds.
func (iv *Interval) Bounds() bounds.Bounds3D { return iv.bounds }

// Payload returns the interval's payload.
func (iv *Interval) Payload() Payload { return iv.payload }

// WithBounds derives a new Interval carrying the given bounds and the same
// payload and identity.
func (iv *Interval) WithBounds(b bounds.Bounds3D) *Interval {
	return &Interval{id: iv.id, bounds: b, payload: iv.payload}
}

// WithPayload derives a new Interval carrying the given payload and the same
// bounds and identity.
func (iv *Interval) WithPayload(p Payload) *Interval {
	return &Interval{id: iv.id, bounds: iv.bounds, payload: p}
}

func (iv *Interval) String() string {
	b := iv.bounds
	return fmt.Sprintf("interval[t=[%v,%v) x=[%v,%v) y=[%v,%v)]",
		b.T1(), b.T2(), b.X1(), b.X2(), b.Y1(), b.Y2())
}
