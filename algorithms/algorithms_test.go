//
// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package algorithms

import (
	"math"

	"github.com/Sukanya-rs/differential-privacy/mechanisms"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// This file contains structs, functions, and values used to test the
// algorithm core.

var (
	ln3     = math.Log(3)
	tenten  = math.Pow10(-10)
	tenfive = math.Pow10(-5)
)

func ApproxEqual(x, y float64) bool {
	return cmp.Equal(x, y, cmpopts.EquateApprox(0, tenten))
}

// noNoise is a NumericalMechanism that doesn't add noise to the data and
// reports a fixed confidence interval of [-5, 5].
type noNoise struct {
	epsilon float64
	delta   float64
}

func (n noNoise) AddNoiseFloat64(x, _ float64) float64 {
	return x
}

func (n noNoise) AddNoiseInt64(x int64, _ float64) int64 {
	return x
}

func (n noNoise) NoiseConfidenceInterval(_, _ float64) (mechanisms.ConfidenceInterval, error) {
	return mechanisms.ConfidenceInterval{LowerBound: -5, UpperBound: 5}, nil
}

func (n noNoise) Epsilon() float64 {
	return n.epsilon
}

func (n noNoise) Delta() float64 {
	return n.delta
}

// mockRecord captures the parameters applied to a mockMechanismBuilder or
// any of its clones, so tests can inspect how an algorithm builder
// configured its mechanism factory.
type mockRecord struct {
	epsilon         *float64
	delta           *float64
	l0Sensitivity   *int64
	lInfSensitivity *float64
}

// mockMechanismBuilder builds a noNoise mechanism and records all applied
// parameters in a record shared with its clones.
type mockMechanismBuilder struct {
	record *mockRecord
}

func newMockMechanismBuilder() *mockMechanismBuilder {
	return &mockMechanismBuilder{record: &mockRecord{}}
}

func (b *mockMechanismBuilder) Clone() mechanisms.MechanismBuilder {
	return &mockMechanismBuilder{record: b.record}
}

func (b *mockMechanismBuilder) SetEpsilon(epsilon float64) mechanisms.MechanismBuilder {
	b.record.epsilon = &epsilon
	return b
}

func (b *mockMechanismBuilder) SetDelta(delta float64) mechanisms.MechanismBuilder {
	b.record.delta = &delta
	return b
}

func (b *mockMechanismBuilder) SetL0Sensitivity(l0Sensitivity int64) mechanisms.MechanismBuilder {
	b.record.l0Sensitivity = &l0Sensitivity
	return b
}

func (b *mockMechanismBuilder) SetLInfSensitivity(lInfSensitivity float64) mechanisms.MechanismBuilder {
	b.record.lInfSensitivity = &lInfSensitivity
	return b
}

func (b *mockMechanismBuilder) Build() (mechanisms.NumericalMechanism, error) {
	m := noNoise{}
	if b.record.epsilon != nil {
		m.epsilon = *b.record.epsilon
	}
	if b.record.delta != nil {
		m.delta = *b.record.delta
	}
	return m, nil
}
