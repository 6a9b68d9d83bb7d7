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
	"fmt"
	"math"
	"unsafe"

	"github.com/Sukanya-rs/differential-privacy/checks"
	"github.com/Sukanya-rs/differential-privacy/mechanisms"
)

const boundedSumAlgorithmType = "BoundedSumFloat64"

// BoundedSumFloat64 calculates a differentially private sum of a collection
// of float64 values. Each entry is clamped to the configured [lower, upper]
// interval before it is added, which bounds the influence any single entry
// can have on the result.
//
// Not thread-safe.
type BoundedSumFloat64 struct {
	BaseAlgorithm

	lower, upper                 float64
	l0Sensitivity                int64
	maxContributionsPerPartition int64
	mechanism                    mechanisms.NumericalMechanism

	sum float64
}

// BoundedSumFloat64Builder builds BoundedSumFloat64 instances. Lower and
// upper clamping bounds are required.
type BoundedSumFloat64Builder struct {
	AlgorithmBuilder[float64, *BoundedSumFloat64, *BoundedSumFloat64Builder]

	lower *float64
	upper *float64
}

// NewBoundedSumFloat64Builder returns a BoundedSumFloat64Builder with no
// parameters configured.
func NewBoundedSumFloat64Builder() *BoundedSumFloat64Builder {
	b := &BoundedSumFloat64Builder{}
	b.Init(b)
	return b
}

// SetLower sets the lower clamping bound for entries.
func (b *BoundedSumFloat64Builder) SetLower(lower float64) *BoundedSumFloat64Builder {
	b.lower = &lower
	return b
}

// SetUpper sets the upper clamping bound for entries.
func (b *BoundedSumFloat64Builder) SetUpper(upper float64) *BoundedSumFloat64Builder {
	b.upper = &upper
	return b
}

// BuildAlgorithm assembles the BoundedSumFloat64. Called by Build after
// shared validation.
//
// The L_∞ sensitivity of a bounded sum is derived, not configured: it is
// the largest absolute clamping bound times the number of contributions a
// privacy unit can make to a partition. The mechanism is therefore
// calibrated from a builder clone directly instead of via
// UpdateAndBuildMechanism.
func (b *BoundedSumFloat64Builder) BuildAlgorithm() (*BoundedSumFloat64, error) {
	if b.lower == nil || b.upper == nil {
		return nil, invalidArgumentf("lower and upper clamping bounds of a bounded sum must both be set")
	}
	if err := checks.CheckBoundsFloat64(*b.lower, *b.upper); err != nil {
		return nil, invalidArgumentf("%v", err)
	}
	l0Sensitivity := int64(1)
	if l0, ok := b.MaxPartitionsContributed(); ok {
		l0Sensitivity = l0
	}
	maxContributionsPerPartition := int64(1)
	if lInf, ok := b.MaxContributionsPerPartition(); ok {
		maxContributionsPerPartition = lInf
	}
	lInfSensitivity := math.Max(math.Abs(*b.lower), math.Abs(*b.upper)) * float64(maxContributionsPerPartition)

	clone := b.MechanismBuilderClone()
	if epsilon, ok := b.Epsilon(); ok {
		clone.SetEpsilon(epsilon)
	}
	if delta, ok := b.Delta(); ok {
		clone.SetDelta(delta)
	}
	mechanism, err := clone.SetL0Sensitivity(l0Sensitivity).SetLInfSensitivity(lInfSensitivity).Build()
	if err != nil {
		return nil, invalidArgumentf("couldn't build the bounded sum's noise mechanism: %v", err)
	}

	epsilon, _ := b.Epsilon()
	delta := DefaultDelta
	if d, ok := b.Delta(); ok {
		delta = d
	}
	return &BoundedSumFloat64{
		BaseAlgorithm:                NewBaseAlgorithm(epsilon, delta),
		lower:                        *b.lower,
		upper:                        *b.upper,
		l0Sensitivity:                l0Sensitivity,
		maxContributionsPerPartition: maxContributionsPerPartition,
		mechanism:                    mechanism,
	}, nil
}

// AddEntry clamps e to the configured bounds and adds it to the sum. NaN
// entries are ignored since clamping them is not meaningful.
func (bs *BoundedSumFloat64) AddEntry(e float64) {
	if math.IsNaN(e) {
		return
	}
	clamped, err := ClampFloat64(e, bs.lower, bs.upper)
	if err != nil {
		// Bounds were validated at build time, so clamping cannot fail.
		return
	}
	bs.sum += clamped
}

// GenerateResult returns the noised sum, spending the given budget
// fraction. The noise confidence interval is attached when it can be
// computed for the supplied confidence level.
func (bs *BoundedSumFloat64) GenerateResult(budgetFraction, confidenceLevel float64) (*Output, error) {
	out := &Output{Value: bs.mechanism.AddNoiseFloat64(bs.sum, budgetFraction)}
	if interval, err := bs.NoiseConfidenceInterval(confidenceLevel, budgetFraction); err == nil {
		out.NoiseConfidenceInterval = &interval
	}
	return out, nil
}

// ResetState sets the sum back to zero.
func (bs *BoundedSumFloat64) ResetState() {
	bs.sum = 0
}

// NoiseConfidenceInterval computes the interval containing the noise added
// to a sum released with the given budget fraction.
func (bs *BoundedSumFloat64) NoiseConfidenceInterval(confidenceLevel, budgetFraction float64) (ConfidenceInterval, error) {
	interval, err := bs.mechanism.NoiseConfidenceInterval(confidenceLevel, budgetFraction)
	if err != nil {
		return ConfidenceInterval{}, invalidArgumentf("%v", err)
	}
	return ConfidenceInterval{
		LowerBound:      interval.LowerBound,
		UpperBound:      interval.UpperBound,
		ConfidenceLevel: confidenceLevel,
	}, nil
}

// MemoryUsed estimates the heap footprint of the BoundedSumFloat64 in
// bytes.
func (bs *BoundedSumFloat64) MemoryUsed() int64 {
	return int64(unsafe.Sizeof(*bs))
}

// encodableBoundedSum is the gob payload of a BoundedSumFloat64 summary.
type encodableBoundedSum struct {
	AlgorithmType                string
	MechanismType                string
	Epsilon                      float64
	Delta                        float64
	Lower                        float64
	Upper                        float64
	L0Sensitivity                int64
	MaxContributionsPerPartition int64
	Sum                          float64
}

// Serialize encodes the accumulated sum and the parameters needed to
// verify merge compatibility. Budget state is not part of the summary.
func (bs *BoundedSumFloat64) Serialize() (*Summary, error) {
	data, err := encode(encodableBoundedSum{
		AlgorithmType:                boundedSumAlgorithmType,
		MechanismType:                fmt.Sprintf("%T", bs.mechanism),
		Epsilon:                      bs.Epsilon(),
		Delta:                        bs.Delta(),
		Lower:                        bs.lower,
		Upper:                        bs.upper,
		L0Sensitivity:                bs.l0Sensitivity,
		MaxContributionsPerPartition: bs.maxContributionsPerPartition,
		Sum:                          bs.sum,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't encode bounded sum summary: %v", err)
	}
	return &Summary{Data: data}, nil
}

// Merge adds the sum of a summary produced by an equally configured
// BoundedSumFloat64 into bs, as if its entries had been added to bs
// directly.
func (bs *BoundedSumFloat64) Merge(s *Summary) error {
	if s.Empty() {
		return invalidArgumentf("summary is empty, cannot be merged into a BoundedSumFloat64")
	}
	var enc encodableBoundedSum
	if err := decode(&enc, s.Data); err != nil {
		return invalidArgumentf("couldn't decode bounded sum summary: %v", err)
	}
	if enc.AlgorithmType != boundedSumAlgorithmType {
		return invalidArgumentf("summary was produced by a %q algorithm, cannot be merged into a BoundedSumFloat64", enc.AlgorithmType)
	}
	if err := bs.checkMergeCompatibility(enc); err != nil {
		return err
	}
	bs.sum += enc.Sum
	return nil
}

func (bs *BoundedSumFloat64) checkMergeCompatibility(enc encodableBoundedSum) error {
	same := enc.Epsilon == bs.Epsilon() &&
		enc.Delta == bs.Delta() &&
		enc.Lower == bs.lower &&
		enc.Upper == bs.upper &&
		enc.L0Sensitivity == bs.l0Sensitivity &&
		enc.MaxContributionsPerPartition == bs.maxContributionsPerPartition &&
		enc.MechanismType == fmt.Sprintf("%T", bs.mechanism)
	if !same {
		return invalidArgumentf("summary parameters do not match the BoundedSumFloat64 it is merged into")
	}
	return nil
}
