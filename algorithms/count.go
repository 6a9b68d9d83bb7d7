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
	"unsafe"

	"github.com/Sukanya-rs/differential-privacy/mechanisms"
)

const countAlgorithmType = "Count"

// Count calculates a differentially private count of a collection of
// entries. The entry values themselves are ignored; only their number
// matters.
//
// It supports privacy units contributing to multiple partitions via the
// MaxPartitionsContributed parameter, which scales the added noise
// appropriately.
//
// The provided differentially private count is an unbiased estimate of the
// raw count.
//
// Not thread-safe.
type Count struct {
	BaseAlgorithm

	l0Sensitivity   int64
	lInfSensitivity int64
	mechanism       mechanisms.NumericalMechanism

	count int64
}

// CountBuilder builds Count instances.
type CountBuilder struct {
	AlgorithmBuilder[int64, *Count, *CountBuilder]
}

// NewCountBuilder returns a CountBuilder with no parameters configured.
func NewCountBuilder() *CountBuilder {
	b := &CountBuilder{}
	b.Init(b)
	return b
}

// BuildAlgorithm assembles the Count. Called by Build after shared
// validation.
func (b *CountBuilder) BuildAlgorithm() (*Count, error) {
	mechanism, err := b.UpdateAndBuildMechanism()
	if err != nil {
		return nil, invalidArgumentf("couldn't build the count's noise mechanism: %v", err)
	}
	epsilon, _ := b.Epsilon()
	delta := DefaultDelta
	if d, ok := b.Delta(); ok {
		delta = d
	}
	l0Sensitivity := int64(1)
	if l0, ok := b.MaxPartitionsContributed(); ok {
		l0Sensitivity = l0
	}
	lInfSensitivity := int64(1)
	if lInf, ok := b.MaxContributionsPerPartition(); ok {
		lInfSensitivity = lInf
	}
	return &Count{
		BaseAlgorithm:   NewBaseAlgorithm(epsilon, delta),
		l0Sensitivity:   l0Sensitivity,
		lInfSensitivity: lInfSensitivity,
		mechanism:       mechanism,
	}, nil
}

// AddEntry increments the count by one. The entry value is ignored.
func (c *Count) AddEntry(_ int64) {
	c.count++
}

// GenerateResult returns the noised count, spending the given budget
// fraction. The noise confidence interval is attached when it can be
// computed for the supplied confidence level.
func (c *Count) GenerateResult(budgetFraction, confidenceLevel float64) (*Output, error) {
	out := &Output{Value: float64(c.mechanism.AddNoiseInt64(c.count, budgetFraction))}
	if interval, err := c.NoiseConfidenceInterval(confidenceLevel, budgetFraction); err == nil {
		out.NoiseConfidenceInterval = &interval
	}
	return out, nil
}

// ResetState sets the count back to zero.
func (c *Count) ResetState() {
	c.count = 0
}

// NoiseConfidenceInterval computes the interval containing the noise added
// to a count released with the given budget fraction.
func (c *Count) NoiseConfidenceInterval(confidenceLevel, budgetFraction float64) (ConfidenceInterval, error) {
	interval, err := c.mechanism.NoiseConfidenceInterval(confidenceLevel, budgetFraction)
	if err != nil {
		return ConfidenceInterval{}, invalidArgumentf("%v", err)
	}
	return ConfidenceInterval{
		LowerBound:      interval.LowerBound,
		UpperBound:      interval.UpperBound,
		ConfidenceLevel: confidenceLevel,
	}, nil
}

// MemoryUsed estimates the heap footprint of the Count in bytes.
func (c *Count) MemoryUsed() int64 {
	return int64(unsafe.Sizeof(*c))
}

// encodableCount is the gob payload of a Count summary.
type encodableCount struct {
	AlgorithmType   string
	MechanismType   string
	Epsilon         float64
	Delta           float64
	L0Sensitivity   int64
	LInfSensitivity int64
	Count           int64
}

// Serialize encodes the accumulated count and the parameters needed to
// verify merge compatibility. Budget state is not part of the summary.
func (c *Count) Serialize() (*Summary, error) {
	data, err := encode(encodableCount{
		AlgorithmType:   countAlgorithmType,
		MechanismType:   fmt.Sprintf("%T", c.mechanism),
		Epsilon:         c.Epsilon(),
		Delta:           c.Delta(),
		L0Sensitivity:   c.l0Sensitivity,
		LInfSensitivity: c.lInfSensitivity,
		Count:           c.count,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't encode count summary: %v", err)
	}
	return &Summary{Data: data}, nil
}

// Merge adds the count of a summary produced by an equally configured Count
// into c, as if its entries had been added to c directly.
func (c *Count) Merge(s *Summary) error {
	if s.Empty() {
		return invalidArgumentf("summary is empty, cannot be merged into a Count")
	}
	var enc encodableCount
	if err := decode(&enc, s.Data); err != nil {
		return invalidArgumentf("couldn't decode count summary: %v", err)
	}
	if enc.AlgorithmType != countAlgorithmType {
		return invalidArgumentf("summary was produced by a %q algorithm, cannot be merged into a Count", enc.AlgorithmType)
	}
	if err := c.checkMergeCompatibility(enc); err != nil {
		return err
	}
	c.count += enc.Count
	return nil
}

func (c *Count) checkMergeCompatibility(enc encodableCount) error {
	same := enc.Epsilon == c.Epsilon() &&
		enc.Delta == c.Delta() &&
		enc.L0Sensitivity == c.l0Sensitivity &&
		enc.LInfSensitivity == c.lInfSensitivity &&
		enc.MechanismType == fmt.Sprintf("%T", c.mechanism)
	if !same {
		return invalidArgumentf("summary parameters do not match the Count it is merged into")
	}
	return nil
}
