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

	log "github.com/golang/glog"

	"github.com/Sukanya-rs/differential-privacy/checks"
	"github.com/Sukanya-rs/differential-privacy/mechanisms"
)

// DefaultEpsilon is substituted when a builder has no epsilon configured.
// It exists for testing convenience only: any production use case should
// set its own epsilon based on privacy considerations, and Build warns
// whenever the default is applied.
var DefaultEpsilon = math.Log(3)

// Assembler is the assembly hook a concrete builder provides. It is called
// by Build after all shared parameter validation has passed and constructs
// the concrete algorithm, typically via UpdateAndBuildMechanism.
type Assembler[A any] interface {
	BuildAlgorithm() (A, error)
}

// AlgorithmBuilder is the generic construction pipeline shared by all
// algorithm builders. A concrete builder embeds it, instantiating B with
// its own pointer type so that the chained setters return the concrete
// builder and subtype specific setters stay reachable:
//
//	count, err := NewCountBuilder().SetEpsilon(ln3).SetMaxPartitionsContributed(2).Build()
//
// All parameters are optional; fields left unset are distinguishable from
// explicitly configured ones via the accessors. Setters perform no
// validation, Build does.
type AlgorithmBuilder[T any, A Algorithm[T], B Assembler[A]] struct {
	self B

	epsilon                      *float64
	delta                        *float64
	maxPartitionsContributed     *int64
	maxContributionsPerPartition *int64

	// The mechanism builder can be replaced to interject custom mechanisms
	// for testing or to select Gaussian noise.
	mechanismBuilder mechanisms.MechanismBuilder
}

// Init wires the embedded builder to the concrete builder and installs the
// default Laplace mechanism builder. Concrete builder constructors must
// call it exactly once.
func (b *AlgorithmBuilder[T, A, B]) Init(self B) {
	b.self = self
	b.mechanismBuilder = mechanisms.NewLaplaceBuilder()
}

// SetEpsilon sets the total privacy loss parameter ε of the built algorithm.
func (b *AlgorithmBuilder[T, A, B]) SetEpsilon(epsilon float64) B {
	b.epsilon = &epsilon
	return b.self
}

// SetDelta sets the secondary privacy loss parameter δ of the built
// algorithm.
func (b *AlgorithmBuilder[T, A, B]) SetDelta(delta float64) B {
	b.delta = &delta
	return b.self
}

// SetMaxPartitionsContributed bounds the number of distinct partitions a
// single privacy unit can contribute to (the L_0 sensitivity).
func (b *AlgorithmBuilder[T, A, B]) SetMaxPartitionsContributed(maxPartitionsContributed int64) B {
	b.maxPartitionsContributed = &maxPartitionsContributed
	return b.self
}

// SetMaxContributionsPerPartition bounds the number of contributions a
// single privacy unit can make to a single partition (the L_∞ sensitivity).
// Note that for bounded algorithms this does not bound the magnitude of a
// contribution, only their number.
func (b *AlgorithmBuilder[T, A, B]) SetMaxContributionsPerPartition(maxContributionsPerPartition int64) B {
	b.maxContributionsPerPartition = &maxContributionsPerPartition
	return b.self
}

// SetMechanismBuilder replaces the default Laplace mechanism builder.
func (b *AlgorithmBuilder[T, A, B]) SetMechanismBuilder(mechanismBuilder mechanisms.MechanismBuilder) B {
	b.mechanismBuilder = mechanismBuilder
	return b.self
}

// Build validates the configured parameters and delegates to the concrete
// builder's assembly hook. Each validation step fails with an error
// wrapping ErrInvalidArgument.
func (b *AlgorithmBuilder[T, A, B]) Build() (A, error) {
	var zero A
	if b.epsilon == nil {
		epsilon := DefaultEpsilon
		b.epsilon = &epsilon
		// A missing epsilon is a privacy footgun that must never pass
		// silently.
		log.Warningf("Default epsilon of %f is being used. Consider setting your own epsilon based on privacy considerations.", epsilon)
	}
	if err := checks.CheckEpsilonStrict(*b.epsilon); err != nil {
		return zero, invalidArgumentf("%v", err)
	}
	if b.delta != nil {
		if err := checks.CheckDelta(*b.delta); err != nil {
			return zero, invalidArgumentf("%v", err)
		}
	}
	if b.maxPartitionsContributed != nil {
		if err := checks.CheckMaxPartitionsContributed(*b.maxPartitionsContributed); err != nil {
			return zero, invalidArgumentf("%v", err)
		}
	}
	if b.maxContributionsPerPartition != nil {
		if err := checks.CheckMaxContributionsPerPartition(*b.maxContributionsPerPartition); err != nil {
			return zero, invalidArgumentf("%v", err)
		}
	}
	return b.self.BuildAlgorithm()
}

// Epsilon returns the configured ε without re-validating it. ok is false if
// no epsilon has been set.
func (b *AlgorithmBuilder[T, A, B]) Epsilon() (epsilon float64, ok bool) {
	if b.epsilon == nil {
		return 0, false
	}
	return *b.epsilon, true
}

// Delta returns the configured δ without re-validating it. ok is false if
// no delta has been set.
func (b *AlgorithmBuilder[T, A, B]) Delta() (delta float64, ok bool) {
	if b.delta == nil {
		return 0, false
	}
	return *b.delta, true
}

// MaxPartitionsContributed returns the configured L_0 sensitivity. ok is
// false if it has not been set.
func (b *AlgorithmBuilder[T, A, B]) MaxPartitionsContributed() (maxPartitionsContributed int64, ok bool) {
	if b.maxPartitionsContributed == nil {
		return 0, false
	}
	return *b.maxPartitionsContributed, true
}

// MaxContributionsPerPartition returns the configured L_∞ sensitivity. ok
// is false if it has not been set.
func (b *AlgorithmBuilder[T, A, B]) MaxContributionsPerPartition() (maxContributionsPerPartition int64, ok bool) {
	if b.maxContributionsPerPartition == nil {
		return 0, false
	}
	return *b.maxContributionsPerPartition, true
}

// MechanismBuilderClone returns an independent copy of the configured
// mechanism builder, for assembly hooks that need to calibrate the
// mechanism with derived sensitivities.
func (b *AlgorithmBuilder[T, A, B]) MechanismBuilderClone() mechanisms.MechanismBuilder {
	return b.mechanismBuilder.Clone()
}

// UpdateAndBuildMechanism clones the configured mechanism builder, applies
// the builder's privacy parameters and sensitivities to the clone, and
// builds the mechanism. Cloning keeps Build non-destructive and
// repeatable.
//
// Sensitivities that were not explicitly set fall back to 1, the backward
// compatible default.
func (b *AlgorithmBuilder[T, A, B]) UpdateAndBuildMechanism() (mechanisms.NumericalMechanism, error) {
	clone := b.mechanismBuilder.Clone()
	if b.epsilon != nil {
		clone.SetEpsilon(*b.epsilon)
	}
	if b.delta != nil {
		clone.SetDelta(*b.delta)
	}
	l0Sensitivity := int64(1)
	if b.maxPartitionsContributed != nil {
		l0Sensitivity = *b.maxPartitionsContributed
	}
	lInfSensitivity := int64(1)
	if b.maxContributionsPerPartition != nil {
		lInfSensitivity = *b.maxContributionsPerPartition
	}
	return clone.SetL0Sensitivity(l0Sensitivity).SetLInfSensitivity(float64(lInfSensitivity)).Build()
}
