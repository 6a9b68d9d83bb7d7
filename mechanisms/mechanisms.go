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

// Package mechanisms contains numerical noise mechanisms and their builders.
//
// A numerical mechanism is calibrated once, at build time, to a fixed
// epsilon, delta, and L_0/L_∞ sensitivity configuration. Each noise draw
// additionally takes the fraction of the total privacy budget being spent,
// so that intermediate results can be released without exceeding the
// mechanism's overall (ε,δ) guarantee.
package mechanisms

import (
	"fmt"
	"math"

	"github.com/Sukanya-rs/differential-privacy/checks"
)

// ConfidenceInterval holds lower and upper bounds of an interval that
// contains the noise added by a mechanism with some probability.
type ConfidenceInterval struct {
	LowerBound, UpperBound float64
}

// NumericalMechanism perturbs numerical aggregation results to make them
// differentially private.
//
// The budgetFraction arguments scale the privacy parameters of each draw:
// adding noise with a fraction f provides (f·ε, f·δ)-differential privacy.
// Budget fractions must lie in (0, 1]; apportioning them across draws is the
// caller's responsibility.
type NumericalMechanism interface {
	// AddNoiseFloat64 returns x perturbed with noise calibrated to the
	// mechanism's sensitivities and the given budget fraction.
	AddNoiseFloat64(x, budgetFraction float64) float64

	// AddNoiseInt64 is like AddNoiseFloat64 for integer valued aggregates.
	AddNoiseInt64(x int64, budgetFraction float64) int64

	// NoiseConfidenceInterval returns an interval in which a single noise
	// draw with the given budget fraction falls with probability
	// confidenceLevel. The interval is centered around zero and computed
	// analytically, not by sampling.
	NoiseConfidenceInterval(confidenceLevel, budgetFraction float64) (ConfidenceInterval, error)

	// Epsilon returns the total privacy loss parameter the mechanism was
	// calibrated with.
	Epsilon() float64

	// Delta returns the secondary privacy loss parameter the mechanism was
	// calibrated with.
	Delta() float64
}

// MechanismBuilder assembles a NumericalMechanism from privacy parameters
// and sensitivity bounds. Setters return the builder to allow chaining;
// validation happens in Build.
//
// Builders are plain values holding configuration. Clone returns an
// independent copy so that a shared builder can be specialized without
// mutating the original.
type MechanismBuilder interface {
	Clone() MechanismBuilder
	SetEpsilon(epsilon float64) MechanismBuilder
	SetDelta(delta float64) MechanismBuilder
	SetL0Sensitivity(l0Sensitivity int64) MechanismBuilder
	SetLInfSensitivity(lInfSensitivity float64) MechanismBuilder
	Build() (NumericalMechanism, error)
}

// checkBudgetFraction returns an error if the fraction lies outside (0,1].
func checkBudgetFraction(budgetFraction float64) error {
	if budgetFraction <= 0 || budgetFraction > 1 || math.IsNaN(budgetFraction) {
		return fmt.Errorf("budget fraction is %f, must be within (0, 1]", budgetFraction)
	}
	return nil
}

// checkConfidenceArgs validates the arguments common to all
// NoiseConfidenceInterval implementations.
func checkConfidenceArgs(confidenceLevel, budgetFraction float64) error {
	if err := checks.CheckConfidenceLevel(confidenceLevel); err != nil {
		return err
	}
	return checkBudgetFraction(budgetFraction)
}
