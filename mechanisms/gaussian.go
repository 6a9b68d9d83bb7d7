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

package mechanisms

import (
	"fmt"
	"math"

	"github.com/Sukanya-rs/differential-privacy/checks"
	"github.com/Sukanya-rs/differential-privacy/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// gaussianSigmaAccuracy bounds the relative deviation of the binary search
// result from the tight standard deviation σ_tight.
const gaussianSigmaAccuracy = 1e-3

// GaussianBuilder assembles a Gaussian mechanism, which provides
// (ε,δ)-approximate differential privacy. A δ in the open interval (0,1) is
// required.
type GaussianBuilder struct {
	epsilon         *float64
	delta           *float64
	l0Sensitivity   *int64
	lInfSensitivity *float64
}

// NewGaussianBuilder returns an empty GaussianBuilder.
func NewGaussianBuilder() *GaussianBuilder {
	return &GaussianBuilder{}
}

// Clone returns an independent copy of the builder.
func (b *GaussianBuilder) Clone() MechanismBuilder {
	clone := &GaussianBuilder{}
	if b.epsilon != nil {
		epsilon := *b.epsilon
		clone.epsilon = &epsilon
	}
	if b.delta != nil {
		delta := *b.delta
		clone.delta = &delta
	}
	if b.l0Sensitivity != nil {
		l0 := *b.l0Sensitivity
		clone.l0Sensitivity = &l0
	}
	if b.lInfSensitivity != nil {
		lInf := *b.lInfSensitivity
		clone.lInfSensitivity = &lInf
	}
	return clone
}

// SetEpsilon sets the privacy parameter ε.
func (b *GaussianBuilder) SetEpsilon(epsilon float64) MechanismBuilder {
	b.epsilon = &epsilon
	return b
}

// SetDelta sets the privacy parameter δ.
func (b *GaussianBuilder) SetDelta(delta float64) MechanismBuilder {
	b.delta = &delta
	return b
}

// SetL0Sensitivity sets the maximum number of partitions a single privacy
// unit can contribute to.
func (b *GaussianBuilder) SetL0Sensitivity(l0Sensitivity int64) MechanismBuilder {
	b.l0Sensitivity = &l0Sensitivity
	return b
}

// SetLInfSensitivity sets the maximum contribution of a single privacy unit
// to a single partition.
func (b *GaussianBuilder) SetLInfSensitivity(lInfSensitivity float64) MechanismBuilder {
	b.lInfSensitivity = &lInfSensitivity
	return b
}

// Build validates the configuration and returns the calibrated Gaussian
// mechanism. Unset sensitivities default to 1.
func (b *GaussianBuilder) Build() (NumericalMechanism, error) {
	if b.epsilon == nil {
		return nil, fmt.Errorf("GaussianBuilder: Epsilon must be set")
	}
	if err := checks.CheckEpsilonStrict(*b.epsilon); err != nil {
		return nil, fmt.Errorf("GaussianBuilder: %v", err)
	}
	if b.delta == nil {
		return nil, fmt.Errorf("GaussianBuilder: Delta must be set")
	}
	if err := checks.CheckDeltaStrict(*b.delta); err != nil {
		return nil, fmt.Errorf("GaussianBuilder: %v", err)
	}
	l0 := int64(1)
	if b.l0Sensitivity != nil {
		l0 = *b.l0Sensitivity
	}
	if err := checks.CheckL0Sensitivity(l0); err != nil {
		return nil, fmt.Errorf("GaussianBuilder: %v", err)
	}
	lInf := 1.0
	if b.lInfSensitivity != nil {
		lInf = *b.lInfSensitivity
	}
	if err := checks.CheckLInfSensitivity(lInf); err != nil {
		return nil, fmt.Errorf("GaussianBuilder: %v", err)
	}
	return gaussianMechanism{
		epsilon:       *b.epsilon,
		delta:         *b.delta,
		l2Sensitivity: lInf * math.Sqrt(float64(l0)),
	}, nil
}

// gaussianMechanism adds Gaussian noise with a standard deviation calibrated
// to the mechanism's L_2 sensitivity and privacy parameters.
type gaussianMechanism struct {
	epsilon       float64
	delta         float64
	l2Sensitivity float64
}

func (m gaussianMechanism) sigma(budgetFraction float64) float64 {
	return sigmaForGaussian(m.l2Sensitivity, m.epsilon*budgetFraction, m.delta*budgetFraction)
}

// AddNoiseFloat64 adds Gaussian noise scaled to the mechanism's L_2
// sensitivity and the given budget fraction.
func (m gaussianMechanism) AddNoiseFloat64(x, budgetFraction float64) float64 {
	return x + rand.Normal()*m.sigma(budgetFraction)
}

// AddNoiseInt64 adds rounded Gaussian noise to an integer valued aggregate.
func (m gaussianMechanism) AddNoiseInt64(x int64, budgetFraction float64) int64 {
	return x + int64(math.Round(rand.Normal()*m.sigma(budgetFraction)))
}

// NoiseConfidenceInterval computes the interval around zero that contains a
// noise draw with probability confidenceLevel.
func (m gaussianMechanism) NoiseConfidenceInterval(confidenceLevel, budgetFraction float64) (ConfidenceInterval, error) {
	if err := checkConfidenceArgs(confidenceLevel, budgetFraction); err != nil {
		return ConfidenceInterval{}, err
	}
	alpha := 1 - confidenceLevel
	z := m.sigma(budgetFraction) * distuv.UnitNormal.Quantile(1-alpha/2)
	return ConfidenceInterval{LowerBound: -z, UpperBound: z}, nil
}

// Epsilon returns the privacy parameter ε the mechanism was calibrated with.
func (m gaussianMechanism) Epsilon() float64 {
	return m.epsilon
}

// Delta returns the privacy parameter δ the mechanism was calibrated with.
func (m gaussianMechanism) Delta() float64 {
	return m.delta
}

func (m gaussianMechanism) String() string {
	return fmt.Sprintf("Gaussian mechanism (ε=%f, δ=%e, L_2 sensitivity=%f)", m.epsilon, m.delta, m.l2Sensitivity)
}

// deltaForGaussian computes the smallest δ such that the Gaussian mechanism
// with standard deviation σ is (ε,δ)-differentially private for the given
// L_2 sensitivity. The calculation is based on Theorem 8 of Balle and Wang's
// "Improving the Gaussian Mechanism for Differential Privacy: Analytical
// Calibration and Optimal Denoising" (https://arxiv.org/abs/1805.06530v2):
//
//	δ(σ,s,ε) := Φ(s/(2σ) - εσ/s) - exp(ε)Φ(-s/(2σ) - εσ/s)
//
// where Φ is the standard Gaussian CDF.
func deltaForGaussian(sigma, l2Sensitivity, epsilon float64) float64 {
	a := l2Sensitivity / (2 * sigma)
	b := epsilon * sigma / l2Sensitivity
	c := math.Exp(epsilon)

	if math.IsInf(c, +1) {
		// δ(σ,s,ε) –> 0 as ε –> ∞.
		return 0
	}
	if math.IsInf(b, +1) {
		// δ(σ,s,ε) –> 0 as the L_2 sensitivity –> 0.
		return 0
	}
	return distuv.UnitNormal.CDF(a-b) - c*distuv.UnitNormal.CDF(-a-b)
}

// sigmaForGaussian calculates the standard deviation σ of Gaussian noise
// needed to achieve (ε,δ)-approximate differential privacy for the given
// L_2 sensitivity.
//
// sigmaForGaussian uses binary search; the result deviates from the tight
// value σ_tight by a relative error of at most gaussianSigmaAccuracy, and
// always errs on the side of more noise.
func sigmaForGaussian(l2Sensitivity, epsilon, delta float64) float64 {
	if delta >= 1 {
		return 0
	}

	// The required noise grows linearly with the sensitivity, which makes
	// l2Sensitivity a reasonable starting guess for the upper bound.
	upperBound := l2Sensitivity
	var lowerBound float64

	// deltaForGaussian is decreasing in σ. Grow upperBound until it actually
	// bounds σ_tight from above.
	for deltaForGaussian(upperBound, l2Sensitivity, epsilon) > delta {
		lowerBound = upperBound
		upperBound = upperBound * 2
	}

	for upperBound-lowerBound > gaussianSigmaAccuracy*lowerBound {
		middle := lowerBound*0.5 + upperBound*0.5
		if deltaForGaussian(middle, l2Sensitivity, epsilon) > delta {
			lowerBound = middle
		} else {
			upperBound = middle
		}
	}

	return upperBound
}
