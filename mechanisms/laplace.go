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
)

// LaplaceBuilder assembles a Laplace mechanism. It is the default mechanism
// builder of the algorithm layer.
//
// The Laplace mechanism provides pure ε-differential privacy; setting a
// non-zero delta is rejected at Build time.
type LaplaceBuilder struct {
	epsilon         *float64
	delta           *float64
	l0Sensitivity   *int64
	lInfSensitivity *float64
}

// NewLaplaceBuilder returns an empty LaplaceBuilder.
func NewLaplaceBuilder() *LaplaceBuilder {
	return &LaplaceBuilder{}
}

// Clone returns an independent copy of the builder.
func (b *LaplaceBuilder) Clone() MechanismBuilder {
	clone := &LaplaceBuilder{}
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
func (b *LaplaceBuilder) SetEpsilon(epsilon float64) MechanismBuilder {
	b.epsilon = &epsilon
	return b
}

// SetDelta sets the privacy parameter δ. The Laplace mechanism only accepts
// a δ of zero.
func (b *LaplaceBuilder) SetDelta(delta float64) MechanismBuilder {
	b.delta = &delta
	return b
}

// SetL0Sensitivity sets the maximum number of partitions a single privacy
// unit can contribute to.
func (b *LaplaceBuilder) SetL0Sensitivity(l0Sensitivity int64) MechanismBuilder {
	b.l0Sensitivity = &l0Sensitivity
	return b
}

// SetLInfSensitivity sets the maximum contribution of a single privacy unit
// to a single partition.
func (b *LaplaceBuilder) SetLInfSensitivity(lInfSensitivity float64) MechanismBuilder {
	b.lInfSensitivity = &lInfSensitivity
	return b
}

// Build validates the configuration and returns the calibrated Laplace
// mechanism. Unset sensitivities default to 1.
func (b *LaplaceBuilder) Build() (NumericalMechanism, error) {
	if b.epsilon == nil {
		return nil, fmt.Errorf("LaplaceBuilder: Epsilon must be set")
	}
	if err := checks.CheckEpsilonStrict(*b.epsilon); err != nil {
		return nil, fmt.Errorf("LaplaceBuilder: %v", err)
	}
	if b.delta != nil {
		if err := checks.CheckNoDelta(*b.delta); err != nil {
			return nil, fmt.Errorf("LaplaceBuilder: %v", err)
		}
	}
	l0 := int64(1)
	if b.l0Sensitivity != nil {
		l0 = *b.l0Sensitivity
	}
	if err := checks.CheckL0Sensitivity(l0); err != nil {
		return nil, fmt.Errorf("LaplaceBuilder: %v", err)
	}
	lInf := 1.0
	if b.lInfSensitivity != nil {
		lInf = *b.lInfSensitivity
	}
	if err := checks.CheckLInfSensitivity(lInf); err != nil {
		return nil, fmt.Errorf("LaplaceBuilder: %v", err)
	}
	return laplaceMechanism{
		epsilon:       *b.epsilon,
		l1Sensitivity: float64(l0) * lInf,
	}, nil
}

// laplaceMechanism adds Laplace noise with scale λ = L_1 sensitivity / ε.
type laplaceMechanism struct {
	epsilon       float64
	l1Sensitivity float64
}

func (m laplaceMechanism) lambda(budgetFraction float64) float64 {
	return m.l1Sensitivity / (m.epsilon * budgetFraction)
}

// AddNoiseFloat64 adds Laplace noise scaled to the mechanism's L_1
// sensitivity and the given budget fraction.
func (m laplaceMechanism) AddNoiseFloat64(x, budgetFraction float64) float64 {
	// A sample from the exponential distribution with a uniform random sign
	// is Laplace distributed. rand.Uniform never returns 0, so the log is
	// always finite.
	return x - rand.Sign()*m.lambda(budgetFraction)*math.Log(rand.Uniform())
}

// AddNoiseInt64 adds rounded Laplace noise to an integer valued aggregate.
func (m laplaceMechanism) AddNoiseInt64(x int64, budgetFraction float64) int64 {
	return x + int64(math.Round(m.AddNoiseFloat64(0, budgetFraction)))
}

// NoiseConfidenceInterval computes the interval around zero that contains a
// noise draw with probability confidenceLevel.
func (m laplaceMechanism) NoiseConfidenceInterval(confidenceLevel, budgetFraction float64) (ConfidenceInterval, error) {
	if err := checkConfidenceArgs(confidenceLevel, budgetFraction); err != nil {
		return ConfidenceInterval{}, err
	}
	alpha := 1 - confidenceLevel
	z := inverseCDFLaplace(m.lambda(budgetFraction), alpha/2)
	// By symmetry of the Laplace distribution, -z is the (1-alpha/2)-quantile.
	// Deriving it from the (alpha/2)-quantile keeps precision for small alpha.
	return ConfidenceInterval{LowerBound: z, UpperBound: -z}, nil
}

// Epsilon returns the privacy parameter ε the mechanism was calibrated with.
func (m laplaceMechanism) Epsilon() float64 {
	return m.epsilon
}

// Delta returns 0; the Laplace mechanism does not admit a δ.
func (m laplaceMechanism) Delta() float64 {
	return 0
}

func (m laplaceMechanism) String() string {
	return fmt.Sprintf("Laplace mechanism (ε=%f, L_1 sensitivity=%f)", m.epsilon, m.l1Sensitivity)
}

// inverseCDFLaplace computes the quantile z satisfying Pr[Y <= z] = p for a
// random variable Y that is Laplace distributed with the specified lambda
// and mean zero.
func inverseCDFLaplace(lambda, p float64) float64 {
	if p < 0.5 {
		return lambda * math.Log(2*p)
	}
	return -lambda * math.Log(2*(1-p))
}
