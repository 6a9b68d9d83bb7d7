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

// Package checks contains parameter validations shared by differentially
// private algorithms and noise mechanisms.
package checks

import (
	"fmt"
	"math"

	log "github.com/golang/glog"
)

const (
	epsilonName = "Epsilon"
	deltaName   = "Delta"
)

func verifyName(defaultName string, nameSlice []string) (string, error) {
	var name string
	switch len(nameSlice) {
	case 0:
		name = defaultName
	case 1:
		name = nameSlice[0]
	default:
		return "", fmt.Errorf("This should never happen. There should be 0 or 1 'name' parameter, got %d", len(nameSlice))
	}
	return name, nil
}

// CheckEpsilonStrict returns an error if ε is nonpositive, ±∞, or NaN.
func CheckEpsilonStrict(epsilon float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if epsilon <= 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%s is %f, must be strictly positive and finite", epsName, epsilon)
	}
	return nil
}

// CheckDelta returns an error if δ lies outside the closed interval [0,1]
// or is NaN.
func CheckDelta(delta float64, name ...string) error {
	delName, err := verifyName(deltaName, name)
	if err != nil {
		return err
	}
	if math.IsNaN(delta) {
		return fmt.Errorf("%s is %e, cannot be NaN", delName, delta)
	}
	if delta < 0 {
		return fmt.Errorf("%s is %e, cannot be negative", delName, delta)
	}
	if delta > 1 {
		return fmt.Errorf("%s is %e, cannot be greater than 1", delName, delta)
	}
	return nil
}

// CheckDeltaStrict returns an error if δ is nonpositive or greater than or
// equal to 1. Gaussian noise requires a δ in the open interval (0,1).
func CheckDeltaStrict(delta float64, name ...string) error {
	delName, err := verifyName(deltaName, name)
	if err != nil {
		return err
	}
	if math.IsNaN(delta) {
		return fmt.Errorf("%s is %e, cannot be NaN", delName, delta)
	}
	if delta <= 0 {
		return fmt.Errorf("%s is %e, must be strictly positive", delName, delta)
	}
	if delta >= 1 {
		return fmt.Errorf("%s is %e, must be strictly less than 1", delName, delta)
	}
	return nil
}

// CheckNoDelta returns an error if δ is non-zero. Laplace noise does not
// admit a δ.
func CheckNoDelta(delta float64, name ...string) error {
	delName, err := verifyName(deltaName, name)
	if err != nil {
		return err
	}
	if delta != 0 {
		return fmt.Errorf("%s is %e, must be 0", delName, delta)
	}
	return nil
}

// CheckL0Sensitivity returns an error if l0Sensitivity is nonpositive.
func CheckL0Sensitivity(l0Sensitivity int64) error {
	if l0Sensitivity <= 0 {
		return fmt.Errorf("L0Sensitivity is %d, must be strictly positive", l0Sensitivity)
	}
	return nil
}

// CheckLInfSensitivity returns an error if lInfSensitivity is nonpositive, ±∞,
// or NaN.
func CheckLInfSensitivity(lInfSensitivity float64) error {
	if lInfSensitivity <= 0 || math.IsInf(lInfSensitivity, 0) || math.IsNaN(lInfSensitivity) {
		return fmt.Errorf("LInfSensitivity is %f, must be strictly positive and finite", lInfSensitivity)
	}
	return nil
}

// CheckMaxPartitionsContributed returns an error if maxPartitionsContributed
// is nonpositive.
func CheckMaxPartitionsContributed(maxPartitionsContributed int64) error {
	if maxPartitionsContributed <= 0 {
		return fmt.Errorf("Maximum number of partitions that can be contributed to (i.e., L0 sensitivity) is %d, must be set to a positive value", maxPartitionsContributed)
	}
	return nil
}

// CheckMaxContributionsPerPartition returns an error if
// maxContributionsPerPartition is nonpositive.
func CheckMaxContributionsPerPartition(maxContributionsPerPartition int64) error {
	if maxContributionsPerPartition <= 0 {
		return fmt.Errorf("Maximum number of contributions per partition is %d, must be set to a positive value", maxContributionsPerPartition)
	}
	return nil
}

// CheckConfidenceLevel returns an error if the supplied confidence level is
// not strictly between 0 and 1.
func CheckConfidenceLevel(confidenceLevel float64) error {
	if confidenceLevel <= 0 || confidenceLevel >= 1 || math.IsNaN(confidenceLevel) || math.IsInf(confidenceLevel, 0) {
		return fmt.Errorf("ConfidenceLevel is %f, must be within (0, 1) and finite", confidenceLevel)
	}
	return nil
}

// CheckBoundsFloat64 returns an error if lower is larger than upper, or if
// either bound is ±∞ or NaN.
func CheckBoundsFloat64(lower, upper float64) error {
	if math.IsNaN(lower) {
		return fmt.Errorf("Lower bound cannot be NaN")
	}
	if math.IsNaN(upper) {
		return fmt.Errorf("Upper bound cannot be NaN")
	}
	if math.IsInf(lower, 0) {
		return fmt.Errorf("Lower bound cannot be infinity")
	}
	if math.IsInf(upper, 0) {
		return fmt.Errorf("Upper bound cannot be infinity")
	}
	if lower > upper {
		return fmt.Errorf("Upper bound (%f) must be larger than lower bound (%f)", upper, lower)
	}
	if lower == upper {
		log.Warningf("Lower bound is equal to upper bound: all added elements will be clamped to %f", upper)
	}
	return nil
}
