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

// Package algorithms contains the execution and accounting core shared by
// all differentially private algorithms: the Algorithm contract, the privacy
// budget bookkeeping that allows intermediate result releases, and the
// generic builder that validates privacy parameters and assembles the noise
// mechanism.
//
// Algorithm instances are not thread safe. Entries must be added from a
// single thread only. To aggregate with multiple threads, use per-thread
// instances, serialize them, and merge the summaries in a single thread.
package algorithms

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultDelta is the delta concrete algorithms fall back to when none
	// was configured.
	DefaultDelta = 0.0
	// DefaultConfidenceLevel is the confidence level of noise confidence
	// intervals attached to results when the caller does not specify one.
	DefaultConfidenceLevel = 0.95

	fullBudget = 1.0

	// BudgetFractionTolerance absorbs floating point drift when comparing a
	// requested budget fraction against the remaining budget. A request may
	// exceed the remaining budget by at most this amount and is then clamped
	// to it; tests asserting budget arithmetic should allow the same slack.
	BudgetFractionTolerance = 1e-9
)

// Coarse error kinds of the algorithm core. Errors returned by this package
// wrap one of these sentinels and can be matched with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnimplemented   = errors.New("unimplemented")
)

func invalidArgumentf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, a...)...)
}

func unimplementedf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUnimplemented}, a...)...)
}

// ConfidenceInterval describes an interval containing the noise injected
// into a result with probability ConfidenceLevel.
type ConfidenceInterval struct {
	LowerBound, UpperBound float64
	ConfidenceLevel        float64
}

// Output is the result of a differentially private computation: the noised
// statistic estimate and, when the algorithm supports analytic noise
// intervals, a confidence interval for the injected noise.
type Output struct {
	Value                   float64
	NoiseConfidenceInterval *ConfidenceInterval
}

// Algorithm is the contract every differentially private statistic
// implements. The accounting methods in the second block are provided by
// embedding a BaseAlgorithm; the remaining methods are the per-statistic
// hooks.
//
// Callers should not invoke GenerateResult directly: budget apportioning is
// handled by Result and the PartialResult functions, which pair every
// generation with a successful ConsumeBudget call.
type Algorithm[T any] interface {
	// AddEntry incorporates one raw input into the accumulated sufficient
	// statistics. It never touches budget state and is legal in every
	// budget state.
	AddEntry(e T)

	// GenerateResult computes a noised result from the accumulated
	// statistics, spending the given (already consumed) budget fraction.
	GenerateResult(budgetFraction, confidenceLevel float64) (*Output, error)

	// ResetState clears the accumulated sufficient statistics as part of a
	// global reset.
	ResetState()

	// Serialize encodes the accumulated sufficient statistics, without
	// budget state, into a Summary for distributed merging. Algorithms that
	// cannot support merging return an empty Summary instead of failing.
	Serialize() (*Summary, error)

	// Merge folds the sufficient statistics of a Summary produced by an
	// equally configured instance of the same concrete type into this
	// instance, as if the remote entries had been added locally. The fold
	// is commutative and associative; merging an empty or incompatible
	// summary fails.
	Merge(s *Summary) error

	// MemoryUsed estimates the current heap footprint of the instance in
	// bytes, so distribution frameworks can bound their memory usage. It
	// has no side effects.
	MemoryUsed() int64

	// NoiseConfidenceInterval computes, analytically, the interval in which
	// the noise injected by a result spending budgetFraction falls with
	// probability confidenceLevel. Algorithms without analytic intervals
	// inherit the BaseAlgorithm default, which fails with ErrUnimplemented.
	NoiseConfidenceInterval(confidenceLevel, budgetFraction float64) (ConfidenceInterval, error)

	// Provided by the embedded BaseAlgorithm.
	Epsilon() float64
	Delta() float64
	RemainingBudget() float64
	ConsumeBudget(budgetFraction float64) (float64, error)
	ResetBudget()
}

// BaseAlgorithm holds the privacy parameters and budget accounting state
// shared by every Algorithm. Concrete algorithms embed it by value; epsilon
// and delta are immutable after construction.
type BaseAlgorithm struct {
	epsilon         float64
	delta           float64
	remainingBudget float64
}

// NewBaseAlgorithm returns accounting state with a full budget.
//
// Epsilon must be finite and strictly positive; violating this is a
// programmer error and panics. Production call sites construct algorithms
// through builders, which validate epsilon before ever reaching this point.
func NewBaseAlgorithm(epsilon, delta float64) BaseAlgorithm {
	if epsilon <= 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		panic(fmt.Sprintf("NewBaseAlgorithm: epsilon is %f, must be strictly positive and finite", epsilon))
	}
	return BaseAlgorithm{
		epsilon:         epsilon,
		delta:           delta,
		remainingBudget: fullBudget,
	}
}

// Epsilon returns the total privacy loss parameter covering the instance's
// full budget.
func (a *BaseAlgorithm) Epsilon() float64 {
	return a.epsilon
}

// Delta returns the secondary privacy loss parameter covering the
// instance's full budget.
func (a *BaseAlgorithm) Delta() float64 {
	return a.delta
}

// RemainingBudget returns the fraction of the privacy budget that has not
// been consumed yet.
func (a *BaseAlgorithm) RemainingBudget() float64 {
	return a.remainingBudget
}

// ConsumeBudget strictly reduces the remaining budget fraction and returns
// the fraction that was actually consumed. On any error the remaining
// budget is left unchanged.
//
// A request may exceed the remaining budget by at most
// BudgetFractionTolerance, in which case it is clamped; this absorbs
// floating point drift from repeated consumption without ever letting the
// cumulative consumption exceed the full budget.
func (a *BaseAlgorithm) ConsumeBudget(budgetFraction float64) (float64, error) {
	if budgetFraction < 0 || math.IsNaN(budgetFraction) {
		return 0, invalidArgumentf("budget fraction must be nonnegative but is %f", budgetFraction)
	}
	if budgetFraction > a.remainingBudget+BudgetFractionTolerance {
		return 0, invalidArgumentf("requested budget fraction %f exceeds remaining budget fraction of %f", budgetFraction, a.remainingBudget)
	}
	oldBudget := a.remainingBudget
	a.remainingBudget = math.Max(0, a.remainingBudget-budgetFraction)
	// The difference between the old and the new remaining budget is what
	// was actually spent; it never goes negative even in the clamped case.
	return oldBudget - a.remainingBudget, nil
}

// ResetBudget restores the full privacy budget. Use the package level Reset
// to also clear an algorithm's accumulated statistics.
func (a *BaseAlgorithm) ResetBudget() {
	a.remainingBudget = fullBudget
}

// NoiseConfidenceInterval is the default implementation inherited by
// algorithms that cannot compute their noise interval analytically.
func (a *BaseAlgorithm) NoiseConfidenceInterval(confidenceLevel, budgetFraction float64) (ConfidenceInterval, error) {
	return ConfidenceInterval{}, unimplementedf("NoiseConfidenceInterval is not supported by this algorithm")
}

// AddEntries incorporates a sequence of raw inputs into the accumulated
// sufficient statistics.
func AddEntries[T any](a Algorithm[T], entries []T) {
	for _, e := range entries {
		a.AddEntry(e)
	}
}

// Result runs the algorithm on the given input alone: it resets the
// instance, adds all entries, and produces a result consuming the entire
// privacy budget at the default confidence level. Intended for one-shot,
// non-interactive use.
func Result[T any](a Algorithm[T], entries []T) (*Output, error) {
	Reset(a)
	AddEntries(a, entries)
	return PartialResult(a)
}

// PartialResult produces a result consuming the entire remaining privacy
// budget at the default confidence level.
func PartialResult[T any](a Algorithm[T]) (*Output, error) {
	return PartialResultWithBudget(a, a.RemainingBudget())
}

// PartialResultWithBudget produces a result consuming the given fraction of
// the total privacy budget, at the default confidence level. The fraction
// is defined on [0,1] relative to the original budget, not to what remains.
//
// e.g. a.AddEntry(1); a.AddEntry(2); r, _ := PartialResultWithBudget(a, 0.1)
// inspects an intermediate result using 10% of the privacy budget, leaving
// 90% available for later calls.
func PartialResultWithBudget[T any](a Algorithm[T], budgetFraction float64) (*Output, error) {
	return PartialResultWithConfidenceLevel(a, budgetFraction, DefaultConfidenceLevel)
}

// PartialResultWithConfidenceLevel is like PartialResultWithBudget with an
// explicit confidence level for the noise confidence interval that may be
// attached to the output.
func PartialResultWithConfidenceLevel[T any](a Algorithm[T], budgetFraction, confidenceLevel float64) (*Output, error) {
	consumed, err := a.ConsumeBudget(budgetFraction)
	if err != nil {
		return nil, err
	}
	// Mechanisms are only defined for budget fractions in (0, 1]. A
	// consumed fraction of 0 would calibrate infinite noise, so an
	// exhausted instance fails instead of returning a garbage value.
	if consumed == 0 {
		return nil, invalidArgumentf("no privacy budget left to generate a result with")
	}
	return a.GenerateResult(consumed, confidenceLevel)
}

// Reset returns the algorithm to a state in which it has received no input
// and has its full privacy budget. After Reset, only entries added
// afterwards contribute to results.
func Reset[T any](a Algorithm[T]) {
	a.ResetBudget()
	a.ResetState()
}
