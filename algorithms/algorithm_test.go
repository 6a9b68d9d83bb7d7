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
	"errors"
	"math"
	"testing"
)

func TestNewBaseAlgorithmStartsWithFullBudget(t *testing.T) {
	a := NewBaseAlgorithm(ln3, tenten)
	if a.Epsilon() != ln3 {
		t.Errorf("Epsilon: got %f, want %f", a.Epsilon(), ln3)
	}
	if a.Delta() != tenten {
		t.Errorf("Delta: got %e, want %e", a.Delta(), tenten)
	}
	if a.RemainingBudget() != 1.0 {
		t.Errorf("RemainingBudget: got %f, want 1.0", a.RemainingBudget())
	}
}

func TestNewBaseAlgorithmPanicsOnInvalidEpsilon(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		epsilon float64
	}{
		{"zero epsilon", 0},
		{"negative epsilon", -1},
		{"infinite epsilon", math.Inf(1)},
		{"NaN epsilon", math.NaN()},
	} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("NewBaseAlgorithm: when %s got no panic, want panic", tc.desc)
				}
			}()
			NewBaseAlgorithm(tc.epsilon, 0)
		}()
	}
}

func TestConsumeBudgetSequences(t *testing.T) {
	for _, tc := range []struct {
		desc          string
		fractions     []float64
		wantRemaining float64
	}{
		{"single full consumption",
			[]float64{1.0},
			0.0},
		{"two equal halves",
			[]float64{0.5, 0.5},
			0.0},
		{"many small fractions",
			[]float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
			0.0},
		{"partial consumption",
			[]float64{0.25, 0.5},
			0.25},
		{"zero consumption",
			[]float64{0.0, 0.0},
			1.0},
	} {
		a := NewBaseAlgorithm(ln3, 0)
		var cumulative float64
		for _, f := range tc.fractions {
			consumed, err := a.ConsumeBudget(f)
			if err != nil {
				t.Fatalf("ConsumeBudget: when %s got unexpected error %v", tc.desc, err)
			}
			cumulative += consumed
		}
		if cumulative > 1.0+BudgetFractionTolerance {
			t.Errorf("ConsumeBudget: when %s cumulative consumption is %f, want at most 1.0", tc.desc, cumulative)
		}
		if !ApproxEqual(a.RemainingBudget(), tc.wantRemaining) {
			t.Errorf("ConsumeBudget: when %s got remaining budget %f, want %f", tc.desc, a.RemainingBudget(), tc.wantRemaining)
		}
	}
}

func TestConsumeBudgetRejectsNegativeFraction(t *testing.T) {
	a := NewBaseAlgorithm(ln3, 0)
	_, err := a.ConsumeBudget(-0.1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ConsumeBudget: for negative fraction got error %v, want ErrInvalidArgument", err)
	}
	if a.RemainingBudget() != 1.0 {
		t.Errorf("ConsumeBudget: a failed call changed the remaining budget to %f, want 1.0", a.RemainingBudget())
	}
}

func TestConsumeBudgetRejectsOverconsumption(t *testing.T) {
	a := NewBaseAlgorithm(ln3, 0)
	if _, err := a.ConsumeBudget(0.75); err != nil {
		t.Fatalf("ConsumeBudget: got unexpected error %v", err)
	}
	remainingBefore := a.RemainingBudget()
	_, err := a.ConsumeBudget(0.5)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ConsumeBudget: for overconsumption got error %v, want ErrInvalidArgument", err)
	}
	if a.RemainingBudget() != remainingBefore {
		t.Errorf("ConsumeBudget: a failed call changed the remaining budget from %f to %f", remainingBefore, a.RemainingBudget())
	}
}

func TestConsumeBudgetToleratesFloatingPointDrift(t *testing.T) {
	a := NewBaseAlgorithm(ln3, 0)
	// Ten times 0.1 does not sum to exactly 1.0 in float64 arithmetic.
	// Consuming the remainder reported by the instance must still succeed.
	for i := 0; i < 10; i++ {
		if _, err := a.ConsumeBudget(0.1); err != nil {
			t.Fatalf("ConsumeBudget: got unexpected error %v on consumption %d", err, i)
		}
	}
	if !ApproxEqual(a.RemainingBudget(), 0.0) {
		t.Errorf("got remaining budget %g, want approximately 0", a.RemainingBudget())
	}
	// Anything clearly above the tolerance must still be rejected.
	if _, err := a.ConsumeBudget(0.1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ConsumeBudget: on exhausted budget got error %v, want ErrInvalidArgument", err)
	}
}

func TestConsumeBudgetReturnsActualDelta(t *testing.T) {
	a := NewBaseAlgorithm(ln3, 0)
	consumed, err := a.ConsumeBudget(0.3)
	if err != nil {
		t.Fatalf("ConsumeBudget: got unexpected error %v", err)
	}
	if !ApproxEqual(consumed, 0.3) {
		t.Errorf("ConsumeBudget: got consumed fraction %f, want 0.3", consumed)
	}
	if consumed < 0 {
		t.Errorf("ConsumeBudget: got negative consumed fraction %f", consumed)
	}
}

func TestResetBudgetRestoresFullBudget(t *testing.T) {
	a := NewBaseAlgorithm(ln3, 0)
	if _, err := a.ConsumeBudget(1.0); err != nil {
		t.Fatalf("ConsumeBudget: got unexpected error %v", err)
	}
	a.ResetBudget()
	if a.RemainingBudget() != 1.0 {
		t.Errorf("ResetBudget: got remaining budget %f, want exactly 1.0", a.RemainingBudget())
	}
}

func TestDefaultNoiseConfidenceIntervalIsUnimplemented(t *testing.T) {
	a := NewBaseAlgorithm(ln3, 0)
	_, err := a.NoiseConfidenceInterval(0.95, 1.0)
	if !errors.Is(err, ErrUnimplemented) {
		t.Errorf("NoiseConfidenceInterval: got error %v, want ErrUnimplemented", err)
	}
}

func TestPartialResultBudgetStateMachine(t *testing.T) {
	c, err := NewCountBuilder().SetEpsilon(ln3).SetMechanismBuilder(newMockMechanismBuilder()).Build()
	if err != nil {
		t.Fatalf("Build: got error %v", err)
	}
	c.AddEntry(0)
	c.AddEntry(0)

	if _, err := PartialResultWithBudget[int64](c, 0.5); err != nil {
		t.Fatalf("PartialResultWithBudget: got unexpected error %v", err)
	}
	if !ApproxEqual(c.RemainingBudget(), 0.5) {
		t.Errorf("got remaining budget %f after spending 0.5, want 0.5", c.RemainingBudget())
	}
	if _, err := PartialResultWithBudget[int64](c, 0.5); err != nil {
		t.Fatalf("PartialResultWithBudget: got unexpected error %v", err)
	}
	if !ApproxEqual(c.RemainingBudget(), 0.0) {
		t.Errorf("got remaining budget %f after spending the rest, want 0.0", c.RemainingBudget())
	}
	if _, err := PartialResultWithBudget[int64](c, 0.1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("PartialResultWithBudget: on exhausted budget got error %v, want ErrInvalidArgument", err)
	}
}

func TestIngestionIsLegalInEveryBudgetState(t *testing.T) {
	c, err := NewCountBuilder().SetEpsilon(ln3).SetMechanismBuilder(newMockMechanismBuilder()).Build()
	if err != nil {
		t.Fatalf("Build: got error %v", err)
	}
	c.AddEntry(0)
	if _, err := PartialResultWithBudget[int64](c, 1.0); err != nil {
		t.Fatalf("PartialResultWithBudget: got unexpected error %v", err)
	}
	// Adding entries on an exhausted instance must neither fail nor change
	// the budget.
	c.AddEntry(0)
	if c.RemainingBudget() != 0.0 {
		t.Errorf("AddEntry changed the remaining budget to %f, want 0.0", c.RemainingBudget())
	}
}

func TestPartialResultFailsOnExhaustedBudget(t *testing.T) {
	// With the remaining budget at 0, producing a result would calibrate
	// the mechanism with a zero budget fraction and infinite noise. The
	// call must fail instead of returning a value.
	c, err := NewCountBuilder().SetEpsilon(ln3).Build()
	if err != nil {
		t.Fatalf("Build: got error %v", err)
	}
	c.AddEntry(0)
	if _, err := PartialResultWithBudget[int64](c, 1.0); err != nil {
		t.Fatalf("PartialResultWithBudget: got unexpected error %v", err)
	}
	out, err := PartialResult[int64](c)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("PartialResult: on exhausted budget got (%v, %v), want ErrInvalidArgument", out, err)
	}

	bs, err := NewBoundedSumFloat64Builder().SetEpsilon(ln3).SetLower(0).SetUpper(1).Build()
	if err != nil {
		t.Fatalf("Build: got error %v", err)
	}
	bs.AddEntry(1)
	if _, err := PartialResultWithBudget[float64](bs, 1.0); err != nil {
		t.Fatalf("PartialResultWithBudget: got unexpected error %v", err)
	}
	out, err = PartialResult[float64](bs)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("PartialResult: on exhausted budget got (%v, %v), want ErrInvalidArgument", out, err)
	}
}

func TestPartialResultRejectsZeroBudgetFraction(t *testing.T) {
	c, err := NewCountBuilder().SetEpsilon(ln3).Build()
	if err != nil {
		t.Fatalf("Build: got error %v", err)
	}
	if _, err := PartialResultWithBudget[int64](c, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("PartialResultWithBudget: with a zero fraction got error %v, want ErrInvalidArgument", err)
	}
	if c.RemainingBudget() != 1.0 {
		t.Errorf("got remaining budget %f after a rejected call, want 1.0", c.RemainingBudget())
	}
}

func TestResetDiscardsAccumulatedStatistics(t *testing.T) {
	c, err := NewCountBuilder().SetEpsilon(ln3).SetMechanismBuilder(newMockMechanismBuilder()).Build()
	if err != nil {
		t.Fatalf("Build: got error %v", err)
	}
	AddEntries[int64](c, []int64{0, 0, 0})
	if _, err := PartialResultWithBudget[int64](c, 0.7); err != nil {
		t.Fatalf("PartialResultWithBudget: got unexpected error %v", err)
	}

	Reset[int64](c)
	if c.RemainingBudget() != 1.0 {
		t.Errorf("Reset: got remaining budget %f, want exactly 1.0", c.RemainingBudget())
	}
	c.AddEntry(0)
	out, err := PartialResult[int64](c)
	if err != nil {
		t.Fatalf("PartialResult: got unexpected error %v", err)
	}
	// With the no-op noise mechanism, the result reflects only the single
	// post-reset entry.
	if out.Value != 1 {
		t.Errorf("got result %f after reset and one entry, want 1", out.Value)
	}
}

func TestResultIsOneShot(t *testing.T) {
	c, err := NewCountBuilder().SetEpsilon(ln3).SetMechanismBuilder(newMockMechanismBuilder()).Build()
	if err != nil {
		t.Fatalf("Build: got error %v", err)
	}
	// Entries added before a Result call are discarded by its reset.
	AddEntries[int64](c, []int64{0, 0, 0, 0, 0})
	out, err := Result[int64](c, []int64{0, 0})
	if err != nil {
		t.Fatalf("Result: got unexpected error %v", err)
	}
	if out.Value != 2 {
		t.Errorf("Result: got %f, want 2", out.Value)
	}
	if c.RemainingBudget() != 0.0 {
		t.Errorf("Result: got remaining budget %f, want 0.0", c.RemainingBudget())
	}
}

func TestPartialResultAttachesConfidenceInterval(t *testing.T) {
	c, err := NewCountBuilder().SetEpsilon(ln3).SetMechanismBuilder(newMockMechanismBuilder()).Build()
	if err != nil {
		t.Fatalf("Build: got error %v", err)
	}
	c.AddEntry(0)
	out, err := PartialResultWithConfidenceLevel[int64](c, 1.0, 0.9)
	if err != nil {
		t.Fatalf("PartialResultWithConfidenceLevel: got unexpected error %v", err)
	}
	if out.NoiseConfidenceInterval == nil {
		t.Fatalf("got no noise confidence interval, want one attached")
	}
	if out.NoiseConfidenceInterval.ConfidenceLevel != 0.9 {
		t.Errorf("got confidence level %f, want 0.9", out.NoiseConfidenceInterval.ConfidenceLevel)
	}
}
