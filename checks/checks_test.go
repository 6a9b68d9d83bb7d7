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

package checks

import (
	"math"
	"testing"
)

func TestCheckEpsilonStrict(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		epsilon float64
		wantErr bool
	}{
		{"negative epsilon",
			-2,
			true},
		{"zero epsilon",
			0,
			true},
		{"epsilon is NaN",
			math.NaN(),
			true},
		{"epsilon is negative infinity",
			math.Inf(-1),
			true},
		{"epsilon is positive infinity",
			math.Inf(1),
			true},
		{"positive epsilon",
			math.Log(3),
			false},
	} {
		if err := CheckEpsilonStrict(tc.epsilon); (err != nil) != tc.wantErr {
			t.Errorf("CheckEpsilonStrict: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestCheckDelta(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		delta   float64
		wantErr bool
	}{
		{"negative delta",
			-0.1,
			true},
		{"delta greater than 1",
			1.1,
			true},
		{"delta is NaN",
			math.NaN(),
			true},
		{"zero delta",
			0,
			false},
		{"delta of exactly 1",
			1,
			false},
		{"delta strictly between 0 and 1",
			1e-10,
			false},
	} {
		if err := CheckDelta(tc.delta); (err != nil) != tc.wantErr {
			t.Errorf("CheckDelta: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestCheckDeltaStrict(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		delta   float64
		wantErr bool
	}{
		{"zero delta",
			0,
			true},
		{"delta of exactly 1",
			1,
			true},
		{"delta is NaN",
			math.NaN(),
			true},
		{"delta strictly between 0 and 1",
			0.3,
			false},
	} {
		if err := CheckDeltaStrict(tc.delta); (err != nil) != tc.wantErr {
			t.Errorf("CheckDeltaStrict: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestCheckNoDelta(t *testing.T) {
	if err := CheckNoDelta(0); err != nil {
		t.Errorf("CheckNoDelta: for zero delta got %v, want no error", err)
	}
	if err := CheckNoDelta(1e-10); err == nil {
		t.Errorf("CheckNoDelta: for non-zero delta got no error, want error")
	}
}

func TestCheckL0Sensitivity(t *testing.T) {
	for _, tc := range []struct {
		desc          string
		l0Sensitivity int64
		wantErr       bool
	}{
		{"negative L0 sensitivity",
			-1,
			true},
		{"zero L0 sensitivity",
			0,
			true},
		{"positive L0 sensitivity",
			5,
			false},
	} {
		if err := CheckL0Sensitivity(tc.l0Sensitivity); (err != nil) != tc.wantErr {
			t.Errorf("CheckL0Sensitivity: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestCheckLInfSensitivity(t *testing.T) {
	for _, tc := range []struct {
		desc            string
		lInfSensitivity float64
		wantErr         bool
	}{
		{"negative LInf sensitivity",
			-1,
			true},
		{"zero LInf sensitivity",
			0,
			true},
		{"LInf sensitivity is infinity",
			math.Inf(1),
			true},
		{"LInf sensitivity is NaN",
			math.NaN(),
			true},
		{"positive LInf sensitivity",
			2.5,
			false},
	} {
		if err := CheckLInfSensitivity(tc.lInfSensitivity); (err != nil) != tc.wantErr {
			t.Errorf("CheckLInfSensitivity: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestCheckConfidenceLevel(t *testing.T) {
	for _, tc := range []struct {
		desc            string
		confidenceLevel float64
		wantErr         bool
	}{
		{"zero confidence level",
			0,
			true},
		{"confidence level of exactly 1",
			1,
			true},
		{"negative confidence level",
			-0.5,
			true},
		{"confidence level is NaN",
			math.NaN(),
			true},
		{"confidence level strictly between 0 and 1",
			0.95,
			false},
	} {
		if err := CheckConfidenceLevel(tc.confidenceLevel); (err != nil) != tc.wantErr {
			t.Errorf("CheckConfidenceLevel: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestCheckBoundsFloat64(t *testing.T) {
	for _, tc := range []struct {
		desc         string
		lower, upper float64
		wantErr      bool
	}{
		{"lower larger than upper",
			1, -1,
			true},
		{"lower is NaN",
			math.NaN(), 1,
			true},
		{"upper is infinity",
			0, math.Inf(1),
			true},
		{"equal bounds",
			2, 2,
			false},
		{"well formed bounds",
			-1, 1,
			false},
	} {
		if err := CheckBoundsFloat64(tc.lower, tc.upper); (err != nil) != tc.wantErr {
			t.Errorf("CheckBoundsFloat64: when %s for err got %v, want %t", tc.desc, err, tc.wantErr)
		}
	}
}
