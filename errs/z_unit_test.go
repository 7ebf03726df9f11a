// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errs_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zintix-labs/coinlab/errs"
)

func TestSentinelMatching(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"degenerate observation", errs.DegenerateAt(3, 7), errs.ErrDegenerate},
		{"degenerate class", errs.DegenerateClass("B", 1), errs.ErrDegenerate},
		{"not converged", errs.NotConverged(10, 1e-3, 2e-3), errs.ErrNotConverged},
		{"invalid observation", errs.InvalidObservation(0, "negative heads"), errs.ErrInvalidObservation},
		{"invalid setting", errs.InvalidSetting("prior out of range"), errs.ErrInvalidSetting},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if !errors.Is(c.err, c.want) {
				t.Fatalf("errors.Is(%v, %v) = false", c.err, c.want)
			}
			if errors.Is(c.err, errs.NewFatal("plain")) {
				t.Fatalf("code-less error must not match")
			}
		})
	}
	if errors.Is(errs.DegenerateAt(0, 1), errs.ErrNotConverged) {
		t.Fatalf("different codes must not match")
	}
}

func TestWrapKeepsLevelAndCode(t *testing.T) {
	base := errs.DegenerateClass("A", 4)
	w := errs.Wrap(base, "estimate failed")
	if w.ErrLv != errs.Fatal || w.Code != errs.CodeDegenerate {
		t.Fatalf("wrap lost level/code: %+v", w)
	}
	if !errors.Is(w, errs.ErrDegenerate) {
		t.Fatalf("wrapped error must match sentinel")
	}
	e, ok := errs.AsErr(fmt.Errorf("outer: %w", w))
	if !ok || e.Message != "estimate failed" {
		t.Fatalf("AsErr got %+v ok=%v", e, ok)
	}

	std := errs.Wrap(errors.New("io"), "read failed")
	if std.ErrLv != errs.Fatal || std.Code != errs.CodeNone {
		t.Fatalf("foreign cause must be fatal without code: %+v", std)
	}
}

func TestErrorMessage(t *testing.T) {
	e := errs.DegenerateAt(2, 5)
	msg := e.Error()
	for _, want := range []string{"errlv=fatal", "code=degenerate_estimation", "observation 2", "iteration=5"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
	if e.Index != 2 || e.Class != "" {
		t.Fatalf("unexpected index/class: %d %q", e.Index, e.Class)
	}
	if got := errs.NewWarn("x").Error(); got != "errlv=warn x" {
		t.Fatalf("plain message changed: %q", got)
	}
}
