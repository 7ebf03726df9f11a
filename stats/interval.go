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

package stats

import (
	"gonum.org/v1/gonum/stat/distuv"
)

const defaultConfidence = 0.95

// CI 信賴區間
type CI struct {
	Lo float64 `yaml:"lo" json:"lo"`
	Hi float64 `yaml:"hi" json:"hi"`
}

// Intervals 為兩枚硬幣收斂後的區間估計。
type Intervals struct {
	Confidence float64 `yaml:"confidence" json:"confidence"`
	A          CI      `yaml:"a"          json:"a"`
	B          CI      `yaml:"b"          json:"b"`
}

// jeffreysCI 以 Beta(h+½, t+½) 的分位數估計二項比例的區間。
// heads / tails 是 E-step 的期望計數，可以是小數。
//
// 邊界採常見修正：heads 為 0 時下界取 0，tails 為 0 時上界取 1。
func jeffreysCI(heads, tails, confidence float64) CI {
	if heads+tails <= 0 {
		return CI{Lo: 0, Hi: 1}
	}
	alpha := 1 - confidence
	b := distuv.Beta{Alpha: heads + 0.5, Beta: tails + 0.5}

	ci := CI{Lo: b.Quantile(alpha / 2), Hi: b.Quantile(1 - alpha/2)}
	if heads <= 0 {
		ci.Lo = 0
	}
	if tails <= 0 {
		ci.Hi = 1
	}
	return ci
}
