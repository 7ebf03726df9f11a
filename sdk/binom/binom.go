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

// Package binom 提供估計器使用的二項分佈機率質量（likelihood）。
//
// 本包不做任何輸入檢查：呼叫端必須保證 0 <= successes <= total 且 p 落在 [0,1]。
package binom

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// ExactLimit 以內的 total 使用精確整數組合數；超過則改走 log-gamma，避免組合數溢位。
// C(60,30) ≈ 1.18e17，仍在 int64 內。
const ExactLimit = 60

// Likelihood 回傳 C(total, successes) · p^successes · (1-p)^(total-successes)。
func Likelihood(total, successes int, p float64) float64 {
	if total <= ExactLimit {
		c := float64(combin.Binomial(total, successes))
		return c * math.Pow(p, float64(successes)) * math.Pow(1-p, float64(total-successes))
	}
	return math.Exp(LogLikelihood(total, successes, p))
}

// LogLikelihood 回傳 Likelihood 的自然對數；機率為 0 時回傳 -Inf。
func LogLikelihood(total, successes int, p float64) float64 {
	logC := combin.LogGeneralizedBinomial(float64(total), float64(successes))
	return logC + xlogy(successes, p) + xlogy(total-successes, 1-p)
}

// xlogy 定義 0·log(0) = 0，與 p^0 = 1 一致。
func xlogy(n int, y float64) float64 {
	if n == 0 {
		return 0
	}
	return float64(n) * math.Log(y)
}
