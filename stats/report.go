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
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// ============================================================
// ** 公開方法 **
// ============================================================

// WriteWith 以指定渲染器輸出結果。
func (r *Result) WriteWith(w io.Writer, rr ResultRender) error {
	return rr.Write(w, r)
}

// Table 回傳估計摘要與逐組分派的文字表格。
func (r *Result) Table() string {
	sk, sm := r.fmtBasic()
	out := fmtTable(titleOf(r.Name), sk, sm)
	ak, am := r.fmtAssignments()
	out += fmtTable("Coin Assignment", ak, am)
	return out
}

// TraceTable 回傳逐輪的參數與對數似然。沒有 trace 時回傳空字串。
func (r *Result) TraceTable() string {
	if len(r.Trace) == 0 {
		return ""
	}
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(r.Trace))
	msg := make(map[string]string, len(r.Trace))
	for _, tp := range r.Trace {
		k := p.Sprintf("iter %d", tp.Iter)
		keys = append(keys, k)
		msg[k] = p.Sprintf("%s  ll=%.6f", tp.Params.String(), tp.LogLik)
	}
	return fmtTable("EM Trace", keys, msg)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func titleOf(name string) string {
	if name == "" {
		return "EM Estimate"
	}
	return "EM Estimate: " + name
}

func (r *Result) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Initial":        r.Initial.String(),
		"Final":          r.Final.String(),
		"Iterations":     p.Sprintf("%d", r.Iterations),
		"Log-Likelihood": p.Sprintf("%.6f", r.LogLik),
		"Coin A CI":      fmtCI(r.Intervals.Confidence, r.Intervals.A),
		"Coin B CI":      fmtCI(r.Intervals.Confidence, r.Intervals.B),
	}
	keys := []string{"Initial", "Final", "Iterations", "Log-Likelihood", "Coin A CI", "Coin B CI"}
	return keys, basic
}

func (r *Result) fmtAssignments() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(r.Assignments))
	msg := make(map[string]string, len(r.Assignments))
	for _, a := range r.Assignments {
		k := p.Sprintf("#%d %s", a.Index+1, a.Observation)
		keys = append(keys, k)
		msg[k] = p.Sprintf("%s  (A %.3f / B %.3f)", a.Coin, a.Resp.A, a.Resp.B)
	}
	return keys, msg
}

func fmtCI(confidence float64, ci CI) string {
	return fmt.Sprintf("%.0f%% [%.4f, %.4f]", confidence*100, ci.Lo, ci.Hi)
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	// 標題比內容寬時，把值欄撐開
	if w := runewidth.StringWidth(title); w > maxKeyLen+maxValLen+1 {
		maxValLen = w - maxKeyLen - 1
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
