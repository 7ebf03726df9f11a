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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Code 標示錯誤違反的是哪一條估計不變量，讓上層（CLI / HTTP）能精準分流。
type Code uint8

const (
	CodeNone               Code = iota
	CodeInvalidObservation      // 觀測值為負、或資料集為空
	CodeInvalidSetting          // 參數超出 [0,1]、prior 非法、epsilon / max_iter 非正
	CodeDegenerate              // evidence 或某一類別期望總權重為 0
	CodeNotConverged            // 達到 max_iter 仍未收斂
)

var codeMap = map[Code]string{
	CodeNone:               "",
	CodeInvalidObservation: "invalid_observation",
	CodeInvalidSetting:     "invalid_setting",
	CodeDegenerate:         "degenerate_estimation",
	CodeNotConverged:       "convergence_not_reached",
}

func (c Code) String() string {
	if s, ok := codeMap[c]; ok {
		return s
	}
	return ""
}

// 與 errors.Is 搭配的哨兵值：只比對 Code，不比對訊息內容。
var (
	ErrInvalidObservation = &E{Code: CodeInvalidObservation, Message: "invalid observation", ErrLv: Warn}
	ErrInvalidSetting     = &E{Code: CodeInvalidSetting, Message: "invalid setting", ErrLv: Warn}
	ErrDegenerate         = &E{Code: CodeDegenerate, Message: "degenerate estimation", ErrLv: Fatal}
	ErrNotConverged       = &E{Code: CodeNotConverged, Message: "convergence not reached", ErrLv: Fatal}
)

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重程度。
//
// Code / Index / Class 只有估計相關錯誤會填：
//   - Index：出問題的觀測值位置（-1 表示不適用）
//   - Class：出問題的潛在類別（"A" / "B"，空字串表示不適用）
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Code    Code
	Index   int
	Class   string
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Code != CodeNone {
		base = fmt.Sprintf("errlv=%s code=%s %s", ErrLv(e.ErrLv), e.Code, e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 讓哨兵值（ErrDegenerate 等）以 Code 比對。
// 沒有 Code 的 *E 不與任何哨兵相等。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok || t.Code == CodeNone {
		return false
	}
	return e.Code == t.Code
}

// New 依錯誤等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv, Index: -1}
}

func NewFatal(msg string) *E {
	return New(Fatal, msg)
}

func NewWarn(msg string) *E {
	return New(Warn, msg)
}

func NewLog(msg string) *E {
	return New(Log, msg)
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// InvalidObservation 建立觀測值錯誤，index 為資料集中的位置。
func InvalidObservation(index int, format string, a ...any) *E {
	e := New(Warn, fmt.Sprintf(format, a...))
	e.Code = CodeInvalidObservation
	e.Index = index
	return e
}

// InvalidSetting 建立參數設定錯誤。
func InvalidSetting(format string, a ...any) *E {
	e := New(Warn, fmt.Sprintf(format, a...))
	e.Code = CodeInvalidSetting
	return e
}

// DegenerateAt 表示第 index 筆觀測的 evidence 為 0（兩個 likelihood 皆為 0）。
func DegenerateAt(index int, iter int) *E {
	e := New(Fatal, fmt.Sprintf("zero evidence at observation %d", index))
	e.Code = CodeDegenerate
	e.Index = index
	e.Extra = fmt.Sprintf("iteration=%d", iter)
	return e
}

// DegenerateClass 表示某一類別在整個資料集上的期望總權重為 0（responsibility 崩塌）。
func DegenerateClass(class string, iter int) *E {
	e := New(Fatal, fmt.Sprintf("zero expected total weight for class %s", class))
	e.Code = CodeDegenerate
	e.Class = class
	e.Extra = fmt.Sprintf("iteration=%d", iter)
	return e
}

// NotConverged 表示跑滿 maxIter 次仍未落入容忍範圍。
func NotConverged(maxIter int, dA, dB float64) *E {
	e := New(Fatal, fmt.Sprintf("no convergence after %d iterations", maxIter))
	e.Code = CodeNotConverged
	e.Extra = fmt.Sprintf("last_delta_a=%g last_delta_b=%g", dA, dB)
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Code（保持原本嚴重度與分類）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
//
// 建議使用方式：
//   - 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E
//     （使用 New / NewWithExtra 並自行指定 ErrLv），而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	code := CodeNone
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		code = e.Code
	}
	r := New(errLv, msg)
	r.Code = code
	r.Cause = cause
	return r
}

// WrapWithExtra 與 Wrap 相同，另外附上上下文字串。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
