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

package spec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zintix-labs/coinlab/errs"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEpsilon = 1e-9
	DefaultMaxIter = 10000
	DefaultPrior   = 0.5
)

// Params 為兩枚硬幣目前的正面機率估計（潛在類別 A、B）。
// 每輪迭代整組替換，不做就地修改。
type Params struct {
	A float64 `yaml:"p_a" json:"p_a"`
	B float64 `yaml:"p_b" json:"p_b"`
}

// String 輸出 (a, b)，數字採最短可還原表示。
func (p Params) String() string {
	return "(" + strconv.FormatFloat(p.A, 'g', -1, 64) + ", " + strconv.FormatFloat(p.B, 'g', -1, 64) + ")"
}

// Swap 交換 A、B 標籤。
func (p Params) Swap() Params {
	return Params{A: p.B, B: p.A}
}

// Valid 檢查兩個參數皆落在 [0,1]。
func (p Params) Valid() error {
	if !inUnit(p.A) {
		return errs.InvalidSetting("p_a must be in [0, 1], got %v", p.A)
	}
	if !inUnit(p.B) {
		return errs.InvalidSetting("p_b must be in [0, 1], got %v", p.B)
	}
	return nil
}

// EstimateSetting 包含一次 EM 估計所需的全部輸入。
type EstimateSetting struct {
	Name      string  `yaml:"name"        json:"name"`
	InitialPA float64 `yaml:"initial_p_a" json:"initial_p_a"`
	InitialPB float64 `yaml:"initial_p_b" json:"initial_p_b"`
	Prior     float64 `yaml:"prior"       json:"prior"`
	Dataset   Dataset `yaml:"dataset"     json:"dataset"`
	Epsilon   float64 `yaml:"epsilon"     json:"epsilon,omitempty"`
	MaxIter   int     `yaml:"max_iter"    json:"max_iter,omitempty"`
}

// Default 回傳經典的兩枚硬幣資料：8 組、每組 10 次，初始 (0.6, 0.4)，prior 0.5。
func Default() *EstimateSetting {
	es := &EstimateSetting{
		Name:      "coins",
		InitialPA: 0.6,
		InitialPB: 0.4,
		Prior:     DefaultPrior,
		Dataset: MustDataset(
			[2]int{9, 1},
			[2]int{6, 4},
			[2]int{3, 7},
			[2]int{7, 3},
			[2]int{3, 7},
			[2]int{5, 5},
			[2]int{7, 3},
			[2]int{5, 5},
		),
	}
	_ = es.Init()
	return es
}

// Initial 回傳初始參數組。
func (es *EstimateSetting) Initial() Params {
	return Params{A: es.InitialPA, B: es.InitialPB}
}

// Clone 深拷貝（含 Dataset）。
func (es *EstimateSetting) Clone() *EstimateSetting {
	cp := *es
	cp.Dataset = es.Dataset.Clone()
	return &cp
}

// Init 補上預設值並執行檢查。重複呼叫結果相同。
func (es *EstimateSetting) Init() error {
	es.Name = strings.ToLower(strings.TrimSpace(es.Name))
	if es.Epsilon == 0 {
		es.Epsilon = DefaultEpsilon
	}
	if es.MaxIter == 0 {
		es.MaxIter = DefaultMaxIter
	}
	return es.valid()
}

// valid 執行最基本的設定檔檢查。
func (es *EstimateSetting) valid() error {
	if err := es.Initial().Valid(); err != nil {
		return err
	}
	// prior = 0 會讓每一筆 evidence 都為 0
	if math.IsNaN(es.Prior) || es.Prior <= 0 || es.Prior > 1 {
		return errs.InvalidSetting("prior must be in (0, 1], got %v", es.Prior)
	}
	if math.IsNaN(es.Epsilon) || es.Epsilon <= 0 {
		return errs.InvalidSetting("epsilon must be > 0, got %v", es.Epsilon)
	}
	if es.MaxIter < 1 {
		return errs.InvalidSetting("max_iter must be > 0, got %d", es.MaxIter)
	}
	return es.Dataset.Valid()
}

func inUnit(x float64) bool {
	return !math.IsNaN(x) && x >= 0 && x <= 1
}

// GetSettingByYAML
// 會讀取 YAML 設定、補預設值並執行基本檢查後回傳。
func GetSettingByYAML(data []byte) (*EstimateSetting, error) {
	es := &EstimateSetting{}
	if err := yaml.Unmarshal(data, es); err != nil {
		return nil, decodeErr("failed to unmarshall yaml", err)
	}
	if err := es.Init(); err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("setting %q initialized err", es.Name))
	}
	return es, nil
}

// GetSettingByJSON
// 會讀取 Json 設定、補預設值並執行基本檢查後回傳
func GetSettingByJSON(data []byte) (*EstimateSetting, error) {
	es := &EstimateSetting{}
	if err := json.Unmarshal(data, es); err != nil {
		return nil, decodeErr("can not unmarshall json byte", err)
	}
	if err := es.Init(); err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("setting %q initialized err", es.Name))
	}
	return es, nil
}

// 格式錯誤屬於呼叫端輸入問題，歸類為 invalid_setting（Warn）
func decodeErr(msg string, cause error) error {
	e := errs.InvalidSetting("%s", msg)
	e.Cause = cause
	return e
}
