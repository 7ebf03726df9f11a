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

	"github.com/zintix-labs/coinlab/errs"
	"gopkg.in/yaml.v3"
)

// Observation 是一組來源未知（硬幣 A 或 B）的擲幣結果。
//
// 設定檔中可寫成 [heads, tails]，也可寫成 {heads: 9, tails: 1}。
type Observation struct {
	Heads int `yaml:"heads" json:"heads"`
	Tails int `yaml:"tails" json:"tails"`
}

// Total 回傳本組擲幣總次數。
func (o Observation) Total() int {
	return o.Heads + o.Tails
}

func (o Observation) String() string {
	return fmt.Sprintf("[%d, %d]", o.Heads, o.Tails)
}

// 避免 UnmarshalYAML / UnmarshalJSON 遞迴呼叫自己
type observationFields struct {
	Heads int `yaml:"heads" json:"heads"`
	Tails int `yaml:"tails" json:"tails"`
}

func (o *Observation) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var pair []int
		if err := n.Decode(&pair); err != nil {
			return err
		}
		return o.fromPair(pair)
	case yaml.MappingNode:
		var f observationFields
		if err := n.Decode(&f); err != nil {
			return err
		}
		*o = Observation(f)
		return nil
	default:
		return errs.NewWarn(fmt.Sprintf("observation must be [heads, tails] (line %d)", n.Line))
	}
}

func (o Observation) MarshalYAML() (any, error) {
	return []int{o.Heads, o.Tails}, nil
}

func (o *Observation) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err == nil {
		return o.fromPair(pair)
	}
	var f observationFields
	if err := json.Unmarshal(b, &f); err != nil {
		return errs.Wrap(err, "observation must be [heads, tails]")
	}
	*o = Observation(f)
	return nil
}

func (o Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{o.Heads, o.Tails})
}

func (o *Observation) fromPair(pair []int) error {
	if len(pair) != 2 {
		return errs.NewWarn(fmt.Sprintf("observation must have exactly 2 counts, got %d", len(pair)))
	}
	o.Heads, o.Tails = pair[0], pair[1]
	return nil
}

// Dataset 是依序排列的觀測值；順序不影響數學結果，但決定輸出順序。
type Dataset []Observation

// NewDataset 由 [heads, tails] 組建資料集並立即檢查。
func NewDataset(pairs ...[2]int) (Dataset, error) {
	d := make(Dataset, len(pairs))
	for i, p := range pairs {
		d[i] = Observation{Heads: p[0], Tails: p[1]}
	}
	if err := d.Valid(); err != nil {
		return nil, err
	}
	return d, nil
}

// MustDataset 同 NewDataset，錯誤時 panic；只給常數資料使用。
func MustDataset(pairs ...[2]int) Dataset {
	d, err := NewDataset(pairs...)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid 檢查資料集非空且每筆計數皆非負。
func (d Dataset) Valid() error {
	if len(d) == 0 {
		return errs.InvalidObservation(-1, "empty dataset")
	}
	for i, o := range d {
		if o.Heads < 0 || o.Tails < 0 {
			return errs.InvalidObservation(i, "observation %d has negative count %s", i, o)
		}
		if o.Heads > math.MaxInt-o.Tails {
			return errs.InvalidObservation(i, "observation %d total overflows int %s", i, o)
		}
	}
	return nil
}

// Clone 回傳獨立副本，估計器不共用呼叫端的底層陣列。
func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	copy(out, d)
	return out
}
