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

package catalog_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/coinlab/catalog"
	"github.com/zintix-labs/coinlab/errs"
)

const yamlCfg = "name: Alpha\ninitial_p_a: 0.6\ninitial_p_b: 0.4\nprior: 0.5\ndataset: [[9, 1], [2, 8]]\n"
const jsonCfg = `{"name":"beta","initial_p_a":0.7,"initial_p_b":0.2,"prior":0.5,"dataset":[[1,1]]}`

func newFS() fstest.MapFS {
	return fstest.MapFS{
		"alpha.yaml": {Data: []byte(yamlCfg)},
		"beta.json":  {Data: []byte(jsonCfg)},
		"README.md":  {Data: []byte("ignored")},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	c, err := catalog.New(newFS())
	if err != nil {
		t.Fatal(err)
	}
	err = c.Register(
		catalog.Entry{Name: " Alpha ", ConfigName: "alpha.yaml"},
		catalog.Entry{Name: "beta", ConfigName: "beta.json"},
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Names(); len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Fatalf("names %v", got)
	}
	es, err := c.SettingByName("ALPHA")
	if err != nil {
		t.Fatal(err)
	}
	if len(es.Dataset) != 2 || es.InitialPA != 0.6 {
		t.Fatalf("alpha %+v", es)
	}
	es, err = c.SettingByName("beta")
	if err != nil || es.InitialPB != 0.2 {
		t.Fatalf("beta %+v %v", es, err)
	}
	if _, err := c.SettingByName("gamma"); err == nil {
		t.Fatalf("expected missing error")
	}
}

func TestRegisterRejects(t *testing.T) {
	c, err := catalog.New(newFS())
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name string
		ents []catalog.Entry
	}{
		{"empty name", []catalog.Entry{{Name: "", ConfigName: "alpha.yaml"}}},
		{"missing file", []catalog.Entry{{Name: "x", ConfigName: "nope.yaml"}}},
		{"path in name", []catalog.Entry{{Name: "x", ConfigName: "dir/alpha.yaml"}}},
		{"bad ext", []catalog.Entry{{Name: "x", ConfigName: "README.md"}}},
		{"dup in batch", []catalog.Entry{{Name: "a", ConfigName: "alpha.yaml"}, {Name: "a", ConfigName: "beta.json"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := c.Register(tc.ents...); err == nil {
				t.Fatalf("expected error")
			}
			if len(c.Names()) != 0 {
				t.Fatalf("failed batch must not register anything")
			}
		})
	}

	if err := c.Register(catalog.Entry{Name: "a", ConfigName: "alpha.yaml"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Register(catalog.Entry{Name: "a", ConfigName: "beta.json"}); !errors.Is(err, catalog.ErrDupName) {
		t.Fatalf("want dup name, got %v", err)
	}
	c.Freeze()
	err = c.Register(catalog.Entry{Name: "b", ConfigName: "beta.json"})
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Warn {
		t.Fatalf("frozen register: %v", err)
	}
}

func TestMultiFSRejectsDuplicatesAndSubdirs(t *testing.T) {
	if _, err := catalog.New(newFS(), fstest.MapFS{"alpha.yaml": {Data: []byte(yamlCfg)}}); err == nil {
		t.Fatalf("duplicate file across FS must fail")
	}
	if _, err := catalog.New(fstest.MapFS{"sub/alpha.yaml": {Data: []byte(yamlCfg)}}); err == nil {
		t.Fatalf("subdirectory must fail")
	}
	if _, err := catalog.New(); err == nil {
		t.Fatalf("no fs must fail")
	}
}
