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

package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/server/httperr"
	"github.com/zintix-labs/coinlab/stats"
)

const maxBodyBytes = 1 << 20

var contentTypes = map[string]string{
	"json": "application/json",
	"yaml": "application/yaml",
	"yml":  "application/yaml",
	"text": "text/plain; charset=utf-8",
}

// readBody 讀取 request body（上限 1 MiB）。
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.NewWarn("read body failed: " + err.Error())
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errs.NewWarn("request body is required")
	}
	return raw, nil
}

// outputOpts 解析 ?format= 與 ?trace=；format 預設 json。
func outputOpts(r *http.Request) (format string, trace bool, err error) {
	q := r.URL.Query()
	format = strings.ToLower(q.Get("format"))
	if format == "" {
		format = "json"
	}
	if _, ok := contentTypes[format]; !ok {
		return "", false, errs.NewWarn("format must be json, yaml or text")
	}
	if s := q.Get("trace"); s != "" {
		trace, err = strconv.ParseBool(s)
		if err != nil {
			return "", false, errs.NewWarn("trace must be boolean")
		}
	}
	return format, trace, nil
}

// writeResult 以指定格式輸出估計結果；trace=false 時不輸出逐輪紀錄。
func writeResult(w http.ResponseWriter, res *stats.Result, format string, trace bool) {
	if !trace {
		res.Trace = nil
	}
	rr := stats.RenderByName(format, trace)
	if rr == nil {
		httperr.Errs(w, errs.NewWarn("unknown format: "+format))
		return
	}
	var buf bytes.Buffer
	if err := res.WriteWith(&buf, rr); err != nil {
		httperr.Errs(w, errs.Wrap(err, "render result failed"))
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
