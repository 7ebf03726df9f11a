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

package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/server/logger"
)

func TestParseMode(t *testing.T) {
	cases := map[string]logger.LogMode{
		"dev":     logger.ModeDev,
		"PROD":    logger.ModeProd,
		" json ":  logger.ModeProd,
		"silence": logger.ModeSilence,
		"ModeDev": logger.ModeDev,
		"":        logger.ModeSilence,
	}
	for in, want := range cases {
		got, err := logger.ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := logger.ParseMode("loud"); !errors.Is(err, errs.ErrInvalidSetting) {
		t.Fatalf("want invalid setting, got %v", err)
	}
}

func TestNewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLoggerTo(&buf, logger.ModeProd)
	log.Debug("hidden")
	log.Info("em.converged", slog.Int("iterations", 22))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record leaked in prod mode: %s", out)
	}
	if !strings.Contains(out, `"msg":"em.converged"`) || !strings.Contains(out, `"iterations":22`) {
		t.Fatalf("unexpected json output: %s", out)
	}

	buf.Reset()
	logger.NewLoggerTo(&buf, logger.ModeSilence).Error("nothing")
	if buf.Len() != 0 {
		t.Fatalf("silence mode wrote %q", buf.String())
	}
}

type countHandler struct {
	n *int
}

func (h countHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h countHandler) Handle(context.Context, slog.Record) error { *h.n++; return nil }
func (h countHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h countHandler) WithGroup(string) slog.Handler             { return h }

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	n := 0
	ah := logger.NewAsyncHandler(countHandler{n: &n}, 64)
	log := slog.New(ah)
	for i := 0; i < 10; i++ {
		log.Info("tick")
	}
	ah.Close()
	if n+int(ah.Dropped()) != 10 {
		t.Fatalf("handled %d dropped %d", n, ah.Dropped())
	}
	log.Info("after close")
	ah.Close()
	if ah.Dropped() == 0 {
		t.Fatal("record after close should be dropped")
	}
}
