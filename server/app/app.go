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

// Package app 提供應用程式生命週期管理（App），負責統一啟動與關閉多個 Component。
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 5 * time.Second

// App 啟動所有註冊的 Component，並在收到 OS 信號、ctx 取消或任一 Component 結束時統一優雅關閉。
type App struct {
	comps   []Component
	timeout time.Duration
	log     *slog.Logger
}

// New 建立一個新的 App 實例。
func New() *App {
	return &App{timeout: defaultShutdownTimeout, log: slog.New(slog.DiscardHandler)}
}

// NewWith 是 New 的語法糖，允許在建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 將一個 Component 註冊到 App 中。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// WithLogger 設定關閉錯誤的輸出位置。
func (a *App) WithLogger(log *slog.Logger) *App {
	if log != nil {
		a.log = log
	}
	return a
}

// WithShutdownTimeout 設定優雅關閉的期限；<= 0 時沿用預設 5 秒。
func (a *App) WithShutdownTimeout(td time.Duration) *App {
	if td > 0 {
		a.timeout = td
	}
	return a
}

// Run 阻塞直到收到 SIGINT/SIGTERM 或任一 Component 的 Run 返回。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 與 Run 相同，但以 ctx 取代 OS 信號作為停止條件。
//   - ctx 結束：優雅關閉並回傳 nil
//   - Component 返回：優雅關閉並回傳該錯誤（http.ErrServerClosed 以外）
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	select {
	case <-ctx.Done():
		a.gracefulShutdown()
		return nil
	case err := <-errCh:
		a.gracefulShutdown()
		if errors.Is(err, errServerClosed) {
			return nil
		}
		return err
	}
}

// gracefulShutdown 在期限內依序呼叫所有 Component.Shutdown。
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Warn("shutdown err", slog.Any("err", err))
		}
	}
}
