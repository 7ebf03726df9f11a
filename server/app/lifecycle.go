// Package app 定義應用程式根目錄用以管理長期運行元件的最小生命週期抽象。
package app

import (
	"context"
	"net/http"
)

// errServerClosed 是 net/http 正常關閉時 Run 的回傳值，不視為錯誤。
var errServerClosed = http.ErrServerClosed

// Component 抽象任何「可啟動 / 可關閉」的長生命週期元件。
//   - Run() 應該是阻塞呼叫，直到元件停止為止。
//   - Shutdown(ctx) 要求優雅關閉；實作方應尊重 ctx deadline。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}
