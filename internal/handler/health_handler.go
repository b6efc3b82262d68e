// Package handler はHTTPエンドポイントのハンドラーとルーティングを提供する。
package handler

import (
	"net/http"

	"github.com/hitoshi/apibase/internal/response"
)

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct{}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check はサービスの稼働状態を返す。
// GET /api/v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response.WriteSuccess(w, http.StatusOK,
		map[string]string{"status": "healthy"},
		"サービスは正常に稼働しています。",
	)
}
