// Package response は全HTTPレスポンス共通のエンベロープを提供する。
//
// 成功・失敗を問わず、レスポンスボディは必ず次の2形式のいずれかになる:
//
//	成功: {"result":"SUCCESS","data":...,"message":...}
//	失敗: {"result":"FAIL","errorCode":...,"message":...,"data":...,
//	      "timestamp":...,"request_id":...,"path":...}
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/apibase/internal/middleware"
	"github.com/hitoshi/apibase/internal/model"
	"github.com/hitoshi/apibase/internal/timeutil"
)

// Result列挙値。
const (
	ResultSuccess = "SUCCESS"
	ResultFail    = "FAIL"
)

// SuccessBody は成功レスポンスの統一フォーマット。
type SuccessBody struct {
	Result  string  `json:"result"`
	Data    any     `json:"data"`
	Message *string `json:"message"`
}

// ErrorBody はエラーレスポンスの統一フォーマット。
// timestampはKST（UTC+9）のISO-8601、request_idは相関ID（未付与ならnull）。
type ErrorBody struct {
	Result    string         `json:"result"`
	ErrorCode string         `json:"errorCode"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
	RequestID *string        `json:"request_id"`
	Path      string         `json:"path"`
}

// WriteSuccess は成功エンベロープを書き込む。
// messageが空文字列の場合はnullとして出力する。
func WriteSuccess(w http.ResponseWriter, status int, data any, message string) {
	var msg *string
	if message != "" {
		msg = &message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(SuccessBody{
		Result:  ResultSuccess,
		Data:    data,
		Message: msg,
	})
}

// WriteError は分類済みのServiceErrorをエラーエンベロープとして書き込む。
// timestamp・request_id・pathはここで刻印する。
func WriteError(w http.ResponseWriter, r *http.Request, se *model.ServiceError) {
	var rid *string
	if v := middleware.RequestIDFromContext(r.Context()); v != "" {
		rid = &v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(se.Status)
	json.NewEncoder(w).Encode(ErrorBody{
		Result:    ResultFail,
		ErrorCode: se.Code,
		Message:   se.Message,
		Data:      se.Data,
		Timestamp: timeutil.Now(),
		RequestID: rid,
		Path:      r.URL.Path,
	})
}

// WriteServiceError はエラーを分類し、対応するエンベロープを書き込む変換境界。
// ServiceErrorは宣言されたコード・ステータスのまま返し、
// それ以外（未分類の実行時エラー）は詳細をログにのみ記録して
// 固定のINTERNAL_SERVER_ERROR 500を返す。内部詳細はボディに漏らさない。
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := model.AsServiceError(err); ok {
		slog.ErrorContext(r.Context(), "service error",
			slog.String("error_code", se.Code),
			slog.String("message", se.Message),
			slog.Int("status", se.Status),
		)
		WriteError(w, r, se)
		return
	}

	slog.ErrorContext(r.Context(), "unhandled error",
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path),
	)
	WriteInternalServerError(w, r)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 原因の詳細は呼び出し側でログに記録し、ユーザーには一般的なメッセージのみ返す。
func WriteInternalServerError(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, model.NewInternalServerError("サーバー内部エラーが発生しました。"))
}

// WriteTooManyRequests はレート制限超過時の429エンベロープを書き込む。
// Retry-Afterヘッダーの設定は呼び出し側（レート制限ミドルウェア）が行う。
func WriteTooManyRequests(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, &model.ServiceError{
		Code:    "TOO_MANY_REQUESTS",
		Message: "リクエストが多すぎます。しばらくしてから再試行してください。",
		Status:  http.StatusTooManyRequests,
	})
}

// WriteNotFound はルーティングに一致しないパスへの404エンベロープを書き込む。
func WriteNotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, model.NewNotFoundError("要求されたリソースが見つかりません。"))
}

// WriteMethodNotAllowed はサポート外メソッドへの405エンベロープを書き込む。
func WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, &model.ServiceError{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "許可されていないHTTPメソッドです。",
		Status:  http.StatusMethodNotAllowed,
	})
}
