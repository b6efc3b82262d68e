package model

import (
	"errors"
	"fmt"
	"net/http"
)

// 定義済みエラーコード
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeAlreadyExists  = "ALREADY_EXISTS"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// ServiceError は分類済みのサービス障害を表す。
// エラーコード・メッセージ・HTTPステータス・任意の補足データを運び、
// エラーエンベロープへそのまま変換される。
// 分類されない実行時エラー（永続化エンジンの障害やバグ）はこの型を使わず、
// 変換境界で一律にINTERNAL_SERVER_ERRORとして扱われる。
type ServiceError struct {
	Code    string
	Message string
	Status  int
	Data    map[string]any
}

// Error はerrorインターフェースを実装する。
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithData は補足データを付与した複製を返す。
func (e *ServiceError) WithData(data map[string]any) *ServiceError {
	clone := *e
	clone.Data = data
	return &clone
}

// AsServiceError はエラーチェーンからServiceErrorを取り出す。
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ── 正準ステータスを固定したコンストラクタ ──

// NewNotFoundError は404のServiceErrorを生成する。
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewBadRequestError は400のServiceErrorを生成する。
func NewBadRequestError(message string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewUnauthorizedError は401のServiceErrorを生成する。
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// NewForbiddenError は403のServiceErrorを生成する。
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// NewConflictError は409のServiceErrorを生成する。
func NewConflictError(message string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeAlreadyExists,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// NewInternalServerError は500のServiceErrorを生成する。
func NewInternalServerError(message string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInternalServer,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}
