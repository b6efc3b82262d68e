package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID はリクエストIDの伝搬に使用するHTTPヘッダー名。
const HeaderRequestID = "X-Request-ID"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// requestIDContextKey はリクエストコンテキストに相関IDを格納するためのキー。
var requestIDContextKey = contextKey("request_id")

// NewRequestIDMiddleware は全リクエストに相関IDを付与するミドルウェアを返す。
// インバウンドのX-Request-IDヘッダーがあればそれを再利用し、なければUUIDを新規採番する。
// IDはリクエストコンテキストに格納し（プロセス全体の状態には置かない）、
// 成功・失敗を問わずX-Request-IDレスポンスヘッダーで返却する。
// ルーティングより前段に配置すること。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}

			w.Header().Set(HeaderRequestID, rid)

			ctx := context.WithValue(r.Context(), requestIDContextKey, rid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext はリクエストコンテキストから相関IDを取得する。
// リクエストIDミドルウェアを通過していない場合は空文字列を返す。
func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDContextKey).(string)
	return rid
}

// ContextWithRequestID はコンテキストに相関IDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, rid)
}
