// Package logger は構造化ログの初期化を提供する。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hitoshi/apibase/internal/middleware"
)

// requestIDHandler はslog.Handlerをラップし、コンテキストに相関IDが
// 含まれる場合に全レコードへrequest_id属性を付与する。
// ハンドラー側で明示的にIDを引き回す必要をなくすための仕組み。
type requestIDHandler struct {
	slog.Handler
}

// Handle はコンテキストからrequest_idを読み取ってレコードに追加する。
func (h *requestIDHandler) Handle(ctx context.Context, rec slog.Record) error {
	if rid := middleware.RequestIDFromContext(ctx); rid != "" {
		rec.AddAttrs(slog.String("request_id", rid))
	}
	return h.Handler.Handle(ctx, rec)
}

// WithAttrs は属性を付与した新しいハンドラーを返す。
func (h *requestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestIDHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup はグループを付与した新しいハンドラーを返す。
func (h *requestIDHandler) WithGroup(name string) slog.Handler {
	return &requestIDHandler{Handler: h.Handler.WithGroup(name)}
}

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// 出力される全レコードにはコンテキスト経由でrequest_idが自動付与される。
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(&requestIDHandler{Handler: handler})
}

// SetupText は人間が読みやすいテキスト形式のslog.Loggerを生成して返す。
// ローカル開発用。
func SetupText(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(&requestIDHandler{Handler: handler})
}

// SetupDefault は環境に応じたロガーをグローバルロガーとして設定する。
// local環境ではテキスト形式、それ以外ではJSON形式で出力する。
// writerがnilの場合はos.Stdoutに出力する。
func SetupDefault(w io.Writer, level slog.Level, isLocal bool) {
	if w == nil {
		w = os.Stdout
	}

	var l *slog.Logger
	if isLocal {
		l = SetupText(w, level)
	} else {
		l = Setup(w, level)
	}
	slog.SetDefault(l)
}
