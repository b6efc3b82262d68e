package model

import "github.com/uptrace/bun"

// Task はスターターテンプレートに同梱するサンプルリソース。
// 新しいドメインリソースを追加する際はこの構造を雛形にする:
// bun.BaseModelでテーブルを宣言し、Baseを埋め込み、固有カラムを足す。
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`
	Base

	Title       string `bun:"title,notnull" json:"title"`
	Description string `bun:"description" json:"description"`
	Done        bool   `bun:"done,notnull" json:"done"`
}
