// Package model はドメインモデルとエラー分類を定義する。
package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hitoshi/apibase/internal/timeutil"
)

// Base は全永続化エンティティが共有する識別子とタイムスタンプを提供する。
// 各エンティティはbun.BaseModelと併せてこの構造体を埋め込む。
//
// IDは作成時に採番され、以後変更されない。CreatedAtは挿入時に1回だけ、
// UpdatedAtは更新のたびに設定される。いずれもKST（UTC+9）固定。
type Base struct {
	ID        uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	CreatedAt time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt *time.Time `bun:"updated_at" json:"updated_at"`
}

// BeforeAppendModel はbunのクエリ構築直前フック。
// INSERTではID未採番時のUUID採番とCreatedAtの刻印を、
// UPDATEではUpdatedAtの刻印を行う。
// 呼び出し側から見て構築とID採番はこのフックにより不可分になる。
func (b *Base) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = timeutil.Now()
		}
	case *bun.UpdateQuery:
		now := timeutil.Now()
		b.UpdatedAt = &now
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Base)(nil)
