package repository

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// UnitOfWork はデータベースセッションのライフサイクルを管理する。
// 読み取り専用の実行と、成功時コミット・失敗時ロールバックの
// トランザクション実行の2種類を提供する。
type UnitOfWork struct {
	db *bun.DB
}

// NewUnitOfWork は新しいUnitOfWorkを生成する。
func NewUnitOfWork(db *bun.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// DB は基盤となるbun.DBを返す。マイグレーションやヘルスチェック用。
func (u *UnitOfWork) DB() *bun.DB {
	return u.db
}

// ReadOnly はトランザクションを張らずにfnを実行する。
// コミットは決して行われないため、fn内の書き込みは永続化を保証されない。
func (u *UnitOfWork) ReadOnly(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	return fn(ctx, u.db)
}

// Transactional はトランザクション内でfnを実行する。
// fnがnilを返せばコミット、エラーまたはpanicの場合はロールバックする。
// panicはロールバック後に再送出される。
func (u *UnitOfWork) Transactional(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return u.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}
