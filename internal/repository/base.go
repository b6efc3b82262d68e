// Package repository は型パラメータ化された汎用データアクセス層を提供する。
// モデルごとにCRUDを書き直す代わりに、Repo[T]を目的の型で実体化して使う。
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Repo はモデル型Tに対する汎用リポジトリ。
// bun.IDBを受け取るため、*bun.DB（自動コミット）とbun.Tx（トランザクション）の
// どちらの上でも同じコードで動作する。
type Repo[T any] struct {
	db bun.IDB
}

// NewRepo は型Tのリポジトリを生成する。
func NewRepo[T any](db bun.IDB) *Repo[T] {
	return &Repo[T]{db: db}
}

// table はモデルTのスキーマメタデータを返す。
func (r *Repo[T]) table() *schema.Table {
	return r.db.Dialect().Tables().Get(reflect.TypeFor[T]())
}

// validateColumn はカラムがモデルTに存在することを確認する。
// 存在しない場合はErrUnknownColumnを返す。
func (r *Repo[T]) validateColumn(column string) error {
	if _, ok := r.table().FieldMap[column]; !ok {
		return fmt.Errorf("%w: %q on table %q", ErrUnknownColumn, column, r.table().Name)
	}
	return nil
}

// GetByID は指定IDのレコードを取得する。見つからない場合はnilを返す。
func (r *Repo[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	m := new(T)
	err := r.db.NewSelect().Model(m).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s by id: %w", r.table().Name, err)
	}
	return m, nil
}

// GetAll はskip件読み飛ばし、最大limit件のレコードを取得する。
// limitが0以下の場合は上限なし。
func (r *Repo[T]) GetAll(ctx context.Context, skip, limit int) ([]T, error) {
	var ms []T
	q := r.db.NewSelect().Model(&ms)
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table().Name, err)
	}
	return ms, nil
}

// Create はレコードを挿入する。IDと作成時刻はモデルフックが自動付与する。
func (r *Repo[T]) Create(ctx context.Context, m *T) error {
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.table().Name, err)
	}
	return nil
}

// Update は主キーでレコードを更新する。更新時刻はモデルフックが自動付与する。
func (r *Repo[T]) Update(ctx context.Context, m *T) error {
	if _, err := r.db.NewUpdate().Model(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to update %s: %w", r.table().Name, err)
	}
	return nil
}

// Delete は主キーでレコードを削除する。
func (r *Repo[T]) Delete(ctx context.Context, m *T) error {
	if _, err := r.db.NewDelete().Model(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.table().Name, err)
	}
	return nil
}

// BulkInsert はカラム名→値のマップ列を一括挿入する。
// モデルフックを経由しないため、IDなど必須カラムは呼び出し側が与えること。
// 未知のカラムが含まれる場合はErrUnknownColumnを返す。
func (r *Repo[T]) BulkInsert(ctx context.Context, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		for column := range row {
			if err := r.validateColumn(column); err != nil {
				return err
			}
		}
	}
	// bunのマップ列モデルはスライス値を直接受け取る（ポインタ渡しは不可）
	if _, err := r.db.NewInsert().Model(rows).Table(r.table().Name).Exec(ctx); err != nil {
		return fmt.Errorf("failed to bulk insert %s: %w", r.table().Name, err)
	}
	return nil
}

// FilterBy は等値条件に一致するレコードをすべて取得する。
// 未知のカラムが含まれる場合はErrUnknownColumnを返す。
func (r *Repo[T]) FilterBy(ctx context.Context, criteria Criteria) ([]T, error) {
	var ms []T
	q := r.db.NewSelect().Model(&ms)
	q, err := r.applyCriteria(q, criteria)
	if err != nil {
		return nil, err
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to filter %s: %w", r.table().Name, err)
	}
	return ms, nil
}

// FilterByOne は等値条件に一致する最初のレコードを取得する。
// 見つからない場合はnilを返す。
func (r *Repo[T]) FilterByOne(ctx context.Context, criteria Criteria) (*T, error) {
	m := new(T)
	q := r.db.NewSelect().Model(m).Limit(1)
	q, err := r.applyCriteria(q, criteria)
	if err != nil {
		return nil, err
	}
	err = q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to filter %s: %w", r.table().Name, err)
	}
	return m, nil
}

// Count は等値条件に一致するレコード数を返す。条件なし（nil）は全件数。
func (r *Repo[T]) Count(ctx context.Context, criteria Criteria) (int, error) {
	q := r.db.NewSelect().Model((*T)(nil))
	q, err := r.applyCriteria(q, criteria)
	if err != nil {
		return 0, err
	}
	n, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.table().Name, err)
	}
	return n, nil
}

// OrderBy は指定カラムでソートしたレコードを取得する。
// directionのゼロ値は降順。未知のカラムはErrUnknownColumnを返す。
func (r *Repo[T]) OrderBy(ctx context.Context, column string, direction Direction, skip, limit int) ([]T, error) {
	if err := r.validateColumn(column); err != nil {
		return nil, err
	}
	var ms []T
	q := r.db.NewSelect().Model(&ms).
		OrderExpr("? ?", bun.Ident(column), bun.Safe(direction.String()))
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to order %s: %w", r.table().Name, err)
	}
	return ms, nil
}

// applyCriteria は等値条件をクエリに適用する。カラム検証込み。
func (r *Repo[T]) applyCriteria(q *bun.SelectQuery, criteria Criteria) (*bun.SelectQuery, error) {
	for _, c := range criteria {
		if err := r.validateColumn(c.Column); err != nil {
			return nil, err
		}
		q = q.Where("? = ?", bun.Ident(c.Column), c.Value)
	}
	return q, nil
}
