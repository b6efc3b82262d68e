package repository

import "errors"

// ErrUnknownColumn はモデルに存在しないカラムが指定されたことを表す。
// フィルタ・カウント・ソートのすべてで同一のエラーを返し、
// 黙って空の結果を返すことはしない。
var ErrUnknownColumn = errors.New("unknown column")

// Cond は単一の等値条件を表す。
type Cond struct {
	Column string
	Value  any
}

// Eq はカラム等値条件を生成する。
func Eq(column string, value any) Cond {
	return Cond{Column: column, Value: value}
}

// Criteria は等値条件の集合。すべてANDで結合される。
type Criteria []Cond

// Direction はソート方向を表す。ゼロ値は降順。
type Direction int

const (
	// Desc は降順（新しい順）。デフォルト。
	Desc Direction = iota
	// Asc は昇順。
	Asc
)

// String はSQLのソート方向キーワードを返す。
func (d Direction) String() string {
	if d == Asc {
		return "ASC"
	}
	return "DESC"
}
