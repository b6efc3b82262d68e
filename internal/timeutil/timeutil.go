// Package timeutil はアプリケーション共通の時刻処理を提供する。
package timeutil

import "time"

// KST は永続化とレスポンス刻印に使用する固定タイムゾーン（UTC+9）。
// デプロイリージョンに依存せず再現可能な順序を保証するため、
// ウォールクロックのローカルタイムは使用しない。
var KST = time.FixedZone("KST", 9*60*60)

// Now は現在時刻をKST（UTC+9）で返す。
func Now() time.Time {
	return time.Now().In(KST)
}

// In は任意の時刻をKSTに変換する。
func In(t time.Time) time.Time {
	return t.In(KST)
}
