// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// プロフィール管理は外部サブシステムの責務であり、コアはID・有効フラグ・
// サーバー・生年月日などの読み取りのみ行う。
type User struct {
	ID        int64
	Username  string
	Bio       string
	BirthDate time.Time
	Server    string
	IsActive  bool
	ImageURL  *string // プライマリ画像のURL。未設定の場合はnil。
}

// Age は基準時刻nowにおけるユーザーの年齢を返す。
func (u *User) Age(now time.Time) int {
	age := now.Year() - u.BirthDate.Year()
	// 誕生日がまだ来ていない年は1引く
	if now.Month() < u.BirthDate.Month() ||
		(now.Month() == u.BirthDate.Month() && now.Day() < u.BirthDate.Day()) {
		age--
	}
	return age
}

// Session はユーザーのログインセッションを表す。
// トークン発行は外部の認証コラボレーターの責務で、コアは検証のみ行う。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
