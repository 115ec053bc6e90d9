package model

import "time"

// BootstrapMessageContent は相互マッチ成立時にシステムが作成する最初の
// チャットメッセージの固定文言。
const BootstrapMessageContent = "マッチが成立しました！挨拶してデュオを始めましょう。"

// ChatMessage はマッチに紐づくチャットメッセージを表す。
// IsBootstrapがtrueのメッセージはマッチごとに最大1件のみ存在する。
type ChatMessage struct {
	ID          int64
	MatchID     int64
	SenderID    int64
	Content     string
	IsBootstrap bool
	IsRead      bool
	CreatedAt   time.Time
}
