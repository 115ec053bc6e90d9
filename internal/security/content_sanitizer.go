// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はチャットメッセージやプロフィール文など
// ユーザー投稿テキストをサニタイズし、XSS攻撃などのセキュリティリスクから
// ユーザーを保護する。bluemondayライブラリの厳格ポリシーを使用し、
// HTMLタグを一切通過させない。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー投稿テキストのサニタイズ機能のインターフェースを定義する。
// チャットメッセージの保存前およびプロフィール更新時に使用される。
type ContentSanitizerService interface {
	// Sanitize はユーザー投稿テキストをサニタイズして安全なプレーンテキストを返す。
	// チャットとプロフィールはプレーンテキスト前提のため、HTMLタグは
	// すべて除去される。script, iframe, styleタグおよびon*イベント属性も
	// タグごと除去される。前後の空白はトリムされる。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayの厳格ポリシー（許可タグなし）を構築する。
// タグを許可リストに一切含めないため、script等の危険なタグはもちろん、
// pやaのような無害なタグもすべて除去され、テキスト内容のみが残る。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はユーザー投稿テキストをサニタイズして安全なプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
