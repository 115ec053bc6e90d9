package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, match, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeSelfSwipe           = "SELF_SWIPE"
	ErrCodeAmbiguousGame       = "AMBIGUOUS_GAME"
	ErrCodeInvalidGame         = "INVALID_GAME"
	ErrCodePersistenceConflict = "PERSISTENCE_CONFLICT"
	ErrCodeMatchNotFound       = "MATCH_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
)

// NewSelfSwipeError は自分自身へのスワイプエラーを生成する。
func NewSelfSwipeError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfSwipe,
		Message:  "自分自身をスワイプすることはできません。",
		Category: "validation",
		Action:   "他のユーザーを対象に指定してください。",
	}
}

// NewAmbiguousGameError はゲームを一意に推定できない場合のエラーを生成する。
func NewAmbiguousGameError() *APIError {
	return &APIError{
		Code:     ErrCodeAmbiguousGame,
		Message:  "対象ゲームを一意に推定できませんでした。",
		Category: "validation",
		Action:   "game_idを明示的に指定してください。",
	}
}

// NewInvalidGameError は双方のスキルに存在しないゲームが指定された場合のエラーを生成する。
func NewInvalidGameError(gameID int64) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidGame,
		Message:  fmt.Sprintf("指定されたゲームは両ユーザーのスキルに登録されていません: %d", gameID),
		Category: "validation",
		Action:   "両ユーザーがスキル登録済みのゲームを指定してください。",
	}
}

// NewPersistenceConflictError はリトライ上限まで解消しなかった書き込み競合エラーを生成する。
func NewPersistenceConflictError() *APIError {
	return &APIError{
		Code:     ErrCodePersistenceConflict,
		Message:  "データの更新が競合しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewMatchNotFoundError はマッチが見つからない場合のエラーを生成する。
func NewMatchNotFoundError(matchID int64) *APIError {
	return &APIError{
		Code:     ErrCodeMatchNotFound,
		Message:  fmt.Sprintf("指定されたマッチが見つかりません: %d", matchID),
		Category: "match",
		Action:   "マッチIDを確認してください。",
	}
}

// NewInvalidRequestError はリクエスト内容の検証エラーを生成する。
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  message,
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewUnauthorizedError は未認証リクエストに対するエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %d", userID),
		Category: "match",
		Action:   "ユーザーIDを確認してください。",
	}
}
