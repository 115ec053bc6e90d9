package model

import "time"

// LikeState はマッチレコード上の片側のスワイプ状態を表す3値の列挙。
// nullableなboolではなく明示的な状態として扱い、遷移を網羅的に検証可能にする。
type LikeState string

const (
	// LikeStateUnset は当該ユーザーがまだスワイプしていない状態。
	LikeStateUnset LikeState = ""
	// LikeStateLiked は当該ユーザーがLikeした状態。
	LikeStateLiked LikeState = "liked"
	// LikeStatePassed は当該ユーザーがDislikeした状態。
	LikeStatePassed LikeState = "passed"
)

// LikeStateFromBool はスワイプのlike値をLikeStateに変換する。
func LikeStateFromBool(like bool) LikeState {
	if like {
		return LikeStateLiked
	}
	return LikeStatePassed
}

// IsSet はスワイプ済みかどうかを返す。
func (s LikeState) IsSet() bool {
	return s != LikeStateUnset
}

// Match は非順序ユーザーペアごとに一意な、コアが所有するマッチレコード。
// 常にLowUserID < HighUserIDの正規化キーで保存し、双方向のスワイプを
// 単一レコードで表現する。
type Match struct {
	ID          int64
	LowUserID   int64
	HighUserID  int64
	LikedByLow  LikeState
	LikedByHigh LikeState
	IsRanked    bool
	CreatedAt   time.Time
}

// IsMutual は両側がLikeし相互マッチが成立しているかを返す。
func (m *Match) IsMutual() bool {
	return m.LikedByLow == LikeStateLiked && m.LikedByHigh == LikeStateLiked
}

// LikeStateOf は指定ユーザー側のスワイプ状態を返す。
// ペアに属さないユーザーの場合はLikeStateUnsetを返す。
func (m *Match) LikeStateOf(userID int64) LikeState {
	switch userID {
	case m.LowUserID:
		return m.LikedByLow
	case m.HighUserID:
		return m.LikedByHigh
	}
	return LikeStateUnset
}

// Involves は指定ユーザーがこのマッチの当事者かどうかを返す。
func (m *Match) Involves(userID int64) bool {
	return userID == m.LowUserID || userID == m.HighUserID
}

// CanonicalPair はユーザーIDの組を正規化キー（low < high）に並べ替える。
// aIsLowはaが小さい側だったかどうかを返す。
func CanonicalPair(a, b int64) (low, high int64, aIsLow bool) {
	if a < b {
		return a, b, true
	}
	return b, a, false
}
