// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/duofinder/duofinder/internal/model"
)

// UserRepository はユーザーデータの読み取りインターフェース。
// プロフィール管理は外部サブシステムの責務のため、コアは読み取りのみ行う。
type UserRepository interface {
	// FindByID は指定IDのユーザーをプライマリ画像付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// SkillRepository はユーザーのゲームスキル情報の読み取りインターフェース。
// SkillCatalog（外部所有）への読み取り口として機能する。
type SkillRepository interface {
	// ListByUser は指定ユーザーの全スキルを返す。スキルがなければ空スライスを返す。
	ListByUser(ctx context.Context, userID int64) ([]*model.Skill, error)

	// ListCandidateRows は候補者抽出用の行を返す。
	// 1行は（候補者, 共有ゲーム）の組で、アクターとゲームを1つ以上共有する
	// アクティブユーザーのうち、アクターが未スワイプの相手のみを含む。
	// 候補者ID昇順・ゲームID昇順で返す。
	ListCandidateRows(ctx context.Context, actorID int64) ([]CandidateRow, error)
}

// CandidateRow は候補者抽出クエリの1行。候補者のプロフィールと
// 共有ゲーム1件分のスキル情報を持つ。
type CandidateRow struct {
	User        model.User
	GameID      int64
	GameName    string
	SkillLevel  int
	IsRanked    bool
	LocalRankID *int
}

// MatchRepository はマッチレコード（コアが所有する唯一の可変状態）の
// 永続化インターフェース。書き込み操作は呼び出し側が開始した単一の
// トランザクションハンドルの中で実行する。
type MatchRepository interface {
	// GetOrCreate は正規化ペア(low, high)のマッチレコードを取得し、
	// 存在しなければ両like未設定で作成する。createdは新規作成したかどうか。
	// (low_user_id, high_user_id)のUNIQUE制約とON CONFLICTにより、並行する
	// 初回スワイプでも行は1つに収束する。返却時点で行はFOR UPDATEでロック済み。
	GetOrCreate(ctx context.Context, tx *sql.Tx, low, high int64, isRanked bool) (match *model.Match, created bool, err error)

	// UpdateLike はアクター側のlikeフラグとis_rankedを更新し、
	// 更新前後のスナップショットを同一トランザクション内で返す。
	// 呼び出し側は別読み取りなしに相互遷移を判定できる。
	UpdateLike(ctx context.Context, tx *sql.Tx, low, high int64, actorIsLow bool, state model.LikeState, isRanked bool) (prev, next *model.Match, err error)

	// FindByID は指定IDのマッチを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Match, error)

	// ListForUser は指定ユーザーが当事者の全マッチを返す。
	ListForUser(ctx context.Context, userID int64) ([]*model.Match, error)
}

// ChatRepository はチャットメッセージの永続化インターフェース。
type ChatRepository interface {
	// EnsureBootstrap はマッチのブートストラップメッセージを冪等に作成し、
	// そのIDを返す。既に存在する場合は既存のIDを返す。
	// 「マッチごとに1件」の部分一意インデックスとON CONFLICTで重複を防ぐ。
	EnsureBootstrap(ctx context.Context, tx *sql.Tx, matchID, senderID int64) (int64, error)

	// FindBootstrapID はマッチのブートストラップメッセージIDを返す。
	// 存在しない場合は0とnilエラーを返す。
	FindBootstrapID(ctx context.Context, matchID int64) (int64, error)

	// Create は通常のチャットメッセージを作成し、IDとcreated_atを埋める。
	Create(ctx context.Context, msg *model.ChatMessage) error

	// ListByMatch はマッチのメッセージをcreated_at昇順で返す。
	ListByMatch(ctx context.Context, matchID int64, limit, offset int) ([]*model.ChatMessage, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
// トークン発行は外部の認証コラボレーターが行い、コアは検証に使用する。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// GameRepository はゲームカタログの読み取りインターフェース。
type GameRepository interface {
	// ListWithRanks は全ゲームをランク序列付きで返す。
	// ランク未登録のゲームも空のランク一覧で含まれる。
	ListWithRanks(ctx context.Context) ([]GameWithRanks, error)
}

// GameWithRanks はゲームとそのランク序列を結合した構造体。
type GameWithRanks struct {
	model.Game
	Ranks []model.GameRank
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
