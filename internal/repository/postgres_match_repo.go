package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/duofinder/duofinder/internal/model"
)

// PostgresMatchRepo はPostgreSQLを使用したマッチレコードリポジトリ。
// 書き込みは呼び出し側が開始したトランザクション内で行い、
// (low_user_id, high_user_id)のUNIQUE制約と行ロックで一貫性を保証する。
type PostgresMatchRepo struct {
	db *sql.DB
}

// NewPostgresMatchRepo はPostgresMatchRepoを生成する。
func NewPostgresMatchRepo(db *sql.DB) *PostgresMatchRepo {
	return &PostgresMatchRepo{db: db}
}

// matchColumns はマッチレコードのSELECT句。
const matchColumns = `id, low_user_id, high_user_id, liked_by_low, liked_by_high, is_ranked, created_at`

// scanMatch は1行をmodel.Matchに読み取る。
func scanMatch(row interface{ Scan(dest ...any) error }) (*model.Match, error) {
	m := &model.Match{}
	var likedByLow, likedByHigh sql.NullString

	if err := row.Scan(
		&m.ID, &m.LowUserID, &m.HighUserID,
		&likedByLow, &likedByHigh,
		&m.IsRanked, &m.CreatedAt,
	); err != nil {
		return nil, err
	}

	// NULLは未スワイプ（LikeStateUnset）として扱う
	if likedByLow.Valid {
		m.LikedByLow = model.LikeState(likedByLow.String)
	}
	if likedByHigh.Valid {
		m.LikedByHigh = model.LikeState(likedByHigh.String)
	}

	return m, nil
}

// GetOrCreate は正規化ペア(low, high)のマッチレコードを取得し、
// 存在しなければ両like未設定で作成する。
//
// INSERT ... ON CONFLICT DO NOTHING の後に FOR UPDATE で再読み取りする。
// 並行する2つの初回スワイプが同時に走っても、UNIQUE制約により挿入の勝者は
// 1つに決まり、敗者側のINSERTは勝者のコミットを待ってから0行で返る。
// 以降このトランザクションがコミットするまで行ロックを保持するため、
// 同一ペアへのUpdateLikeは直列化される。
func (r *PostgresMatchRepo) GetOrCreate(ctx context.Context, tx *sql.Tx, low, high int64, isRanked bool) (*model.Match, bool, error) {
	if low >= high {
		return nil, false, fmt.Errorf("正規化ペアキーが不正です: low=%d high=%d", low, high)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO matches (low_user_id, high_user_id, is_ranked)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (low_user_id, high_user_id) DO NOTHING`,
		low, high, isRanked,
	)
	if err != nil {
		return nil, false, fmt.Errorf("マッチレコードの作成に失敗しました: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("挿入結果の取得に失敗しました: %w", err)
	}
	created := affected == 1

	match, err := scanMatch(tx.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE low_user_id = $1 AND high_user_id = $2
		 FOR UPDATE`,
		low, high,
	))
	if err != nil {
		return nil, false, fmt.Errorf("マッチレコードの取得に失敗しました: %w", err)
	}

	return match, created, nil
}

// UpdateLike はアクター側のlikeフラグとis_rankedを更新し、
// 更新前後のスナップショットを返す。
// 更新前の読み取りはFOR UPDATEで行うため、同一ペアに対する並行更新が
// 双方とも古いprevを観測することはない。
func (r *PostgresMatchRepo) UpdateLike(ctx context.Context, tx *sql.Tx, low, high int64, actorIsLow bool, state model.LikeState, isRanked bool) (*model.Match, *model.Match, error) {
	prev, err := scanMatch(tx.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE low_user_id = $1 AND high_user_id = $2
		 FOR UPDATE`,
		low, high,
	))
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("更新対象のマッチレコードが存在しません: (%d, %d)", low, high)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("更新前スナップショットの取得に失敗しました: %w", err)
	}

	column := "liked_by_high"
	if actorIsLow {
		column = "liked_by_low"
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE matches SET `+column+` = $3, is_ranked = $4
		 WHERE low_user_id = $1 AND high_user_id = $2`,
		low, high, string(state), isRanked,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("likeフラグの更新に失敗しました: %w", err)
	}

	next := *prev
	next.IsRanked = isRanked
	if actorIsLow {
		next.LikedByLow = state
	} else {
		next.LikedByHigh = state
	}

	return prev, &next, nil
}

// FindByID は指定IDのマッチを取得する。見つからない場合はnilを返す。
func (r *PostgresMatchRepo) FindByID(ctx context.Context, id int64) (*model.Match, error) {
	match, err := scanMatch(r.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("マッチの取得に失敗しました: %w", err)
	}
	return match, nil
}

// ListForUser は指定ユーザーが当事者の全マッチを作成日時降順で返す。
func (r *PostgresMatchRepo) ListForUser(ctx context.Context, userID int64) ([]*model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE low_user_id = $1 OR high_user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("マッチ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	matches := []*model.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("マッチ行の読み取りに失敗しました: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("マッチ一覧の走査に失敗しました: %w", err)
	}

	return matches, nil
}

// compile-time interface check
var _ MatchRepository = (*PostgresMatchRepo)(nil)
