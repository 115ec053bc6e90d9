package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/duofinder/duofinder/internal/model"
)

// PostgresSkillRepo はPostgreSQLを使用したスキルリポジトリ。
// user_game_skills / game_ranks は外部のプロフィールサブシステムが書き込む
// テーブルで、このリポジトリは読み取り専用。
type PostgresSkillRepo struct {
	db *sql.DB
}

// NewPostgresSkillRepo はPostgresSkillRepoを生成する。
func NewPostgresSkillRepo(db *sql.DB) *PostgresSkillRepo {
	return &PostgresSkillRepo{db: db}
}

// ListByUser は指定ユーザーの全スキルをゲームID昇順で返す。
// スキルがなければ空スライスを返す。
func (r *PostgresSkillRepo) ListByUser(ctx context.Context, userID int64) ([]*model.Skill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, game_id, skill_level, is_ranked, local_rank_id
		 FROM user_game_skills
		 WHERE user_id = $1
		 ORDER BY game_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("スキル一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	skills := []*model.Skill{}
	for rows.Next() {
		skill := &model.Skill{}
		var localRankID sql.NullInt64

		if err := rows.Scan(&skill.UserID, &skill.GameID, &skill.SkillLevel, &skill.IsRanked, &localRankID); err != nil {
			return nil, fmt.Errorf("スキル行の読み取りに失敗しました: %w", err)
		}
		if localRankID.Valid {
			id := int(localRankID.Int64)
			skill.LocalRankID = &id
		}

		skills = append(skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("スキル一覧の走査に失敗しました: %w", err)
	}

	return skills, nil
}

// ListCandidateRows は候補者抽出用の行を返す。
// アクターとゲームを1つ以上共有するアクティブユーザーのうち、
// アクターが未スワイプ（当該ペアのアクター側フラグが未設定）の相手のみを含む。
// 除外は(アクター, 候補)ペア単位で恒久的であり、ゲーム単位ではない。
// 結果は候補者ID昇順・ゲームID昇順で、ページネーションの安定性を保証する。
func (r *PostgresSkillRepo) ListCandidateRows(ctx context.Context, actorID int64) ([]CandidateRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.bio, u.birth_date, u.server, ui.image_url,
		        s.game_id, g.name, s.skill_level, s.is_ranked, s.local_rank_id
		 FROM users u
		 JOIN user_game_skills s ON s.user_id = u.id
		 JOIN games g ON g.id = s.game_id
		 LEFT JOIN user_images ui ON ui.user_id = u.id AND ui.is_primary
		 WHERE u.is_active
		   AND u.id <> $1
		   AND s.game_id IN (SELECT game_id FROM user_game_skills WHERE user_id = $1)
		   AND NOT EXISTS (
		       SELECT 1 FROM matches m
		       WHERE m.low_user_id = LEAST($1, u.id)
		         AND m.high_user_id = GREATEST($1, u.id)
		         AND (CASE WHEN $1 < u.id THEN m.liked_by_low ELSE m.liked_by_high END) IS NOT NULL
		   )
		 ORDER BY u.id, s.game_id`,
		actorID,
	)
	if err != nil {
		return nil, fmt.Errorf("候補者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	result := []CandidateRow{}
	for rows.Next() {
		var row CandidateRow
		var imageURL sql.NullString
		var localRankID sql.NullInt64

		if err := rows.Scan(
			&row.User.ID, &row.User.Username, &row.User.Bio, &row.User.BirthDate,
			&row.User.Server, &imageURL,
			&row.GameID, &row.GameName, &row.SkillLevel, &row.IsRanked, &localRankID,
		); err != nil {
			return nil, fmt.Errorf("候補者行の読み取りに失敗しました: %w", err)
		}

		row.User.IsActive = true
		if imageURL.Valid {
			row.User.ImageURL = &imageURL.String
		}
		if localRankID.Valid {
			id := int(localRankID.Int64)
			row.LocalRankID = &id
		}

		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("候補者一覧の走査に失敗しました: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ SkillRepository = (*PostgresSkillRepo)(nil)
