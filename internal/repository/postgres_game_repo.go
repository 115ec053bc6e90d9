package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/duofinder/duofinder/internal/model"
)

// PostgresGameRepo はPostgreSQLを使用したゲームカタログリポジトリ。読み取り専用。
type PostgresGameRepo struct {
	db *sql.DB
}

// NewPostgresGameRepo はPostgresGameRepoを生成する。
func NewPostgresGameRepo(db *sql.DB) *PostgresGameRepo {
	return &PostgresGameRepo{db: db}
}

// ListWithRanks は全ゲームをランク序列付きで返す。
// LEFT JOINのためランク未登録のゲームも空のランク一覧で含まれる。
// ゲーム名昇順、ランクはrank_order昇順。
func (r *PostgresGameRepo) ListWithRanks(ctx context.Context) ([]GameWithRanks, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, g.released_year,
		        gr.local_rank_id, gr.rank_name, gr.tier_name,
		        gr.division_label, gr.division_number, gr.rank_order
		 FROM games g
		 LEFT JOIN game_ranks gr ON gr.game_id = g.id
		 ORDER BY g.name, g.id, gr.rank_order NULLS LAST, gr.local_rank_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("ゲーム一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	result := []GameWithRanks{}
	index := map[int64]int{} // game id -> resultの位置

	for rows.Next() {
		var (
			game         model.Game
			releasedYear sql.NullInt64

			localRankID    sql.NullInt64
			rankName       sql.NullString
			tierName       sql.NullString
			divisionLabel  sql.NullString
			divisionNumber sql.NullInt64
			rankOrder      sql.NullInt64
		)

		if err := rows.Scan(
			&game.ID, &game.Name, &game.Description, &releasedYear,
			&localRankID, &rankName, &tierName,
			&divisionLabel, &divisionNumber, &rankOrder,
		); err != nil {
			return nil, fmt.Errorf("ゲーム行の読み取りに失敗しました: %w", err)
		}

		if releasedYear.Valid {
			year := int(releasedYear.Int64)
			game.ReleasedYear = &year
		}

		pos, ok := index[game.ID]
		if !ok {
			pos = len(result)
			index[game.ID] = pos
			result = append(result, GameWithRanks{Game: game, Ranks: []model.GameRank{}})
		}

		if localRankID.Valid {
			rank := model.GameRank{
				GameID:        game.ID,
				LocalRankID:   int(localRankID.Int64),
				RankName:      rankName.String,
				TierName:      tierName.String,
				DivisionLabel: divisionLabel.String,
			}
			if divisionNumber.Valid {
				n := int(divisionNumber.Int64)
				rank.DivisionNumber = &n
			}
			if rankOrder.Valid {
				n := int(rankOrder.Int64)
				rank.RankOrder = &n
			}
			result[pos].Ranks = append(result[pos].Ranks, rank)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ゲーム一覧の走査に失敗しました: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ GameRepository = (*PostgresGameRepo)(nil)
