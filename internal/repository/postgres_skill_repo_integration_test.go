package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/duofinder/duofinder/internal/model"
)

// seedGames はテスト用ゲームを作成する。
func seedGames(t *testing.T, db *sql.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		if _, err := db.Exec(
			`INSERT INTO games (id, name) VALUES ($1, $2)`,
			id, fmt.Sprintf("game%d", id),
		); err != nil {
			t.Fatalf("ゲーム作成に失敗: %v", err)
		}
	}
}

// seedSkill はテスト用スキル（未ランク）を作成する。
func seedSkill(t *testing.T, db *sql.DB, userID, gameID int64) {
	t.Helper()
	if _, err := db.Exec(
		`INSERT INTO user_game_skills (user_id, game_id, skill_level, is_ranked) VALUES ($1, $2, 10, FALSE)`,
		userID, gameID,
	); err != nil {
		t.Fatalf("スキル作成に失敗: %v", err)
	}
}

// swipeBetween はactorからtargetへのスワイプを1トランザクションでコミットする。
func swipeBetween(t *testing.T, db *sql.DB, actor, target int64, state model.LikeState) {
	t.Helper()
	ctx := context.Background()
	repo := NewPostgresMatchRepo(db)

	low, high, actorIsLow := model.CanonicalPair(actor, target)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("トランザクション開始に失敗: %v", err)
	}
	defer tx.Rollback()

	if _, _, err := repo.GetOrCreate(ctx, tx, low, high, false); err != nil {
		t.Fatalf("GetOrCreateに失敗: %v", err)
	}
	if _, _, err := repo.UpdateLike(ctx, tx, low, high, actorIsLow, state, false); err != nil {
		t.Fatalf("UpdateLikeに失敗: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("コミットに失敗: %v", err)
	}
}

// candidateIDs は候補行からユーザーIDを重複なし・出現順で取り出す。
func candidateIDs(rows []CandidateRow) []int64 {
	ids := []int64{}
	seen := map[int64]bool{}
	for _, row := range rows {
		if !seen[row.User.ID] {
			seen[row.User.ID] = true
			ids = append(ids, row.User.ID)
		}
	}
	return ids
}

func TestPostgresSkillRepo_ListCandidateRows_Integration(t *testing.T) {
	db := setupIntegrationDB(t)
	repo := NewPostgresSkillRepo(db)
	ctx := context.Background()

	// user 1: game 10のみ / user 2: game 10 / user 3: game 10と20 /
	// user 4: game 20のみ / user 5: game 10だが非アクティブ
	seedUsers(t, db, 1, 2, 3, 4, 5)
	seedGames(t, db, 10, 20)
	seedSkill(t, db, 1, 10)
	seedSkill(t, db, 2, 10)
	seedSkill(t, db, 3, 10)
	seedSkill(t, db, 3, 20)
	seedSkill(t, db, 4, 20)
	seedSkill(t, db, 5, 10)
	if _, err := db.Exec(`UPDATE users SET is_active = FALSE WHERE id = 5`); err != nil {
		t.Fatalf("ユーザー無効化に失敗: %v", err)
	}

	rows, err := repo.ListCandidateRows(ctx, 1)
	if err != nil {
		t.Fatalf("ListCandidateRowsに失敗: %v", err)
	}

	// ゲームを共有しないuser 4と非アクティブなuser 5は含まれない
	got := candidateIDs(rows)
	want := []int64{2, 3}
	if len(got) != len(want) {
		t.Fatalf("候補者ID = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("候補者ID = %v, want %v", got, want)
		}
	}

	// 共有ゲームの行のみが返る（user 3のgame 20行は含まれない）
	for _, row := range rows {
		if row.GameID != 10 {
			t.Errorf("候補者%dの行にgame %dが含まれている, want 10のみ", row.User.ID, row.GameID)
		}
	}

	// game 20視点でも対称に動作する
	rows, err = repo.ListCandidateRows(ctx, 4)
	if err != nil {
		t.Fatalf("ListCandidateRowsに失敗: %v", err)
	}
	got = candidateIDs(rows)
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("user 4の候補者ID = %v, want [3]", got)
	}
}

// スワイプ済みペアの除外がアクター単位であることを検証する。
// likedでもpassedでも、スワイプした側の候補一覧からのみ相手が消え、
// スワイプされた側の候補一覧には影響しない。
func TestPostgresSkillRepo_ListCandidateRows_ExcludesSwipedPairs(t *testing.T) {
	db := setupIntegrationDB(t)
	repo := NewPostgresSkillRepo(db)
	ctx := context.Background()

	seedUsers(t, db, 1, 2, 3)
	seedGames(t, db, 10)
	seedSkill(t, db, 1, 10)
	seedSkill(t, db, 2, 10)
	seedSkill(t, db, 3, 10)

	// user 1（ペアのlow側）がuser 2をlike
	swipeBetween(t, db, 1, 2, model.LikeStateLiked)
	// user 3（ペアのhigh側）がuser 1をpass
	swipeBetween(t, db, 3, 1, model.LikeStatePassed)

	tests := []struct {
		name    string
		actorID int64
		want    []int64
	}{
		{"likeした相手は消えるが自分をpassした相手は残る", 1, []int64{3}},
		{"likeされた側の一覧は変わらない", 2, []int64{1, 3}},
		{"passした相手は消える", 3, []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.ListCandidateRows(ctx, tt.actorID)
			if err != nil {
				t.Fatalf("ListCandidateRowsに失敗: %v", err)
			}

			got := candidateIDs(rows)
			if len(got) != len(tt.want) {
				t.Fatalf("actor %d: 候補者ID = %v, want %v", tt.actorID, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("actor %d: 候補者ID = %v, want %v", tt.actorID, got, tt.want)
				}
			}
		})
	}

	// 残る側が後からスワイプすると、その側の一覧からも消える
	swipeBetween(t, db, 2, 1, model.LikeStateLiked)
	rows, err := repo.ListCandidateRows(ctx, 2)
	if err != nil {
		t.Fatalf("ListCandidateRowsに失敗: %v", err)
	}
	got := candidateIDs(rows)
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("相互形成後のuser 2の候補者ID = %v, want [3]", got)
	}
}
