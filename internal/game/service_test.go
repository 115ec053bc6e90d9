package game

import (
	"context"
	"errors"
	"testing"

	"github.com/duofinder/duofinder/internal/model"
	"github.com/duofinder/duofinder/internal/repository"
)

type mockGameRepo struct {
	games   []repository.GameWithRanks
	listErr error
}

func (m *mockGameRepo) ListWithRanks(ctx context.Context) ([]repository.GameWithRanks, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.games, nil
}

func TestListGames(t *testing.T) {
	repo := &mockGameRepo{games: []repository.GameWithRanks{
		{
			Game: model.Game{ID: 10, Name: "Valorant"},
			Ranks: []model.GameRank{
				{GameID: 10, LocalRankID: 1, RankName: "Iron 1"},
				{GameID: 10, LocalRankID: 2, RankName: "Iron 2"},
			},
		},
		{
			// ランク未登録のゲームも空のランク一覧で含まれる
			Game:  model.Game{ID: 20, Name: "Minecraft"},
			Ranks: []model.GameRank{},
		},
	}}
	svc := NewService(repo)

	got, err := svc.ListGames(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("games = %d, want 2", len(got))
	}
	if got[0].Name != "Valorant" || len(got[0].Ranks) != 2 {
		t.Errorf("games[0] = (%q, %d ranks), want (Valorant, 2 ranks)", got[0].Name, len(got[0].Ranks))
	}
	if len(got[1].Ranks) != 0 {
		t.Errorf("games[1].Ranks = %d, want 0", len(got[1].Ranks))
	}
}

func TestListGames_RepositoryError(t *testing.T) {
	repo := &mockGameRepo{listErr: errors.New("connection refused")}
	svc := NewService(repo)

	if _, err := svc.ListGames(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
