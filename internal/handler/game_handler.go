package handler

import (
	"context"
	"net/http"

	"github.com/duofinder/duofinder/internal/repository"
)

// GameServiceInterface はゲームハンドラーが必要とするサービスインターフェース。
type GameServiceInterface interface {
	// ListGames は全ゲームをランク序列付きで返す。
	ListGames(ctx context.Context) ([]repository.GameWithRanks, error)
}

// GameHandler はゲームカタログのHTTPハンドラー。
type GameHandler struct {
	service GameServiceInterface
}

// NewGameHandler はGameHandlerを生成する。
func NewGameHandler(service GameServiceInterface) *GameHandler {
	return &GameHandler{service: service}
}

// gameRankResponse はランク序列1件のAPIレスポンス。
type gameRankResponse struct {
	LocalRankID   int    `json:"local_rank_id"`
	RankName      string `json:"rank_name"`
	TierName      string `json:"tier_name,omitempty"`
	DivisionLabel string `json:"division_label,omitempty"`
}

// gameResponse はゲーム1件のAPIレスポンス。
type gameResponse struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	ReleasedYear *int               `json:"released_year,omitempty"`
	Ranks        []gameRankResponse `json:"ranks"`
}

// ListGames はゲーム一覧を返す。
// GET /api/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.ListGames(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]gameResponse, 0, len(games))
	for _, g := range games {
		ranks := make([]gameRankResponse, 0, len(g.Ranks))
		for _, rank := range g.Ranks {
			ranks = append(ranks, gameRankResponse{
				LocalRankID:   rank.LocalRankID,
				RankName:      rank.RankName,
				TierName:      rank.TierName,
				DivisionLabel: rank.DivisionLabel,
			})
		}
		resp = append(resp, gameResponse{
			ID:           g.ID,
			Name:         g.Name,
			Description:  g.Description,
			ReleasedYear: g.ReleasedYear,
			Ranks:        ranks,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
