package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/duofinder/duofinder/internal/middleware"
	"github.com/duofinder/duofinder/internal/model"
	"github.com/duofinder/duofinder/internal/suggestion"
)

// SuggestionServiceInterface は候補提案ハンドラーが必要とするサービスインターフェース。
type SuggestionServiceInterface interface {
	// GetSuggestions はアクターのデュオ候補一覧を返す。
	GetSuggestions(ctx context.Context, actorID int64, filters suggestion.Filters, skip, limit int) ([]suggestion.Candidate, error)
}

// SuggestionHandler はデュオ候補提案のHTTPハンドラー。
type SuggestionHandler struct {
	service SuggestionServiceInterface
}

// NewSuggestionHandler はSuggestionHandlerを生成する。
func NewSuggestionHandler(service SuggestionServiceInterface) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

// candidateResponse は候補1件のAPIレスポンス。
type candidateResponse struct {
	UserID     int64   `json:"user_id"`
	Username   string  `json:"username"`
	Age        int     `json:"age"`
	Bio        string  `json:"bio"`
	ImageURL   *string `json:"image_url,omitempty"`
	GameID     int64   `json:"game_id"`
	GameName   string  `json:"game_name"`
	SkillLevel int     `json:"skill_level"`
	IsRanked   bool    `json:"is_ranked"`
}

// GetSuggestions は候補一覧を返す。
// GET /api/matches/suggestions?server=&is_ranked=&skip=&limit=
func (h *SuggestionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	q := r.URL.Query()

	var filters suggestion.Filters
	if server := q.Get("server"); server != "" {
		filters.Server = &server
	}
	if raw := q.Get("is_ranked"); raw != "" {
		isRanked, err := strconv.ParseBool(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidRequestError("is_rankedはtrueまたはfalseを指定してください。"))
			return
		}
		filters.IsRanked = &isRanked
	}

	skip, err := parseIntParam(q.Get("skip"), 0)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("skipは整数を指定してください。"))
		return
	}
	limit, err := parseIntParam(q.Get("limit"), 0)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("limitは整数を指定してください。"))
		return
	}

	candidates, err := h.service.GetSuggestions(r.Context(), userID, filters, skip, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]candidateResponse, 0, len(candidates))
	for _, c := range candidates {
		resp = append(resp, candidateResponse{
			UserID:     c.UserID,
			Username:   c.Username,
			Age:        c.Age,
			Bio:        c.Bio,
			ImageURL:   c.ImageURL,
			GameID:     c.GameID,
			GameName:   c.GameName,
			SkillLevel: c.SkillLevel,
			IsRanked:   c.IsRanked,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseIntParam はクエリパラメータの整数値を解析する。空文字の場合は既定値を返す。
func parseIntParam(raw string, defaultVal int) (int, error) {
	if raw == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(raw)
}
