// Package handler はHTTPリクエストの受け付けとレスポンスの整形を担う。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/duofinder/duofinder/internal/middleware"
	"github.com/duofinder/duofinder/internal/model"
	"github.com/duofinder/duofinder/internal/swipe"
)

// MatchServiceInterface はマッチハンドラーが必要とするサービスインターフェース。
type MatchServiceInterface interface {
	// ProcessSwipe はスワイプを処理し、結果を返す。
	ProcessSwipe(ctx context.Context, actorID, targetID int64, gameID *int64, liked bool) (*swipe.SwipeResult, error)
	// ListMatches はアクターの全マッチをアクター視点で返す。
	ListMatches(ctx context.Context, actorID int64) ([]swipe.MatchView, error)
}

// MatchHandler はスワイプとマッチ一覧のHTTPハンドラー。
type MatchHandler struct {
	service MatchServiceInterface
}

// NewMatchHandler はMatchHandlerを生成する。
func NewMatchHandler(service MatchServiceInterface) *MatchHandler {
	return &MatchHandler{service: service}
}

// swipeRequest はスワイプリクエストのボディ。
type swipeRequest struct {
	TargetUserID int64  `json:"target_user_id"`
	Like         *bool  `json:"like"`
	GameID       *int64 `json:"game_id,omitempty"`
}

// swipeResponse はスワイプ結果のAPIレスポンス。
type swipeResponse struct {
	MatchID  int64  `json:"match_id"`
	GameID   int64  `json:"game_id"`
	IsRanked bool   `json:"is_ranked"`
	IsMutual bool   `json:"is_mutual"`
	ChatID   *int64 `json:"chat_id,omitempty"`
}

// matchResponse はマッチ一覧の1件のAPIレスポンス。
type matchResponse struct {
	MatchID   int64  `json:"match_id"`
	PartnerID int64  `json:"partner_id"`
	YourLike  string `json:"your_like"`
	IsRanked  bool   `json:"is_ranked"`
	IsMutual  bool   `json:"is_mutual"`
	ChatID    *int64 `json:"chat_id,omitempty"`
}

// Swipe はスワイプを処理する。
// POST /api/matches/swipe
func (h *MatchHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	if req.TargetUserID == 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("target_user_idは必須です。"))
		return
	}
	if req.Like == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("likeは必須です。"))
		return
	}

	result, err := h.service.ProcessSwipe(r.Context(), userID, req.TargetUserID, req.GameID, *req.Like)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, swipeResponse{
		MatchID:  result.MatchID,
		GameID:   result.GameID,
		IsRanked: result.IsRanked,
		IsMutual: result.IsMutual,
		ChatID:   result.ChatID,
	})
}

// ListMatches はアクターのマッチ一覧を返す。
// GET /api/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	views, err := h.service.ListMatches(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]matchResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, matchResponse{
			MatchID:   v.MatchID,
			PartnerID: v.PartnerID,
			YourLike:  string(v.YourLikeState),
			IsRanked:  v.IsRanked,
			IsMutual:  v.IsMutual,
			ChatID:    v.ChatID,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
