package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/duofinder/duofinder/internal/middleware"
	"github.com/duofinder/duofinder/internal/model"
)

// ChatServiceInterface はチャットハンドラーが必要とするサービスインターフェース。
type ChatServiceInterface interface {
	// ListMessages はマッチのメッセージをcreated_at昇順で返す。
	ListMessages(ctx context.Context, actorID, matchID int64, limit, offset int) ([]*model.ChatMessage, error)
	// SendMessage はマッチにメッセージを送信する。
	SendMessage(ctx context.Context, actorID, matchID int64, content string) (*model.ChatMessage, error)
}

// ChatHandler はチャットメッセージのHTTPハンドラー。
type ChatHandler struct {
	service ChatServiceInterface
}

// NewChatHandler はChatHandlerを生成する。
func NewChatHandler(service ChatServiceInterface) *ChatHandler {
	return &ChatHandler{service: service}
}

// sendMessageRequest はメッセージ送信リクエストのボディ。
type sendMessageRequest struct {
	Content string `json:"content"`
}

// chatMessageResponse はチャットメッセージのAPIレスポンス。
type chatMessageResponse struct {
	ID          int64     `json:"id"`
	MatchID     int64     `json:"match_id"`
	SenderID    int64     `json:"sender_id"`
	Content     string    `json:"content"`
	IsBootstrap bool      `json:"is_bootstrap"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListMessages はマッチのメッセージ一覧を返す。
// GET /api/chats/{matchID}?limit=&offset=
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	matchID, err := parseMatchID(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("マッチIDは整数を指定してください。"))
		return
	}

	q := r.URL.Query()
	limit, err := parseIntParam(q.Get("limit"), 0)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("limitは整数を指定してください。"))
		return
	}
	offset, err := parseIntParam(q.Get("offset"), 0)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("offsetは整数を指定してください。"))
		return
	}

	messages, err := h.service.ListMessages(r.Context(), userID, matchID, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]chatMessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toChatMessageResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// SendMessage はマッチにメッセージを送信する。
// POST /api/chats/{matchID}
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	matchID, err := parseMatchID(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("マッチIDは整数を指定してください。"))
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	msg, err := h.service.SendMessage(r.Context(), userID, matchID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toChatMessageResponse(msg))
}

// parseMatchID はURLパラメータからマッチIDを解析する。
func parseMatchID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
}

// toChatMessageResponse はmodel.ChatMessageからAPIレスポンスに変換する。
func toChatMessageResponse(m *model.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		ID:          m.ID,
		MatchID:     m.MatchID,
		SenderID:    m.SenderID,
		Content:     m.Content,
		IsBootstrap: m.IsBootstrap,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}
