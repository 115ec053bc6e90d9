// Package chat はマッチに紐づくチャットメッセージの閲覧・送信を提供する。
package chat

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/duofinder/duofinder/internal/model"
	"github.com/duofinder/duofinder/internal/repository"
	"github.com/duofinder/duofinder/internal/security"
)

const (
	// DefaultListLimit は一覧取得のlimit未指定時の既定値。
	DefaultListLimit = 50
	// MaxListLimit は一覧取得のlimit上限。
	MaxListLimit = 200
	// MaxContentLength はメッセージ本文の最大文字数。
	MaxContentLength = 2000
)

// Service はチャット操作のビジネスロジックを提供する。
type Service struct {
	matchRepo repository.MatchRepository
	chatRepo  repository.ChatRepository
	sanitizer security.ContentSanitizerService
}

// NewService は新しいチャットサービスを作成する。
func NewService(matchRepo repository.MatchRepository, chatRepo repository.ChatRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		matchRepo: matchRepo,
		chatRepo:  chatRepo,
		sanitizer: sanitizer,
	}
}

// ListMessages はマッチのメッセージをcreated_at昇順で返す。
// アクターが当事者でないマッチはIDの存在を漏らさないためMatchNotFoundを返す。
func (s *Service) ListMessages(ctx context.Context, actorID, matchID int64, limit, offset int) ([]*model.ChatMessage, error) {
	match, err := s.authorizedMatch(ctx, actorID, matchID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		return nil, model.NewInvalidRequestError(fmt.Sprintf("limitは%d以下を指定してください。", MaxListLimit))
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.chatRepo.ListByMatch(ctx, match.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("メッセージ一覧の取得に失敗しました: %w", err)
	}
	return messages, nil
}

// SendMessage はマッチにメッセージを送信する。
// 相互マッチが成立していないマッチには送信できない。
func (s *Service) SendMessage(ctx context.Context, actorID, matchID int64, content string) (*model.ChatMessage, error) {
	match, err := s.authorizedMatch(ctx, actorID, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsMutual() {
		return nil, model.NewInvalidRequestError("相互マッチが成立していないためメッセージを送信できません。")
	}

	content = s.sanitizer.Sanitize(content)
	if content == "" {
		return nil, model.NewInvalidRequestError("メッセージ本文を入力してください。")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, model.NewInvalidRequestError(fmt.Sprintf("メッセージ本文は%d文字以内で入力してください。", MaxContentLength))
	}

	msg := &model.ChatMessage{
		MatchID:  match.ID,
		SenderID: actorID,
		Content:  content,
	}
	if err := s.chatRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("メッセージの作成に失敗しました: %w", err)
	}
	return msg, nil
}

// authorizedMatch はマッチを取得し、アクターが当事者であることを検証する。
func (s *Service) authorizedMatch(ctx context.Context, actorID, matchID int64) (*model.Match, error) {
	match, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("マッチの取得に失敗しました: %w", err)
	}
	if match == nil || !match.Involves(actorID) {
		return nil, model.NewMatchNotFoundError(matchID)
	}
	return match, nil
}
