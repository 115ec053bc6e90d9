// Package swipe はスワイプ処理と相互マッチ判定のドメインロジックを提供する。
//
// スワイプ1回の処理は単一トランザクション内で実行され、ペア行のロックにより
// 並行スワイプでも相互マッチの成立観測はちょうど1回になる。
package swipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/duofinder/duofinder/internal/metrics"
	"github.com/duofinder/duofinder/internal/model"
	"github.com/duofinder/duofinder/internal/repository"
)

// SwipeResult はスワイプ処理の結果。
type SwipeResult struct {
	MatchID  int64  // マッチレコードのID
	GameID   int64  // 解決されたゲームID
	IsRanked bool   // 両者がそのゲームでランク登録済みか
	IsMutual bool   // この時点で相互マッチが成立しているか
	ChatID   *int64 // 相互マッチ成立時のチャット初期メッセージID
}

// MatchView はマッチ一覧のアクター視点の1件。
type MatchView struct {
	MatchID       int64           // マッチレコードのID
	PartnerID     int64           // 相手ユーザーのID
	YourLikeState model.LikeState // アクター側のスワイプ状態
	IsRanked      bool            // ランク戦マッチか
	IsMutual      bool            // 相互マッチが成立しているか
	ChatID        *int64          // 相互マッチ成立済みの場合のチャット初期メッセージID
}

// Service はスワイプ処理のサービス層。
// 検証、ゲーム推定、トランザクション編成、競合リトライを担う。
type Service struct {
	db        repository.TxBeginner
	userRepo  repository.UserRepository
	skillRepo repository.SkillRepository
	matchRepo repository.MatchRepository
	chatRepo  repository.ChatRepository
	collector metrics.MetricsCollector

	retryAttempts int
}

// NewService はServiceの新しいインスタンスを生成する。
// retryAttemptsは競合時の最大試行回数（1以上）。
func NewService(
	db repository.TxBeginner,
	userRepo repository.UserRepository,
	skillRepo repository.SkillRepository,
	matchRepo repository.MatchRepository,
	chatRepo repository.ChatRepository,
	collector metrics.MetricsCollector,
	retryAttempts int,
) *Service {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &Service{
		db:            db,
		userRepo:      userRepo,
		skillRepo:     skillRepo,
		matchRepo:     matchRepo,
		chatRepo:      chatRepo,
		collector:     collector,
		retryAttempts: retryAttempts,
	}
}

// ProcessSwipe はアクターからターゲットへのスワイプを処理する。
// gameIDがnilの場合はスキル情報からゲームを推定する。
// likeフラグは上書き専用で、一度成立した相互マッチが解消されることはない。
// 相互マッチの初回成立時は同一トランザクション内でチャット初期メッセージを作成する。
func (s *Service) ProcessSwipe(ctx context.Context, actorID, targetID int64, gameID *int64, liked bool) (*SwipeResult, error) {
	if actorID == targetID {
		return nil, model.NewSelfSwipeError()
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("ターゲットユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return nil, model.NewUserNotFoundError(targetID)
	}

	actorSkills, err := s.skillRepo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("アクターのスキル取得に失敗しました: %w", err)
	}
	targetSkills, err := s.skillRepo.ListByUser(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("ターゲットのスキル取得に失敗しました: %w", err)
	}

	resolvedGameID, isRanked, err := ResolveGame(actorSkills, targetSkills, gameID)
	if err != nil {
		return nil, err
	}

	state := model.LikeStateFromBool(liked)

	var result *SwipeResult
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		result, err = s.swipeOnce(ctx, actorID, targetID, resolvedGameID, state, isRanked)
		if err == nil {
			break
		}
		if !isRetryableConflict(err) {
			s.recordSwipe(metrics.SwipeOutcomeError)
			return nil, err
		}

		s.recordConflictRetry()
		slog.Warn("swipe conflict, retrying",
			slog.Int64("actor_id", actorID),
			slog.Int64("target_id", targetID),
			slog.Int("attempt", attempt),
		)

		if attempt == s.retryAttempts {
			s.recordSwipe(metrics.SwipeOutcomeError)
			return nil, model.NewPersistenceConflictError()
		}
	}

	if liked {
		s.recordSwipe(metrics.SwipeOutcomeLiked)
	} else {
		s.recordSwipe(metrics.SwipeOutcomePassed)
	}

	return result, nil
}

// swipeOnce はスワイプ1回分のトランザクションを実行する。
func (s *Service) swipeOnce(ctx context.Context, actorID, targetID, gameID int64, state model.LikeState, isRanked bool) (*SwipeResult, error) {
	low, high, actorIsLow := model.CanonicalPair(actorID, targetID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, _, err := s.matchRepo.GetOrCreate(ctx, tx, low, high, isRanked); err != nil {
		return nil, err
	}

	prev, next, err := s.matchRepo.UpdateLike(ctx, tx, low, high, actorIsLow, state, isRanked)
	if err != nil {
		return nil, err
	}

	result := &SwipeResult{
		MatchID:  next.ID,
		GameID:   gameID,
		IsRanked: next.IsRanked,
		IsMutual: next.IsMutual(),
	}

	// 相互マッチの初回成立時のみチャットを起動する。
	// 部分一意インデックスにより、リトライや競合があっても初期メッセージは1件に収束する。
	if !prev.IsMutual() && next.IsMutual() {
		chatID, err := s.chatRepo.EnsureBootstrap(ctx, tx, next.ID, actorID)
		if err != nil {
			return nil, err
		}
		result.ChatID = &chatID

		s.recordMutualMatch()
		s.recordChatBootstrap()
		slog.Info("mutual match formed",
			slog.Int64("match_id", next.ID),
			slog.Int64("low_user_id", low),
			slog.Int64("high_user_id", high),
			slog.Int64("chat_id", chatID),
		)
	} else if next.IsMutual() {
		// 既に成立済みの場合、初期メッセージは過去のトランザクションで
		// コミット済みなのでプール経由で参照する
		chatID, err := s.chatRepo.FindBootstrapID(ctx, next.ID)
		if err != nil {
			return nil, err
		}
		if chatID != 0 {
			result.ChatID = &chatID
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return result, nil
}

// ListMatches はアクターが当事者の全マッチをアクター視点で返す。
// 相互マッチ成立済みのマッチにはチャット初期メッセージIDが付く。
func (s *Service) ListMatches(ctx context.Context, actorID int64) ([]MatchView, error) {
	matches, err := s.matchRepo.ListForUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("マッチ一覧の取得に失敗しました: %w", err)
	}

	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		partnerID := m.LowUserID
		if partnerID == actorID {
			partnerID = m.HighUserID
		}
		view := MatchView{
			MatchID:       m.ID,
			PartnerID:     partnerID,
			YourLikeState: m.LikeStateOf(actorID),
			IsRanked:      m.IsRanked,
			IsMutual:      m.IsMutual(),
		}
		if view.IsMutual {
			chatID, err := s.chatRepo.FindBootstrapID(ctx, m.ID)
			if err != nil {
				return nil, fmt.Errorf("チャット初期メッセージの取得に失敗しました: %w", err)
			}
			if chatID != 0 {
				view.ChatID = &chatID
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// isRetryableConflict はリトライで解消しうる書き込み競合かどうかを判定する。
// 一意制約違反（並行挿入）、直列化失敗、デッドロック検出が対象。
func isRetryableConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "23505", // unique_violation
		"40001", // serialization_failure
		"40P01": // deadlock_detected
		return true
	}
	return false
}

func (s *Service) recordSwipe(outcome string) {
	if s.collector != nil {
		s.collector.RecordSwipe(outcome)
	}
}

func (s *Service) recordMutualMatch() {
	if s.collector != nil {
		s.collector.RecordMutualMatch()
	}
}

func (s *Service) recordChatBootstrap() {
	if s.collector != nil {
		s.collector.RecordChatBootstrap()
	}
}

func (s *Service) recordConflictRetry() {
	if s.collector != nil {
		s.collector.RecordSwipeConflictRetry()
	}
}
