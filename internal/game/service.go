// Package game はゲームカタログの参照機能を提供する。
package game

import (
	"context"
	"fmt"

	"github.com/duofinder/duofinder/internal/repository"
)

// Service はゲームカタログの読み取りサービス。
// カタログ自体はSkillCatalogサブシステムが管理し、ここでは参照のみ行う。
type Service struct {
	gameRepo repository.GameRepository
}

// NewService は新しいゲームカタログサービスを作成する。
func NewService(gameRepo repository.GameRepository) *Service {
	return &Service{gameRepo: gameRepo}
}

// ListGames は全ゲームをランク序列付きで返す。
func (s *Service) ListGames(ctx context.Context) ([]repository.GameWithRanks, error) {
	games, err := s.gameRepo.ListWithRanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("ゲーム一覧の取得に失敗しました: %w", err)
	}
	return games, nil
}
