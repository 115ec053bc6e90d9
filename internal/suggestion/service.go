// Package suggestion はデュオ候補の抽出ロジックを提供する。
package suggestion

import (
	"context"
	"fmt"
	"time"

	"github.com/duofinder/duofinder/internal/metrics"
	"github.com/duofinder/duofinder/internal/model"
	"github.com/duofinder/duofinder/internal/repository"
	"github.com/duofinder/duofinder/internal/security"
)

// rankWindow は互換と見なすランク距離の上限。
// 共有ゲームで両者ともランク登録済みの場合、|Δ local_rank_id| がこの値以下なら適格。
const rankWindow = 3

// DefaultLimit は limit 未指定時のページサイズ。
const DefaultLimit = 20

// Filters は候補抽出の絞り込み条件。nilのフィールドは適用しない。
type Filters struct {
	Server   *string
	IsRanked *bool
}

// Candidate は候補者1人分の射影。
// 共有ゲームのうち適格判定に使った代表ゲーム1つ分のスキル情報を持つ。
type Candidate struct {
	UserID     int64
	Username   string
	Age        int
	Bio        string
	ImageURL   *string
	GameID     int64
	GameName   string
	SkillLevel int
	IsRanked   bool
}

// Service は候補抽出のサービス層。
type Service struct {
	skillRepo repository.SkillRepository
	sanitizer security.ContentSanitizerService
	collector metrics.MetricsCollector

	maxLimit int
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// maxLimitは1ページの上限件数（1以上）。
func NewService(
	skillRepo repository.SkillRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
	maxLimit int,
) *Service {
	if maxLimit < 1 {
		maxLimit = DefaultLimit
	}
	return &Service{
		skillRepo: skillRepo,
		sanitizer: sanitizer,
		collector: collector,
		maxLimit:  maxLimit,
		now:       time.Now,
	}
}

// GetSuggestions はアクターのデュオ候補をID昇順で返す。
//
// 候補プール: アクティブかつスキル登録があり、アクターとゲームを共有し、
// アクターがまだスワイプしていないユーザー。除外はペア単位で恒久的。
// 適格条件はゲームごとに「共有 AND（どちらかが未ランク OR ランク距離がウィンドウ内）」、
// 複数ゲーム間はORで評価する。skip/limitはフィルタ適用後に効く。
func (s *Service) GetSuggestions(ctx context.Context, actorID int64, filters Filters, skip, limit int) ([]Candidate, error) {
	start := s.now()
	defer func() {
		if s.collector != nil {
			s.collector.RecordSuggestionLatency(time.Since(start))
		}
	}()

	actorSkills, err := s.skillRepo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("アクターのスキル取得に失敗しました: %w", err)
	}
	// スキル未登録のアクターには候補が存在しない
	if len(actorSkills) == 0 {
		return []Candidate{}, nil
	}

	actorByGame := make(map[int64]*model.Skill, len(actorSkills))
	for _, sk := range actorSkills {
		actorByGame[sk.GameID] = sk
	}

	rows, err := s.skillRepo.ListCandidateRows(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("候補者の取得に失敗しました: %w", err)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if skip < 0 {
		skip = 0
	}

	now := s.now()
	candidates := []Candidate{}

	// 行は候補者ID昇順・ゲームID昇順。候補者ごとに最初の適格ゲームを代表にする。
	i := 0
	for i < len(rows) {
		j := i
		for j < len(rows) && rows[j].User.ID == rows[i].User.ID {
			j++
		}
		group := rows[i:j]
		i = j

		if cand, ok := s.qualify(group, actorByGame, filters, now); ok {
			candidates = append(candidates, cand)
		}
	}

	// フィルタ適用後にページネーション
	if skip >= len(candidates) {
		return []Candidate{}, nil
	}
	candidates = candidates[skip:]
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// qualify は候補者1人分の行グループを評価し、適格なら射影を返す。
func (s *Service) qualify(group []repository.CandidateRow, actorByGame map[int64]*model.Skill, filters Filters, now time.Time) (Candidate, bool) {
	user := group[0].User

	if filters.Server != nil && user.Server != *filters.Server {
		return Candidate{}, false
	}

	for _, row := range group {
		actorSkill, ok := actorByGame[row.GameID]
		if !ok {
			continue
		}
		if !rankCompatible(actorSkill, row) {
			continue
		}
		if filters.IsRanked != nil && row.IsRanked != *filters.IsRanked {
			continue
		}

		bio := user.Bio
		if s.sanitizer != nil {
			bio = s.sanitizer.Sanitize(bio)
		}

		return Candidate{
			UserID:     user.ID,
			Username:   user.Username,
			Age:        user.Age(now),
			Bio:        bio,
			ImageURL:   user.ImageURL,
			GameID:     row.GameID,
			GameName:   row.GameName,
			SkillLevel: row.SkillLevel,
			IsRanked:   row.IsRanked,
		}, true
	}

	return Candidate{}, false
}

// rankCompatible は共有ゲーム1つ分のランク互換を判定する。
// どちらかが未ランクなら常に互換、両者ランク登録済みならランク距離で判定する。
func rankCompatible(actorSkill *model.Skill, row repository.CandidateRow) bool {
	if !actorSkill.IsRanked || !row.IsRanked {
		return true
	}
	if actorSkill.LocalRankID == nil || row.LocalRankID == nil {
		return true
	}
	delta := *actorSkill.LocalRankID - *row.LocalRankID
	if delta < 0 {
		delta = -delta
	}
	return delta <= rankWindow
}
