package swipe

import (
	"github.com/duofinder/duofinder/internal/model"
)

// ResolveGame はスワイプ対象のゲームを決定し、そのゲームでの
// is_ranked（両者ともランク登録済みか）を返す。
//
// 決定規則:
//   - gameIDが明示されている場合はそれを使う。ただし両者のスキルに
//     存在しないゲームはInvalidGameErrorになる。
//   - 省略時は共有ゲームがちょうど1つならそれを使う。
//   - 共有ゲームが複数または0でも、アクターの登録ゲームが1つだけなら
//     それを使う（ターゲット側に無ければInvalidGameError）。
//   - それ以外は一意に推定できないためAmbiguousGameErrorになる。
func ResolveGame(actorSkills, targetSkills []*model.Skill, gameID *int64) (int64, bool, error) {
	actorByGame := skillsByGame(actorSkills)
	targetByGame := skillsByGame(targetSkills)

	var resolved int64
	switch {
	case gameID != nil:
		resolved = *gameID
	default:
		shared := sharedGames(actorSkills, targetByGame)
		if len(shared) == 1 {
			resolved = shared[0]
		} else if len(actorSkills) == 1 {
			resolved = actorSkills[0].GameID
		} else {
			return 0, false, model.NewAmbiguousGameError()
		}
	}

	actorSkill, ok := actorByGame[resolved]
	if !ok {
		return 0, false, model.NewInvalidGameError(resolved)
	}
	targetSkill, ok := targetByGame[resolved]
	if !ok {
		return 0, false, model.NewInvalidGameError(resolved)
	}

	return resolved, actorSkill.IsRanked && targetSkill.IsRanked, nil
}

// skillsByGame はスキル一覧をゲームIDで引けるマップに変換する。
func skillsByGame(skills []*model.Skill) map[int64]*model.Skill {
	m := make(map[int64]*model.Skill, len(skills))
	for _, sk := range skills {
		m[sk.GameID] = sk
	}
	return m
}

// sharedGames はアクターのスキル順で共有ゲームIDを列挙する。
func sharedGames(actorSkills []*model.Skill, targetByGame map[int64]*model.Skill) []int64 {
	var shared []int64
	for _, sk := range actorSkills {
		if _, ok := targetByGame[sk.GameID]; ok {
			shared = append(shared, sk.GameID)
		}
	}
	return shared
}
