package model

// Game はマッチング対象のゲームタイトルを表す。
type Game struct {
	ID           int64
	Name         string
	Description  string
	ReleasedYear *int
}

// GameRank はゲームごとのランク序列のエントリを表す。
// LocalRankIDはゲーム内で連続する序数で、ランク窓の距離計算に使用する。
type GameRank struct {
	GameID         int64
	LocalRankID    int
	RankName       string
	TierName       string
	DivisionLabel  string
	DivisionNumber *int
	RankOrder      *int
}

// Skill はユーザーとゲームの組に対するスキル情報を表す。
// LocalRankIDはIsRankedがtrueの場合のみ設定され、GameRankの有効なエントリを参照する。
type Skill struct {
	UserID      int64
	GameID      int64
	SkillLevel  int
	IsRanked    bool
	LocalRankID *int
}
