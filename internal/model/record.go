package model

import "time"

// StartRecord is everything needed to rebuild a battle from scratch.
type StartRecord struct {
	ID             BattleID
	Players        [2]string
	Format         Format
	Ruleset        string
	FirstCommitter int
	Teams          [2]Team
	StartedAt      time.Time
}

// TurnRecord is the public history of one executed turn.
// Decisions[p] is nil when player p did not act.
type TurnRecord struct {
	BattleID   BattleID
	Turn       uint64
	Round      uint64
	Decisions  [2]*Decision
	RNG        uint64
	Digest     [32]byte
	ExecutedAt time.Time
}

// EndRecord marks the terminal state of a battle.
type EndRecord struct {
	BattleID BattleID
	Turn     uint64
	Winner   int
	Reason   string
	EndedAt  time.Time
}

// End reasons.
const (
	EndKnockout  = "knockout"
	EndTimeout   = "timeout"
	EndTerminate = "terminated"
)

// History is the full journal of one battle. End is nil while the battle
// is still running.
type History struct {
	Start StartRecord
	Turns []TurnRecord
	End   *EndRecord
}
