package model

import (
	"encoding/hex"
	"fmt"
	"slices"
	"time"
)

// Reserved move indices. Any other index selects Mon.Moves[i].
const (
	SwitchMoveIndex uint8 = 125 // ExtraData = bench mon index to switch in
	NoOpMoveIndex   uint8 = 126 // rest for a turn
)

// Winner markers.
const (
	NoWinner = -1
	Draw     = 2
)

// NoForcedSwitch means both players act this turn.
const NoForcedSwitch = -1

// BattleID identifies a battle. It is supplied by the matchmaker.
type BattleID [32]byte

func (id BattleID) String() string {
	return hex.EncodeToString(id[:])
}

// ParseBattleID decodes a hex battle id.
func ParseBattleID(s string) (BattleID, error) {
	var id BattleID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("decoding battle id: %w", err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("battle id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Format is the number of active slots per side.
type Format uint8

const (
	Singles Format = 1
	Doubles Format = 2
)

// Slots returns the number of active slots per side.
func (f Format) Slots() int {
	if f == Doubles {
		return 2
	}
	return 1
}

func (f Format) String() string {
	if f == Doubles {
		return "doubles"
	}
	return "singles"
}

// Status is the battle state machine's current state.
type Status uint8

const (
	StatusAwaiting  Status = iota // waiting for decisions
	StatusExecuting               // a turn is being applied
	StatusComplete                // terminal, Winner set
)

func (s Status) String() string {
	switch s {
	case StatusAwaiting:
		return "awaiting"
	case StatusExecuting:
		return "executing"
	case StatusComplete:
		return "complete"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// SlotMove is one slot's move choice.
type SlotMove struct {
	MoveIndex uint8  `json:"move_index"`
	ExtraData uint64 `json:"extra_data"`
}

// IsSwitch reports whether the move is a switch.
func (m SlotMove) IsSwitch() bool { return m.MoveIndex == SwitchMoveIndex }

// IsNoOp reports whether the move is a rest.
func (m SlotMove) IsNoOp() bool { return m.MoveIndex == NoOpMoveIndex }

// Decision is a player's revealed choice for the current turn.
type Decision struct {
	Moves []SlotMove `json:"moves"`
	Salt  [32]byte   `json:"-"`
}

// Clone returns a deep copy.
func (d *Decision) Clone() *Decision {
	if d == nil {
		return nil
	}
	return &Decision{Moves: slices.Clone(d.Moves), Salt: d.Salt}
}

// PlayerDecision is the commit-reveal bookkeeping for one player.
type PlayerDecision struct {
	MoveHash       [32]byte
	CommitTurn     uint64
	HasCommit      bool
	RevealCount    uint64
	LastRevealTurn uint64
	LastActionAt   time.Time
}

// HasLiveCommit reports whether a commitment exists for turn.
func (d PlayerDecision) HasLiveCommit(turn uint64) bool {
	return d.HasCommit && d.CommitTurn == turn && d.MoveHash != [32]byte{}
}

// RevealedFor reports whether the player already revealed for turn.
func (d PlayerDecision) RevealedFor(turn uint64) bool {
	return d.RevealCount > 0 && d.LastRevealTurn == turn
}

// Battle is the complete per-battle state. It is owned by the engine and
// only mutated under the engine's per-battle lock.
type Battle struct {
	ID             BattleID
	Players        [2]string
	Format         Format
	Ruleset        string
	FirstCommitter int
	Teams          [2]Team
	States         [2][]MonState
	Active         [2][]int // slot -> mon index, -1 until lead selection

	Turn   uint64 // every executed turn
	Round  uint64 // executed two-player turns
	Status Status
	Winner int

	// ForcedSwitch is the only player acting this turn, or NoForcedSwitch.
	ForcedSwitch int

	StartedAt     time.Time
	TurnStartedAt time.Time
	EndReason     string

	Decisions [2]PlayerDecision
	Pending   [2]*Decision
	Effects   EffectStore
}

// PlayerIndex returns the index of addr among the participants.
func (b *Battle) PlayerIndex(addr string) (int, bool) {
	for i, p := range b.Players {
		if p == addr {
			return i, true
		}
	}
	return -1, false
}

// Slots returns the active slot count per side.
func (b *Battle) Slots() int {
	return b.Format.Slots()
}

// IsComplete reports whether the battle reached its terminal state.
func (b *Battle) IsComplete() bool {
	return b.Status == StatusComplete
}

// Committer returns the player who must commit on the current two-player
// turn. Forced single-player switch turns do not advance Round, so they do
// not shift the alternation.
func (b *Battle) Committer() int {
	if b.Round%2 == 0 {
		return b.FirstCommitter
	}
	return 1 - b.FirstCommitter
}

// Acts reports whether player must submit a decision this turn.
func (b *Battle) Acts(player int) bool {
	return b.ForcedSwitch == NoForcedSwitch || b.ForcedSwitch == player
}

// Mon returns the base data of a team member.
func (b *Battle) Mon(player, mon int) Mon {
	return b.Teams[player].Mons[mon]
}

// MonState returns a pointer to the mutable state of a team member.
func (b *Battle) MonState(player, mon int) *MonState {
	return &b.States[player][mon]
}

// ValidMon reports whether (player, mon) addresses a team member.
func (b *Battle) ValidMon(player, mon int) bool {
	return player >= 0 && player < 2 && mon >= 0 && mon < len(b.States[player])
}

// ActiveMon returns the mon index in slot, or -1.
func (b *Battle) ActiveMon(player, slot int) int {
	if slot < 0 || slot >= len(b.Active[player]) {
		return -1
	}
	return b.Active[player][slot]
}

// IsActive reports whether mon currently occupies any slot.
func (b *Battle) IsActive(player, mon int) bool {
	return slices.Contains(b.Active[player], mon)
}

// SlotOf returns the slot mon occupies, or -1.
func (b *Battle) SlotOf(player, mon int) int {
	return slices.Index(b.Active[player], mon)
}

// Remaining returns how many of player's mons are not knocked out.
func (b *Battle) Remaining(player int) int {
	n := 0
	for _, s := range b.States[player] {
		if !s.KnockedOut {
			n++
		}
	}
	return n
}

// Clone returns a deep copy used to roll a failed turn back.
func (b *Battle) Clone() *Battle {
	c := *b
	for p := range 2 {
		c.States[p] = slices.Clone(b.States[p])
		c.Active[p] = slices.Clone(b.Active[p])
		c.Pending[p] = b.Pending[p].Clone()
	}
	c.Effects = b.Effects.Clone()
	return &c
}

// NewBattle builds the initial state for a battle described by rec.
// No mon is active until the lead selection turn executes.
func NewBattle(rec StartRecord) *Battle {
	b := &Battle{
		ID:             rec.ID,
		Players:        rec.Players,
		Format:         rec.Format,
		Ruleset:        rec.Ruleset,
		FirstCommitter: rec.FirstCommitter,
		Teams:          rec.Teams,
		Status:         StatusAwaiting,
		Winner:         NoWinner,
		ForcedSwitch:   NoForcedSwitch,
		StartedAt:      rec.StartedAt,
		TurnStartedAt:  rec.StartedAt,
		Effects:        NewEffectStore(),
	}
	for p := range 2 {
		b.States[p] = make([]MonState, len(rec.Teams[p].Mons))
		b.Active[p] = make([]int, rec.Format.Slots())
		for s := range b.Active[p] {
			b.Active[p][s] = -1
		}
	}
	return b
}
