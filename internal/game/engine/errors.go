package engine

import (
	"errors"

	"github.com/udisondev/monarena/internal/game/effect"
)

var (
	ErrBattleNotFound   = errors.New("battle not found")
	ErrBattleExists     = errors.New("battle already exists")
	ErrBattleOver       = errors.New("battle is complete")
	ErrBattleInProgress = errors.New("battle still in progress")
	ErrInvalidStart     = errors.New("invalid battle start")
	ErrUnknownRuleset   = errors.New("unknown ruleset")
	ErrInvalidPlayer    = errors.New("invalid player index")
	ErrNotYourTurn      = errors.New("player does not act this turn")
	ErrAlreadyDecided   = errors.New("decision already submitted for this turn")
	ErrInvalidMove      = errors.New("illegal move")
	ErrDecisionsPending = errors.New("turn is waiting for decisions")
	ErrTurnAborted      = errors.New("turn aborted")
	ErrRecord           = errors.New("recording battle history failed")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrBattleNotFound, "battle_not_found"},
	{ErrBattleExists, "battle_exists"},
	{ErrBattleOver, "battle_over"},
	{ErrBattleInProgress, "battle_in_progress"},
	{ErrInvalidStart, "invalid_start"},
	{ErrUnknownRuleset, "unknown_ruleset"},
	{ErrInvalidPlayer, "invalid_player"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrAlreadyDecided, "already_decided"},
	{ErrInvalidMove, "invalid_move"},
	{ErrDecisionsPending, "decisions_pending"},
	{ErrRecord, "record_failed"},
	{effect.ErrHookDepth, "hook_depth"},
	{ErrTurnAborted, "turn_aborted"},
}

// Code returns a stable machine-readable code for err, for client display.
// Unknown errors map to "internal".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
