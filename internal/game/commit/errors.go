package commit

import (
	"errors"

	"github.com/udisondev/monarena/internal/game/engine"
)

var (
	ErrNotParticipant          = errors.New("caller is not a participant")
	ErrNoCommitNeeded          = errors.New("single-player switch turn needs no commitment")
	ErrNotCommitter            = errors.New("caller is not this turn's committer")
	ErrAlreadyCommitted        = errors.New("commitment already made for this turn")
	ErrZeroHash                = errors.New("empty commitment")
	ErrRevealBeforeOtherCommit = errors.New("reveal before the committer's commitment")
	ErrNotCommitted            = errors.New("reveal without a commitment")
	ErrRevealOutOfOrder        = errors.New("committer must reveal after the other player")
	ErrWrongPreimage           = errors.New("reveal does not match commitment")
	ErrAlreadyRevealed         = errors.New("already revealed this turn")
	ErrWrongFormat             = errors.New("move count does not match battle format")
	ErrSameSwitchTarget        = errors.New("both slots switch into the same mon")

	// ErrExecuteFailed wraps an auto-execute failure after the reveal was
	// stored. Retry with Engine.Execute, not by revealing again.
	ErrExecuteFailed = errors.New("reveal stored but turn execution failed")

	// Re-exported so callers need only this package for errors.Is checks.
	ErrInvalidMove = engine.ErrInvalidMove
	ErrNotYourTurn = engine.ErrNotYourTurn
	ErrBattleOver  = engine.ErrBattleOver
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotParticipant, "not_participant"},
	{ErrNoCommitNeeded, "no_commit_needed"},
	{ErrNotCommitter, "not_committer"},
	{ErrAlreadyCommitted, "already_committed"},
	{ErrZeroHash, "zero_hash"},
	{ErrRevealBeforeOtherCommit, "reveal_before_other_commit"},
	{ErrNotCommitted, "not_committed"},
	{ErrRevealOutOfOrder, "reveal_out_of_order"},
	{ErrWrongPreimage, "wrong_preimage"},
	{ErrAlreadyRevealed, "already_revealed"},
	{ErrWrongFormat, "wrong_format"},
	{ErrSameSwitchTarget, "same_switch_target"},
	{ErrExecuteFailed, "execute_failed"},
}

// Code returns a stable machine-readable code for err. Engine errors map to
// engine.Code.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return engine.Code(err)
}
