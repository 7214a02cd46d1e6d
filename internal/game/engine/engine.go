// Package engine implements the battle state machine: battle lifecycle,
// decision intake, turn ordering and execution, faint handling, timeouts and
// the per-battle locking that keeps every battle strictly sequential.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/monarena/internal/game/combat"
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/move"
	"github.com/udisondev/monarena/internal/model"
)

// MaxTeamSize bounds a team at start.
const MaxTeamSize = 12

// Config tunes engine behaviour.
type Config struct {
	// TurnTimeout is how long a player may stay idle while owing an action.
	// Zero disables timeout forfeits.
	TurnTimeout time.Duration

	CritNumerator   uint32
	CritDenominator uint32
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		TurnTimeout:     2 * time.Minute,
		CritNumerator:   combat.DefaultCritNumerator,
		CritDenominator: combat.DefaultCritDenominator,
	}
}

// Engine owns every running battle. Battles are independent: each has its
// own lock, and the battle map is guarded separately, so different battles
// progress in parallel while one battle is strictly sequential.
type Engine struct {
	cfg      Config
	log      *slog.Logger
	clock    func() time.Time
	recorder Recorder

	mu      sync.RWMutex
	battles map[model.BattleID]*battleEntry
}

type battleEntry struct {
	mu       sync.Mutex
	b        *model.Battle // nil once released
	rules    *Ruleset
	resolver *combat.Resolver
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder makes the engine journal every battle to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithClock replaces time.Now, for tests and replays.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an engine.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		log:      slog.Default(),
		clock:    time.Now,
		recorder: nopRecorder{},
		battles:  make(map[model.BattleID]*battleEntry, 64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start registers a battle handed over by matchmaking and opens turn 0,
// in which both players pick their leads. The ruleset's field effects are
// attached to both sides.
func (e *Engine) Start(ctx context.Context, rec model.StartRecord) error {
	rules, err := LookupRuleset(rec.Ruleset)
	if err != nil {
		return err
	}
	if err := validateStart(rec); err != nil {
		return err
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = e.clock()
	}

	b := model.NewBattle(rec)
	ent := &battleEntry{
		b:        b,
		rules:    rules,
		resolver: combat.NewResolver(rules.TypeChart, combat.WithCritMultiplier(e.cfg.CritNumerator, e.cfg.CritDenominator)),
		log:      e.log.With("battle", rec.ID.String()),
	}

	h := newHost(b, ent.resolver, ent.log)
	for p := range 2 {
		for _, name := range rules.FieldEffects {
			if err := h.AddEffect(model.FieldTarget(p), name, nil); err != nil {
				h.close()
				return fmt.Errorf("attaching field effect %s: %w", name, err)
			}
		}
	}
	h.close()

	ent.mu.Lock()
	defer ent.mu.Unlock()

	e.mu.Lock()
	if _, ok := e.battles[rec.ID]; ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBattleExists, rec.ID)
	}
	e.battles[rec.ID] = ent
	e.mu.Unlock()

	if err := e.recorder.RecordStart(ctx, rec); err != nil {
		ent.b = nil
		e.mu.Lock()
		delete(e.battles, rec.ID)
		e.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrRecord, err)
	}

	ent.log.Debug("battle started",
		"players", rec.Players,
		"format", rec.Format.String(),
		"ruleset", rec.Ruleset,
		"firstCommitter", rec.FirstCommitter)
	return nil
}

func validateStart(rec model.StartRecord) error {
	if rec.ID == (model.BattleID{}) {
		return fmt.Errorf("%w: zero battle id", ErrInvalidStart)
	}
	if rec.Players[0] == "" || rec.Players[1] == "" || rec.Players[0] == rec.Players[1] {
		return fmt.Errorf("%w: need two distinct players", ErrInvalidStart)
	}
	if rec.Format != model.Singles && rec.Format != model.Doubles {
		return fmt.Errorf("%w: format %d", ErrInvalidStart, rec.Format)
	}
	if rec.FirstCommitter != 0 && rec.FirstCommitter != 1 {
		return fmt.Errorf("%w: first committer %d", ErrInvalidStart, rec.FirstCommitter)
	}

	for p, team := range rec.Teams {
		n := len(team.Mons)
		if n < rec.Format.Slots() || n > MaxTeamSize {
			return fmt.Errorf("%w: player %d team has %d mons", ErrInvalidStart, p, n)
		}
		for i, mon := range team.Mons {
			if mon.Stats.HP == 0 {
				return fmt.Errorf("%w: player %d mon %d has no hp", ErrInvalidStart, p, i)
			}
			if len(mon.Moves) >= int(model.SwitchMoveIndex) {
				return fmt.Errorf("%w: player %d mon %d has too many moves", ErrInvalidStart, p, i)
			}
			for _, name := range mon.Moves {
				if _, err := move.Lookup(name); err != nil {
					return fmt.Errorf("%w: player %d mon %d: %w", ErrInvalidStart, p, i, err)
				}
			}
			if mon.Ability != "" {
				if _, err := move.LookupAbility(mon.Ability); err != nil {
					return fmt.Errorf("%w: player %d mon %d: %w", ErrInvalidStart, p, i, err)
				}
			}
		}
	}
	return nil
}

func (e *Engine) entry(id model.BattleID) (*battleEntry, error) {
	e.mu.RLock()
	ent, ok := e.battles[id]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBattleNotFound, id)
	}
	return ent, nil
}

// withBattle runs fn under the battle's lock.
func (e *Engine) withBattle(id model.BattleID, fn func(ent *battleEntry) error) error {
	ent, err := e.entry(id)
	if err != nil {
		return err
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	if ent.b == nil {
		return fmt.Errorf("%w: %s", ErrBattleNotFound, id)
	}
	return fn(ent)
}

// Tx is exclusive access to one battle for the duration of an Engine.Do
// callback. It must not be kept after the callback returns.
type Tx struct {
	ctx context.Context
	e   *Engine
	ent *battleEntry
}

// Battle returns the live battle. Callers may update commit bookkeeping
// but must leave turn state to the engine.
func (tx *Tx) Battle() *model.Battle { return tx.ent.b }

// Now returns the engine clock.
func (tx *Tx) Now() time.Time { return tx.e.clock() }

// Submit validates and stores a player's decision for the current turn.
func (tx *Tx) Submit(player int, d model.Decision) error {
	return tx.e.submit(tx.ent, player, d)
}

// Ready reports whether every acting player has decided.
func (tx *Tx) Ready() bool { return ready(tx.ent.b) }

// Execute runs the current turn.
func (tx *Tx) Execute() error { return tx.e.execute(tx.ctx, tx.ent) }

// Do runs fn with exclusive access to battle id. The commit-reveal layer
// uses it so its checks and the decision it stores are one atomic step.
func (e *Engine) Do(ctx context.Context, id model.BattleID, fn func(tx *Tx) error) error {
	return e.withBattle(id, func(ent *battleEntry) error {
		return fn(&Tx{ctx: ctx, e: e, ent: ent})
	})
}

// Apply runs fn with a host bound to battle id, outside any turn. It is
// atomic like a turn: if fn fails the battle is restored. Changes made
// through Apply are not journaled, so a battle touched by it no longer
// replays to the recorded digests.
func (e *Engine) Apply(ctx context.Context, id model.BattleID, fn func(h effect.Host) error) error {
	return e.withBattle(id, func(ent *battleEntry) error {
		if ent.b.IsComplete() {
			return ErrBattleOver
		}
		backup := ent.b.Clone()
		h := newHost(ent.b, ent.resolver, ent.log)
		err := fn(h)
		h.close()
		if err != nil {
			ent.b = backup
			return err
		}
		return nil
	})
}

// SubmitDecision stores player's decision for the current turn without any
// commitment check. Replays use it directly.
func (e *Engine) SubmitDecision(ctx context.Context, id model.BattleID, player int, d model.Decision) error {
	return e.withBattle(id, func(ent *battleEntry) error {
		return e.submit(ent, player, d)
	})
}

func (e *Engine) submit(ent *battleEntry, player int, d model.Decision) error {
	b := ent.b
	if b.IsComplete() {
		return ErrBattleOver
	}
	if player < 0 || player > 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	if !b.Acts(player) {
		return ErrNotYourTurn
	}
	if b.Pending[player] != nil {
		return ErrAlreadyDecided
	}
	if len(d.Moves) != b.Slots() {
		return fmt.Errorf("%w: expected %d slot moves, got %d", ErrInvalidMove, b.Slots(), len(d.Moves))
	}

	claimed := -1
	for slot, m := range d.Moves {
		if !ent.rules.Validator.IsLegal(b, player, slot, m, claimed) {
			return fmt.Errorf("%w: player %d slot %d move %d extra %d", ErrInvalidMove, player, slot, m.MoveIndex, m.ExtraData)
		}
		if m.IsSwitch() {
			claimed = int(m.ExtraData)
		}
	}

	b.Pending[player] = d.Clone()
	b.Decisions[player].LastActionAt = e.clock()
	ent.log.Debug("decision stored", "turn", b.Turn, "player", player)
	return nil
}

func ready(b *model.Battle) bool {
	for p := range 2 {
		if b.Acts(p) && b.Pending[p] == nil {
			return false
		}
	}
	return true
}

// Execute runs the current turn once every acting player has decided.
func (e *Engine) Execute(ctx context.Context, id model.BattleID) error {
	return e.withBattle(id, func(ent *battleEntry) error {
		return e.execute(ctx, ent)
	})
}

// Terminate ends a battle without a winner, e.g. when matchmaking aborts it.
func (e *Engine) Terminate(ctx context.Context, id model.BattleID, reason string) error {
	return e.withBattle(id, func(ent *battleEntry) error {
		if ent.b.IsComplete() {
			return ErrBattleOver
		}
		full := model.EndTerminate
		if reason != "" {
			full += ": " + reason
		}
		return e.finish(ctx, ent, model.NoWinner, full)
	})
}

// End releases a completed battle.
func (e *Engine) End(id model.BattleID) error {
	return e.withBattle(id, func(ent *battleEntry) error {
		if !ent.b.IsComplete() {
			return ErrBattleInProgress
		}
		ent.b = nil
		e.mu.Lock()
		delete(e.battles, id)
		e.mu.Unlock()
		return nil
	})
}

// finish records the end of the battle and only then makes it terminal, so
// a failed record leaves the battle open and the call can be retried.
func (e *Engine) finish(ctx context.Context, ent *battleEntry, winner int, reason string) error {
	b := ent.b
	rec := model.EndRecord{
		BattleID: b.ID,
		Turn:     b.Turn,
		Winner:   winner,
		Reason:   reason,
		EndedAt:  e.clock(),
	}
	if err := e.recorder.RecordEnd(ctx, rec); err != nil {
		return fmt.Errorf("%w: %w", ErrRecord, err)
	}

	b.Status = model.StatusComplete
	b.Winner = winner
	b.EndReason = reason
	ent.log.Debug("battle complete", "turn", b.Turn, "winner", winner, "reason", reason)
	return nil
}

// Snapshot returns a deep copy of the battle.
func (e *Engine) Snapshot(id model.BattleID) (*model.Battle, error) {
	var out *model.Battle
	err := e.withBattle(id, func(ent *battleEntry) error {
		out = ent.b.Clone()
		return nil
	})
	return out, err
}

// MonState returns the current state of a team member.
func (e *Engine) MonState(id model.BattleID, player, mon int) (model.MonState, error) {
	var out model.MonState
	err := e.withBattle(id, func(ent *battleEntry) error {
		if !ent.b.ValidMon(player, mon) {
			return fmt.Errorf("%w: %s", ErrInvalidPlayer, model.MonTarget(player, mon))
		}
		out = *ent.b.MonState(player, mon)
		return nil
	})
	return out, err
}

// ActiveMon returns the mon in player's slot, or -1.
func (e *Engine) ActiveMon(id model.BattleID, player, slot int) (int, error) {
	out := -1
	err := e.withBattle(id, func(ent *battleEntry) error {
		if player < 0 || player > 1 {
			return fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
		}
		out = ent.b.ActiveMon(player, slot)
		return nil
	})
	return out, err
}

// Winner returns the winner, model.NoWinner while in progress (and for
// terminated battles) or model.Draw.
func (e *Engine) Winner(id model.BattleID) (int, error) {
	out := model.NoWinner
	err := e.withBattle(id, func(ent *battleEntry) error {
		out = ent.b.Winner
		return nil
	})
	return out, err
}

// Digest returns the state digest of the battle.
func (e *Engine) Digest(id model.BattleID) ([32]byte, error) {
	var out [32]byte
	err := e.withBattle(id, func(ent *battleEntry) error {
		out = Digest(ent.b)
		return nil
	})
	return out, err
}

// Battles returns the ids of every battle held in memory.
func (e *Engine) Battles() []model.BattleID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.BattleID, 0, len(e.battles))
	for id := range e.battles {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b model.BattleID) int {
		return slices.Compare(a[:], b[:])
	})
	return out
}
