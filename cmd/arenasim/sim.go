package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/monarena/internal/config"
	"github.com/udisondev/monarena/internal/crypto"
	"github.com/udisondev/monarena/internal/game/commit"
	"github.com/udisondev/monarena/internal/game/content"
	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/model"
)

// Stats summarizes a simulation run.
type Stats struct {
	Battles    int
	Wins       [2]int
	Draws      int
	Unfinished int
	Turns      uint64
}

type simulator struct {
	engine *engine.Engine
	roster content.Roster
	cfg    config.Arena
	format model.Format

	mu    sync.Mutex
	stats Stats
}

// Run plays cfg.Simulation.Battles battles, at most Concurrency at a time.
// Every battle goes through the commit-reveal protocol with salts derived
// from the seed, so a run is reproducible.
func (s *simulator) Run(ctx context.Context) (Stats, error) {
	mgr := commit.NewManager(s.engine, slog.Default())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Simulation.Concurrency)
	for i := range s.cfg.Simulation.Battles {
		g.Go(func() error {
			if err := s.playBattle(gctx, mgr, uint64(i)); err != nil {
				return fmt.Errorf("battle %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, nil
}

func (s *simulator) startRecord(n uint64) model.StartRecord {
	seed := s.cfg.Simulation.Seed
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	binary.LittleEndian.PutUint64(buf[8:], n)

	size := s.cfg.Battle.TeamSize
	pick := int(crypto.Derive(seed, n) % uint64(len(s.roster.Mons)))
	return model.StartRecord{
		ID:             crypto.Keccak256([]byte("monarena/sim"), buf[:]),
		Players:        [2]string{fmt.Sprintf("sim-%d-a", n), fmt.Sprintf("sim-%d-b", n)},
		Format:         s.format,
		Ruleset:        s.cfg.Battle.Ruleset,
		FirstCommitter: s.cfg.Battle.FirstCommitter,
		Teams: [2]model.Team{
			s.roster.Team(pick, size),
			s.roster.Team(pick+size, size),
		},
	}
}

func (s *simulator) playBattle(ctx context.Context, mgr *commit.Manager, n uint64) error {
	rec := s.startRecord(n)
	id := rec.ID
	if err := s.engine.Start(ctx, rec); err != nil {
		return err
	}
	log := slog.With("battle", id.String())

	rules, err := engine.LookupRuleset(rec.Ruleset)
	if err != nil {
		return err
	}
	bots := [2]*bot{
		newBot(rules.Validator, crypto.Derive(s.cfg.Simulation.Seed, 2*n)),
		newBot(rules.Validator, crypto.Derive(s.cfg.Simulation.Seed, 2*n+1)),
	}

	for range s.cfg.Simulation.MaxTurns {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := s.engine.Snapshot(id)
		if err != nil {
			return err
		}
		if b.IsComplete() {
			break
		}
		if err := s.playTurn(ctx, mgr, b, bots); err != nil {
			return fmt.Errorf("turn %d: %w", b.Turn, err)
		}
	}

	b, err := s.engine.Snapshot(id)
	if err != nil {
		return err
	}
	if !b.IsComplete() {
		if err := s.engine.Terminate(ctx, id, "turn limit"); err != nil {
			return err
		}
		if b, err = s.engine.Snapshot(id); err != nil {
			return err
		}
	}
	s.tally(b)
	log.Info("battle finished", "turns", b.Turn, "winner", b.Winner, "reason", b.EndReason)
	return s.engine.End(id)
}

// playTurn runs one turn through the protocol: a forced switch is simply
// revealed; otherwise the committer commits, the other player reveals and
// the committer opens its commitment, which executes the turn.
func (s *simulator) playTurn(ctx context.Context, mgr *commit.Manager, b *model.Battle, bots [2]*bot) error {
	id := b.ID
	if p := b.ForcedSwitch; p != model.NoForcedSwitch {
		return reveal(ctx, mgr, b, p, bots[p].Decide(b, p))
	}

	c := b.Committer()
	r := 1 - c
	dc := bots[c].Decide(b, c)
	dr := bots[r].Decide(b, r)

	if err := mgr.Commit(ctx, id, b.Players[c], commitment(dc)); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if err := reveal(ctx, mgr, b, r, dr); err != nil {
		return err
	}
	return reveal(ctx, mgr, b, c, dc)
}

func commitment(d model.Decision) [32]byte {
	if len(d.Moves) == 2 {
		return commit.HashDoubles([2]model.SlotMove{d.Moves[0], d.Moves[1]}, d.Salt)
	}
	return commit.Hash(d.Moves[0].MoveIndex, d.Moves[0].ExtraData, d.Salt)
}

func reveal(ctx context.Context, mgr *commit.Manager, b *model.Battle, p int, d model.Decision) error {
	var err error
	if len(d.Moves) == 2 {
		err = mgr.RevealDoubles(ctx, b.ID, b.Players[p], [2]model.SlotMove{d.Moves[0], d.Moves[1]}, d.Salt, true)
	} else {
		err = mgr.Reveal(ctx, b.ID, b.Players[p], d.Moves[0].MoveIndex, d.Moves[0].ExtraData, d.Salt, true)
	}
	if err != nil {
		return fmt.Errorf("reveal p%d (%s): %w", p, commit.Code(err), err)
	}
	return nil
}

func (s *simulator) tally(b *model.Battle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Battles++
	s.stats.Turns += b.Turn
	switch b.Winner {
	case 0, 1:
		s.stats.Wins[b.Winner]++
	case model.Draw:
		s.stats.Draws++
	default:
		s.stats.Unfinished++
	}
}
