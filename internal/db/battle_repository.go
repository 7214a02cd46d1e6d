package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/monarena/internal/model"
)

// ErrNotFound возвращается, когда битвы нет в истории.
var ErrNotFound = errors.New("battle not found in history")

// BattleRepository хранит журнал битв в PostgreSQL.
// Реализует engine.Recorder.
type BattleRepository struct {
	pool *pgxpool.Pool
}

// NewBattleRepository создаёт репозиторий поверх пула.
func NewBattleRepository(pool *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{pool: pool}
}

// RecordStart сохраняет стартовую запись битвы.
func (r *BattleRepository) RecordStart(ctx context.Context, rec model.StartRecord) error {
	teams, err := json.Marshal(rec.Teams)
	if err != nil {
		return fmt.Errorf("encoding teams for battle %s: %w", rec.ID, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO battles (battle_id, player0, player1, format, ruleset, first_committer, teams, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID[:], rec.Players[0], rec.Players[1], int16(rec.Format), rec.Ruleset,
		int16(rec.FirstCommitter), teams, rec.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting battle %s: %w", rec.ID, err)
	}
	return nil
}

// RecordTurn добавляет исполненный ход в журнал.
func (r *BattleRepository) RecordTurn(ctx context.Context, rec model.TurnRecord) error {
	var (
		moves [2][]byte
		salts [2][]byte
	)
	for p, d := range rec.Decisions {
		if d == nil {
			continue
		}
		b, err := json.Marshal(d.Moves)
		if err != nil {
			return fmt.Errorf("encoding moves of player %d, battle %s turn %d: %w", p, rec.BattleID, rec.Turn, err)
		}
		moves[p] = b
		salts[p] = d.Salt[:]
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO battle_turns (battle_id, turn, round, moves0, salt0, moves1, salt1, rng, digest, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.BattleID[:], int64(rec.Turn), int64(rec.Round),
		moves[0], salts[0], moves[1], salts[1],
		int64(rec.RNG), rec.Digest[:], rec.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting turn %d of battle %s: %w", rec.Turn, rec.BattleID, err)
	}
	return nil
}

// RecordEnd помечает битву завершённой. Повторное завершение — ошибка.
func (r *BattleRepository) RecordEnd(ctx context.Context, rec model.EndRecord) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE battles SET final_turn = $2, winner = $3, end_reason = $4, ended_at = $5
		 WHERE battle_id = $1 AND ended_at IS NULL`,
		rec.BattleID[:], int64(rec.Turn), int16(rec.Winner), rec.Reason, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("ending battle %s: %w", rec.BattleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ending battle %s: %w", rec.BattleID, ErrNotFound)
	}
	return nil
}

// Load читает полную историю битвы. Ходы отсортированы по номеру.
func (r *BattleRepository) Load(ctx context.Context, id model.BattleID) (*model.History, error) {
	var (
		h         model.History
		format    int16
		committer int16
		teams     []byte
		finalTurn *int64
		winner    *int16
		endReason *string
		endedAt   *time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT player0, player1, format, ruleset, first_committer, teams, started_at,
		        final_turn, winner, end_reason, ended_at
		 FROM battles WHERE battle_id = $1`, id[:],
	).Scan(&h.Start.Players[0], &h.Start.Players[1], &format, &h.Start.Ruleset, &committer,
		&teams, &h.Start.StartedAt, &finalTurn, &winner, &endReason, &endedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loading battle %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("loading battle %s: %w", id, err)
	}
	h.Start.ID = id
	h.Start.Format = model.Format(format)
	h.Start.FirstCommitter = int(committer)
	if err := json.Unmarshal(teams, &h.Start.Teams); err != nil {
		return nil, fmt.Errorf("decoding teams of battle %s: %w", id, err)
	}
	if endedAt != nil {
		h.End = &model.EndRecord{BattleID: id, EndedAt: *endedAt}
		if finalTurn != nil {
			h.End.Turn = uint64(*finalTurn)
		}
		if winner != nil {
			h.End.Winner = int(*winner)
		}
		if endReason != nil {
			h.End.Reason = *endReason
		}
	}

	turns, err := r.loadTurns(ctx, id)
	if err != nil {
		return nil, err
	}
	h.Turns = turns
	return &h, nil
}

func (r *BattleRepository) loadTurns(ctx context.Context, id model.BattleID) ([]model.TurnRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT turn, round, moves0, salt0, moves1, salt1, rng, digest, executed_at
		 FROM battle_turns WHERE battle_id = $1 ORDER BY turn`, id[:])
	if err != nil {
		return nil, fmt.Errorf("querying turns of battle %s: %w", id, err)
	}
	defer rows.Close()

	var turns []model.TurnRecord
	for rows.Next() {
		var (
			rec         model.TurnRecord
			turn, round int64
			rng         int64
			moves       [2][]byte
			salts       [2][]byte
			digest      []byte
		)
		if err := rows.Scan(&turn, &round, &moves[0], &salts[0], &moves[1], &salts[1],
			&rng, &digest, &rec.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scanning turn of battle %s: %w", id, err)
		}
		rec.BattleID = id
		rec.Turn = uint64(turn)
		rec.Round = uint64(round)
		rec.RNG = uint64(rng)
		copy(rec.Digest[:], digest)
		for p := range 2 {
			if moves[p] == nil {
				continue
			}
			d := &model.Decision{}
			if err := json.Unmarshal(moves[p], &d.Moves); err != nil {
				return nil, fmt.Errorf("decoding moves of player %d, battle %s turn %d: %w", p, id, turn, err)
			}
			copy(d.Salt[:], salts[p])
			rec.Decisions[p] = d
		}
		turns = append(turns, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns of battle %s: %w", id, err)
	}
	return turns, nil
}

// ListFinished возвращает идентификаторы завершённых битв, новые первыми.
func (r *BattleRepository) ListFinished(ctx context.Context, limit int) ([]model.BattleID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT battle_id FROM battles WHERE ended_at IS NOT NULL
		 ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying finished battles: %w", err)
	}
	defer rows.Close()

	var ids []model.BattleID
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning battle id: %w", err)
		}
		var id model.BattleID
		copy(id[:], raw)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating finished battles: %w", err)
	}
	return ids, nil
}
