package engine_test

import (
	"context"
	"errors"

	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/model"
)

const (
	volatileName = "test.Volatile"
	echoName     = "test.Echo"
)

var errVolatile = errors.New("volatile effect blew up")

func init() {
	effect.Register(volatile{})
	effect.Register(echo{})
}

// volatile fails every round end.
type volatile struct {
	effect.Base
}

func (volatile) Name() string { return volatileName }

func (volatile) ShouldRunAtStep(step effect.Step) bool { return step == effect.StepRoundEnd }

func (volatile) OnRoundEnd(effect.Call) (effect.Result, error) {
	return effect.Result{}, errVolatile
}

// echo answers every stat change of its mon with another one.
type echo struct {
	effect.Base
}

func (echo) Name() string { return echoName }

func (echo) ShouldRunAtStep(step effect.Step) bool { return step == effect.StepOnUpdateMonState }

func (echo) OnUpdateMonState(c effect.Call, stat model.Stat, _ int32) (effect.Result, error) {
	if err := c.Host.UpdateMonState(c.Target.Player, c.Target.Mon, stat, 1); err != nil {
		return effect.Result{}, err
	}
	return effect.Keep(c.Data), nil
}

var errRecorder = errors.New("journal unavailable")

type memRecorder struct {
	starts    []model.StartRecord
	turns     []model.TurnRecord
	end       *model.EndRecord
	failStart bool
	failTurns bool
	failEnd   bool
}

func (r *memRecorder) RecordStart(_ context.Context, rec model.StartRecord) error {
	if r.failStart {
		return errRecorder
	}
	r.starts = append(r.starts, rec)
	return nil
}

func (r *memRecorder) RecordTurn(_ context.Context, rec model.TurnRecord) error {
	if r.failTurns {
		return errRecorder
	}
	r.turns = append(r.turns, rec)
	return nil
}

func (r *memRecorder) RecordEnd(_ context.Context, rec model.EndRecord) error {
	if r.failEnd {
		return errRecorder
	}
	r.end = &rec
	return nil
}
