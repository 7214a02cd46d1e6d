package engine

import (
	"context"

	"github.com/udisondev/monarena/internal/model"
)

// Recorder persists battle history. The engine calls it after every
// successful state change while still holding the battle lock, so records
// of one battle arrive in order.
type Recorder interface {
	RecordStart(ctx context.Context, rec model.StartRecord) error
	RecordTurn(ctx context.Context, rec model.TurnRecord) error
	RecordEnd(ctx context.Context, rec model.EndRecord) error
}

type nopRecorder struct{}

func (nopRecorder) RecordStart(context.Context, model.StartRecord) error { return nil }
func (nopRecorder) RecordTurn(context.Context, model.TurnRecord) error   { return nil }
func (nopRecorder) RecordEnd(context.Context, model.EndRecord) error     { return nil }
