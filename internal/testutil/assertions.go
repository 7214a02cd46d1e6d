package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/model"
)

// AssertDelta проверяет дельту стата мона.
func AssertDelta(tb testing.TB, e *engine.Engine, id model.BattleID, player, mon int, stat model.Stat, want int32) {
	tb.Helper()

	st, err := e.MonState(id, player, mon)
	require.NoError(tb, err)
	require.Equalf(tb, want, st.Delta(stat), "player %d mon %d %s delta", player, mon, stat)
}

// AssertActive проверяет, какой мон стоит в слоте.
func AssertActive(tb testing.TB, e *engine.Engine, id model.BattleID, player, slot, want int) {
	tb.Helper()

	got, err := e.ActiveMon(id, player, slot)
	require.NoError(tb, err)
	require.Equalf(tb, want, got, "player %d slot %d active mon", player, slot)
}
