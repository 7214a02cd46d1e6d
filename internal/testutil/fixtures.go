package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/monarena/internal/crypto"
	"github.com/udisondev/monarena/internal/game/content"
	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/game/move"
	"github.com/udisondev/monarena/internal/model"
)

// Fixtures содержит общие тестовые данные битв.
var Fixtures = struct {
	// Адреса игроков
	Players [2]string

	// Соль для commit-reveal (по игроку)
	Salts [2][32]byte

	// Фиксированное время старта, чтобы дайджесты были воспроизводимы
	StartedAt time.Time
}{
	Players: [2]string{"0xa11ce", "0xb0b"},
	Salts: [2][32]byte{
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		{0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18},
	},
	StartedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
}

// BattleID возвращает детерминированный id битвы по имени теста.
func BattleID(name string) model.BattleID {
	return crypto.Keccak256([]byte(name))
}

// Teams собирает две команды по size монов из стандартного ростера.
func Teams(size int) [2]model.Team {
	r := content.DefaultRoster()
	return [2]model.Team{r.Team(0, size), r.Team(size, size)}
}

// Mon создаёт простого мона без типа и способности.
func Mon(name string, stats model.MonStats, moves ...string) model.Mon {
	return model.Mon{Name: name, Stats: stats, Moves: moves}
}

// StartRecord собирает стартовую запись со стандартным набором правил.
func StartRecord(name string, format model.Format, teams [2]model.Team) model.StartRecord {
	return model.StartRecord{
		ID:             BattleID(name),
		Players:        Fixtures.Players,
		Format:         format,
		Ruleset:        content.Standard,
		FirstCommitter: 0,
		Teams:          teams,
		StartedAt:      Fixtures.StartedAt,
	}
}

// StartBattle запускает битву и выполняет ход выбора лидеров:
// слот i каждого игрока получает мона i.
func StartBattle(tb testing.TB, e *engine.Engine, rec model.StartRecord) model.BattleID {
	tb.Helper()
	ctx := context.Background()

	require.NoError(tb, e.Start(ctx, rec))
	for p := range 2 {
		require.NoError(tb, e.SubmitDecision(ctx, rec.ID, p, Leads(rec.Format)))
	}
	require.NoError(tb, e.Execute(ctx, rec.ID))
	return rec.ID
}

// Leads возвращает решение выбора лидеров для формата.
func Leads(format model.Format) model.Decision {
	d := model.Decision{}
	for slot := range format.Slots() {
		d.Moves = append(d.Moves, Switch(slot))
	}
	return d
}

// Switch — ход замены на мона mon.
func Switch(mon int) model.SlotMove {
	return model.SlotMove{MoveIndex: model.SwitchMoveIndex, ExtraData: uint64(mon)}
}

// NoOp — ход отдыха.
func NoOp() model.SlotMove {
	return model.SlotMove{MoveIndex: model.NoOpMoveIndex}
}

// Use — ход атаки move по цели extra.
func Use(move uint8, extra uint64) model.SlotMove {
	return model.SlotMove{MoveIndex: move, ExtraData: extra}
}

// PlayTurn отправляет решения обоих игроков (nil — игрок не ходит) и исполняет ход.
func PlayTurn(tb testing.TB, e *engine.Engine, id model.BattleID, moves [2][]model.SlotMove) {
	tb.Helper()
	ctx := context.Background()

	for p, m := range moves {
		if m == nil {
			continue
		}
		require.NoError(tb, e.SubmitDecision(ctx, id, p, model.Decision{Moves: m}))
	}
	require.NoError(tb, e.Execute(ctx, id))
}

// AutoDecision выбирает простой ход для игрока: замена упавшего мона на
// первого живого из запаса, иначе первая атака, если хватает выносливости,
// иначе отдых.
func AutoDecision(b *model.Battle, player int) model.Decision {
	d := model.Decision{Salt: Fixtures.Salts[player]}
	claimed := -1
	for slot := range b.Slots() {
		mon := b.ActiveMon(player, slot)
		if mon < 0 || b.MonState(player, mon).KnockedOut {
			next := firstBench(b, player, claimed)
			if next < 0 {
				d.Moves = append(d.Moves, NoOp())
				continue
			}
			claimed = next
			d.Moves = append(d.Moves, Switch(next))
			continue
		}
		if canUseFirst(b, player, mon) {
			d.Moves = append(d.Moves, Use(0, uint64(slot)))
			continue
		}
		d.Moves = append(d.Moves, NoOp())
	}
	return d
}

func canUseFirst(b *model.Battle, player, mon int) bool {
	m := b.Mon(player, mon)
	if len(m.Moves) == 0 {
		return false
	}
	mv, err := move.Lookup(m.Moves[0])
	if err != nil {
		return false
	}
	stamina := model.Effective(m.Stats.Stamina, b.MonState(player, mon).Delta(model.StatStamina))
	return int64(stamina) >= int64(mv.StaminaCost())
}

func firstBench(b *model.Battle, player, claimed int) int {
	for mon := range b.Teams[player].Mons {
		if mon == claimed || b.IsActive(player, mon) || b.MonState(player, mon).KnockedOut {
			continue
		}
		return mon
	}
	return -1
}

// PlayOut играет битву AutoDecision-ходами до конца или до maxTurns ходов.
// Возвращает число исполненных ходов.
func PlayOut(tb testing.TB, e *engine.Engine, id model.BattleID, maxTurns int) int {
	tb.Helper()
	ctx := context.Background()

	for n := range maxTurns {
		b, err := e.Snapshot(id)
		require.NoError(tb, err)
		if b.IsComplete() {
			return n
		}
		for p := range 2 {
			if !b.Acts(p) {
				continue
			}
			require.NoError(tb, e.SubmitDecision(ctx, id, p, AutoDecision(b, p)))
		}
		require.NoError(tb, e.Execute(ctx, id))
	}
	return maxTurns
}
