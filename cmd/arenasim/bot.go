package main

import (
	"encoding/binary"

	"github.com/udisondev/monarena/internal/crypto"
	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/model"
)

// bot picks uniformly among legal slot moves, preferring attacks over
// resting and switching so battles end in reasonable time.
type bot struct {
	validator engine.Validator
	seed      uint64
	draws     uint64
}

func newBot(v engine.Validator, seed uint64) *bot {
	return &bot{validator: v, seed: seed}
}

func (b *bot) next() uint64 {
	b.draws++
	return crypto.Derive(b.seed, b.draws)
}

// Decide returns a legal decision for player with a fresh salt.
func (b *bot) Decide(battle *model.Battle, player int) model.Decision {
	d := model.Decision{Salt: b.salt(battle.Turn)}
	claimed := -1
	for slot := range battle.Slots() {
		m := b.pick(battle, player, slot, claimed)
		if m.IsSwitch() {
			claimed = int(m.ExtraData)
		}
		d.Moves = append(d.Moves, m)
	}
	return d
}

func (b *bot) pick(battle *model.Battle, player, slot, claimed int) model.SlotMove {
	var attacks, others []model.SlotMove
	consider := func(m model.SlotMove, attack bool) {
		if !b.validator.IsLegal(battle, player, slot, m, claimed) {
			return
		}
		if attack {
			attacks = append(attacks, m)
		} else {
			others = append(others, m)
		}
	}

	if mon := battle.ActiveMon(player, slot); mon >= 0 {
		for i := range battle.Mon(player, mon).Moves {
			for target := range battle.Slots() {
				consider(model.SlotMove{MoveIndex: uint8(i), ExtraData: uint64(target)}, true)
			}
		}
	}
	for mon := range battle.Teams[player].Mons {
		consider(model.SlotMove{MoveIndex: model.SwitchMoveIndex, ExtraData: uint64(mon)}, false)
	}
	consider(model.SlotMove{MoveIndex: model.NoOpMoveIndex}, false)

	// Attack four times out of five when any attack is legal.
	if len(attacks) > 0 && (len(others) == 0 || b.next()%5 != 0) {
		return attacks[b.next()%uint64(len(attacks))]
	}
	if len(others) == 0 {
		return model.SlotMove{MoveIndex: model.NoOpMoveIndex}
	}
	return others[b.next()%uint64(len(others))]
}

func (b *bot) salt(turn uint64) [32]byte {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], b.seed)
	binary.LittleEndian.PutUint64(buf[8:], turn)
	return crypto.Keccak256(buf[:])
}
