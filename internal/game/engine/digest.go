package engine

import (
	"github.com/udisondev/monarena/internal/crypto"
	"github.com/udisondev/monarena/internal/model"
	"github.com/udisondev/monarena/internal/wire"
)

// Digest hashes the turn state of b: counters, active mons, every mon's
// deltas and flags, and every effect instance in dispatch order. Lifecycle
// fields (status, winner, timestamps) are left out so a replay reaches the
// same digest regardless of how the battle later ended.
func Digest(b *model.Battle) [32]byte {
	w := wire.Get()
	defer w.Put()

	w.WriteBytes(b.ID[:])
	w.WriteLong(b.Turn)
	w.WriteLong(b.Round)
	w.WriteInt(int32(b.ForcedSwitch))

	for p := range 2 {
		for _, mon := range b.Active[p] {
			w.WriteInt(int32(mon))
		}
		for _, st := range b.States[p] {
			for _, d := range st.Deltas {
				w.WriteInt(d)
			}
			w.WriteBool(st.KnockedOut)
			w.WriteBool(st.SkipTurn)
		}
	}

	for _, t := range b.Effects.Targets() {
		w.WriteInt(int32(t.Player))
		w.WriteInt(int32(t.Mon))
		for _, inst := range b.Effects.List(t) {
			w.WriteLong(inst.ID)
			w.WriteInt(int32(len(inst.Name)))
			w.WriteBytes([]byte(inst.Name))
			w.WriteInt(int32(len(inst.Data)))
			w.WriteBytes(inst.Data)
		}
	}

	return crypto.Keccak256(w.Bytes())
}
