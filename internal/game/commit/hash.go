// Package commit implements the commit-reveal protocol two mutually
// distrusting players use to submit simultaneous moves.
//
// Each two-player turn has one committer, alternating by round. The
// committer publishes Hash(move, extra, salt) first; the other player then
// reveals in the clear, and finally the committer reveals the preimage.
// Neither player can react to the other's choice: the committer is bound by
// its hash and the revealer moved before the commitment was opened.
package commit

import (
	"github.com/udisondev/monarena/internal/crypto"
	"github.com/udisondev/monarena/internal/model"
	"github.com/udisondev/monarena/internal/wire"
)

// Hash returns the commitment for a singles move:
// keccak256(moveIndex u8 | extraData u64 LE | salt).
func Hash(moveIndex uint8, extraData uint64, salt [32]byte) [32]byte {
	w := wire.Get()
	defer w.Put()
	writeMove(w, model.SlotMove{MoveIndex: moveIndex, ExtraData: extraData})
	w.WriteBytes(salt[:])
	return crypto.Keccak256(w.Bytes())
}

// HashDoubles returns the commitment for both slots of a doubles turn:
// keccak256(move0 | move1 | salt).
func HashDoubles(moves [2]model.SlotMove, salt [32]byte) [32]byte {
	w := wire.Get()
	defer w.Put()
	writeMove(w, moves[0])
	writeMove(w, moves[1])
	w.WriteBytes(salt[:])
	return crypto.Keccak256(w.Bytes())
}

func writeMove(w *wire.Writer, m model.SlotMove) {
	_ = w.WriteByte(m.MoveIndex)
	w.WriteLong(m.ExtraData)
}

// hashDecision hashes d in the shape its format commits to.
func hashDecision(d model.Decision) [32]byte {
	if len(d.Moves) == 2 {
		return HashDoubles([2]model.SlotMove{d.Moves[0], d.Moves[1]}, d.Salt)
	}
	var m model.SlotMove
	if len(d.Moves) > 0 {
		m = d.Moves[0]
	}
	return Hash(m.MoveIndex, m.ExtraData, d.Salt)
}
