// Package statboost combines percentage stat boosts from many sources into
// one consistent set of stat deltas per mon.
//
// Boosts are kept in a ledger stored as the data blob of a StatBoosts effect
// instance on the mon. Every change recomputes the five boostable stats from
// base and pushes only the difference to the engine, so boost math never
// drifts from other stat changes made through Host.UpdateMonState.
package statboost

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/udisondev/monarena/internal/crypto"
	"github.com/udisondev/monarena/internal/model"
	"github.com/udisondev/monarena/internal/wire"
)

// Op selects how a boost percentage is applied.
type Op uint8

const (
	Multiply Op = iota // v = v*(100+p)/100
	Divide             // v = v*(100-p)/100
)

func (o Op) String() string {
	if o == Divide {
		return "divide"
	}
	return "multiply"
}

var (
	ErrNotBoostable   = errors.New("stat is not boostable")
	ErrInvalidPercent = errors.New("invalid boost percent")
	ErrInvalidOp      = errors.New("invalid boost op")
	ErrCorruptLedger  = errors.New("corrupt boost ledger")
)

const (
	MaxPercent = 1000 // cap for a single multiply boost
	MaxStacks  = 64   // repeated adds past this are ignored
)

// Boost is one percentage change requested by a source.
type Boost struct {
	Stat      model.Stat
	Percent   uint32
	Op        Op
	Permanent bool // survives switch-out
}

func (b Boost) validate() error {
	if !b.Stat.IsBoostable() {
		return fmt.Errorf("%w: %s", ErrNotBoostable, b.Stat)
	}
	if b.Op != Multiply && b.Op != Divide {
		return fmt.Errorf("%w: %d", ErrInvalidOp, b.Op)
	}
	if b.Percent == 0 || b.Percent > MaxPercent || (b.Op == Divide && b.Percent > 100) {
		return fmt.Errorf("%w: %d%% %s", ErrInvalidPercent, b.Percent, b.Op)
	}
	return nil
}

// SourceKey identifies the boosts one caller placed on one mon.
// The salt lets a single caller keep several independent sources.
func SourceKey(player, mon int, caller string, salt uint64) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(player))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(mon))
	binary.LittleEndian.PutUint64(buf[16:24], salt)
	return crypto.Uint64(crypto.Keccak256(buf[:16], []byte(caller), buf[16:]))
}

type entry struct {
	Key       uint64
	Stat      model.Stat
	Percent   uint32
	Op        Op
	Permanent bool
	Stacks    uint32
}

func (e entry) matches(key uint64, b Boost) bool {
	return e.Key == key && e.Stat == b.Stat && e.Op == b.Op &&
		e.Percent == b.Percent && e.Permanent == b.Permanent
}

// ledger is the decoded data blob of a StatBoosts instance.
// applied is what the boosts have actually moved each stat's delta by, which
// differs from the boosted value minus base when the zero floor clamped it.
type ledger struct {
	entries []entry
	applied [len(model.BoostableStats)]int32
}

func (l *ledger) add(key uint64, b Boost) {
	for i := range l.entries {
		if l.entries[i].matches(key, b) {
			if l.entries[i].Stacks < MaxStacks {
				l.entries[i].Stacks++
			}
			return
		}
	}
	l.entries = append(l.entries, entry{
		Key:       key,
		Stat:      b.Stat,
		Percent:   b.Percent,
		Op:        b.Op,
		Permanent: b.Permanent,
		Stacks:    1,
	})
}

// drop removes matching entries and returns how many were removed.
func (l *ledger) drop(remove func(entry) bool) int {
	kept := l.entries[:0]
	n := 0
	for _, e := range l.entries {
		if remove(e) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	return n
}

// target returns how far the ledger wants the i-th boostable stat moved
// from base.
func (l *ledger) target(base model.MonStats, i int) int32 {
	stat := model.BoostableStats[i]
	v := uint64(base.Get(stat))
	for _, e := range l.entries {
		if e.Stat != stat {
			continue
		}
		for range e.Stacks {
			if e.Op == Multiply {
				v = v * uint64(100+e.Percent) / 100
			} else {
				v = v * uint64(100-e.Percent) / 100
			}
			v = min(v, math.MaxInt32)
		}
	}
	return int32(int64(v) - int64(base.Get(stat)))
}

func (l *ledger) encode() []byte {
	w := wire.Get()
	defer w.Put()

	w.WriteInt(int32(len(l.entries)))
	for _, e := range l.entries {
		w.WriteLong(e.Key)
		_ = w.WriteByte(byte(e.Stat))
		w.WriteInt(int32(e.Percent))
		_ = w.WriteByte(byte(e.Op))
		w.WriteBool(e.Permanent)
		w.WriteInt(int32(e.Stacks))
	}
	for _, v := range l.applied {
		w.WriteInt(v)
	}
	return w.Copy()
}

// maxEntries bounds decoding of hostile blobs.
const maxEntries = 1024

func decodeLedger(data []byte) (*ledger, error) {
	l := &ledger{}
	if len(data) == 0 {
		return l, nil
	}

	r := wire.NewReader(data)
	n, err := r.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptLedger, err)
	}
	if n < 0 || n > maxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrCorruptLedger, n)
	}

	l.entries = make([]entry, 0, n)
	for range n {
		e, err := readEntry(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptLedger, err)
		}
		l.entries = append(l.entries, e)
	}

	for i := range l.applied {
		if l.applied[i], err = r.ReadInt(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptLedger, err)
		}
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptLedger, r.Remaining())
	}
	return l, nil
}

func readEntry(r *wire.Reader) (entry, error) {
	var e entry
	var err error
	if e.Key, err = r.ReadLong(); err != nil {
		return e, err
	}
	stat, err := r.ReadByte()
	if err != nil {
		return e, err
	}
	pct, err := r.ReadInt()
	if err != nil {
		return e, err
	}
	op, err := r.ReadByte()
	if err != nil {
		return e, err
	}
	if e.Permanent, err = r.ReadBool(); err != nil {
		return e, err
	}
	stacks, err := r.ReadInt()
	if err != nil {
		return e, err
	}

	e.Stat = model.Stat(stat)
	e.Percent = uint32(pct)
	e.Op = Op(op)
	e.Stacks = uint32(stacks)
	if stacks <= 0 || stacks > MaxStacks {
		return e, fmt.Errorf("entry with %d stacks", stacks)
	}
	if err := (Boost{Stat: e.Stat, Percent: e.Percent, Op: e.Op}).validate(); err != nil {
		return e, err
	}
	return e, nil
}
