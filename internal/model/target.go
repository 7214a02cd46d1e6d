package model

import "fmt"

// FieldMon marks a Target as a side's battlefield rather than a mon.
const FieldMon = -1

// Target is where an effect instance is attached: a mon on a team, or one
// of the two battlefield sentinels (one per side) for field effects.
type Target struct {
	Player int
	Mon    int
}

// FieldTarget returns the battlefield sentinel for player's side.
func FieldTarget(player int) Target {
	return Target{Player: player, Mon: FieldMon}
}

// MonTarget returns the target for a mon on player's team.
func MonTarget(player, mon int) Target {
	return Target{Player: player, Mon: mon}
}

// IsField reports whether t is a battlefield sentinel.
func (t Target) IsField() bool {
	return t.Mon == FieldMon
}

func (t Target) String() string {
	if t.IsField() {
		return fmt.Sprintf("p%d/field", t.Player)
	}
	return fmt.Sprintf("p%d/mon%d", t.Player, t.Mon)
}
