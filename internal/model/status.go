package model

import (
	"math"
	"weak"

	"github.com/udisondev/skirmish/internal/data"
)

// ActiveStatus is one applied instance of a status definition.
// Instances of the same definition stack independently.
type ActiveStatus struct {
	Definition *data.StatusEffectDefinition

	// Remaining is at least 1 while the instance is on a combatant.
	Remaining int32

	// SkipDecrement exempts a self-inflicted status from the turn-end tick
	// of the turn it was applied in. Cleared by that tick.
	SkipDecrement bool

	inflictor weak.Pointer[Combatant]
}

// NewActiveStatus creates an instance with Remaining = max(1, duration).
func NewActiveStatus(def *data.StatusEffectDefinition, inflictor, target *Combatant) *ActiveStatus {
	s := &ActiveStatus{
		Definition:    def,
		Remaining:     max(1, def.DurationTurns),
		SkipDecrement: inflictor != nil && inflictor == target,
	}
	if inflictor != nil {
		s.inflictor = weak.Make(inflictor)
	}
	return s
}

// Inflictor returns the combatant that applied the status, or nil if there
// was none or it is no longer referenced by the battle.
func (s *ActiveStatus) Inflictor() *Combatant {
	return s.inflictor.Value()
}

// AddStatus appends an instance and re-clamps resources.
func (c *Combatant) AddStatus(s *ActiveStatus) {
	c.statuses = append(c.statuses, s)
	c.reclamp()
}

// RemoveStatusAt removes the instance at index i and re-clamps resources.
func (c *Combatant) RemoveStatusAt(i int) *ActiveStatus {
	if i < 0 || i >= len(c.statuses) {
		return nil
	}
	s := c.statuses[i]
	c.statuses = append(c.statuses[:i], c.statuses[i+1:]...)
	c.reclamp()
	return s
}

// IndexOfStatus returns the index of the oldest instance of the given
// definition, or -1.
func (c *Combatant) IndexOfStatus(defID string) int {
	for i, s := range c.statuses {
		if s.Definition.ID == defID {
			return i
		}
	}
	return -1
}

// Effective returns a stat after status modifiers:
// max(0, round((base + Σflat) * (1 + Σpercent/100))).
func (c *Combatant) Effective(stat data.Stat) int32 {
	base := c.base.Get(stat)
	if !stat.Modifiable() {
		return max(base, 0)
	}

	var flat, pct int64
	for _, s := range c.statuses {
		for _, m := range s.Definition.Modifiers {
			if m.Stat != stat {
				continue
			}
			switch m.Mode {
			case data.PotencyFlat:
				flat += int64(m.Power)
			case data.PotencyPercent:
				pct += int64(m.Power)
			}
		}
	}

	v := Round(float64(int64(base)+flat) * (1 + float64(pct)/100))
	return max(v, 0)
}

// DamageMultipliers returns the summed outgoing and incoming damage
// percent adjustments of the active statuses.
func (c *Combatant) DamageMultipliers() (dealt, taken int32) {
	for _, s := range c.statuses {
		dealt += s.Definition.DamageDealtPercent
		taken += s.Definition.DamageTakenPercent
	}
	return dealt, taken
}

// Round rounds to the nearest integer with ties away from zero and
// saturates to the int32 range.
func Round(x float64) int32 {
	r := math.Round(x)
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	if r < math.MinInt32 {
		return math.MinInt32
	}
	return int32(r)
}

// StatusSnapshot is a value copy of an active status.
type StatusSnapshot struct {
	DefinitionID  string
	Remaining     int32
	SkipDecrement bool
}

// Snapshot is a value copy of a combatant's mutable state.
type Snapshot struct {
	HP       int32
	SP       int32
	Statuses []StatusSnapshot
}

// Snapshot captures HP, SP and the status list.
func (c *Combatant) Snapshot() Snapshot {
	snap := Snapshot{HP: c.currentHP, SP: c.currentSP}
	for _, s := range c.statuses {
		snap.Statuses = append(snap.Statuses, StatusSnapshot{
			DefinitionID:  s.Definition.ID,
			Remaining:     s.Remaining,
			SkipDecrement: s.SkipDecrement,
		})
	}
	return snap
}
