package model

import (
	"math"
	"slices"

	"github.com/udisondev/skirmish/internal/data"
)

// SPCap is the absolute skill point ceiling; maxSP never exceeds it.
const SPCap = 9

// Faction is the absolute side a combatant fights on.
type Faction int8

const (
	FactionAlly Faction = iota
	FactionEnemy
)

// Opposing returns the other side.
func (f Faction) Opposing() Faction {
	if f == FactionAlly {
		return FactionEnemy
	}
	return FactionAlly
}

func (f Faction) String() string {
	if f == FactionEnemy {
		return "enemy"
	}
	return "ally"
}

// Combatant is a battle participant with resources and active statuses.
//
// Not safe for concurrent use: a combatant is owned by exactly one battle
// session and every mutation happens on that session's goroutine.
type Combatant struct {
	id      string
	name    string
	faction Faction
	base    data.Stats
	skills  []*data.SkillDefinition

	currentHP int32
	currentSP int32

	statuses []*ActiveStatus
}

// Option customizes a combatant at construction.
type Option func(*Combatant)

// WithSkills sets the skill list in priority order.
func WithSkills(skills ...*data.SkillDefinition) Option {
	return func(c *Combatant) { c.skills = append(c.skills, skills...) }
}

// WithStartingSP sets the initial SP (clamped to maxSP).
func WithStartingSP(sp int32) Option {
	return func(c *Combatant) { c.currentSP = sp }
}

// NewCombatant creates a combatant at full HP.
// MaxHP is at least 1; maxSP is clamped into [0, SPCap]. SP starts at 0
// unless WithStartingSP is given.
func NewCombatant(id, name string, faction Faction, base data.Stats, opts ...Option) *Combatant {
	base.MaxHP = max(base.MaxHP, 1)
	base.MaxSP = min(max(base.MaxSP, 0), SPCap)

	c := &Combatant{
		id:      id,
		name:    name,
		faction: faction,
		base:    base,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.currentHP = c.MaxHP()
	c.currentSP = clamp32(c.currentSP, 0, c.MaxSP())
	return c
}

func (c *Combatant) ID() string { return c.id }
func (c *Combatant) Name() string { return c.name }
func (c *Combatant) Faction() Faction { return c.faction }
func (c *Combatant) Base() data.Stats { return c.base }
func (c *Combatant) Skills() []*data.SkillDefinition { return c.skills }
func (c *Combatant) CurrentHP() int32 { return c.currentHP }
func (c *Combatant) CurrentSP() int32 { return c.currentSP }
func (c *Combatant) Alive() bool { return c.currentHP > 0 }
func (c *Combatant) String() string { return c.name + "#" + c.id }
func (c *Combatant) Statuses() []*ActiveStatus { return slices.Clone(c.statuses) }
func (c *Combatant) StatusCount() int { return len(c.statuses) }
func (c *Combatant) IsOn(f Faction) bool { return c.faction == f }
func (c *Combatant) HasSkill(s *data.SkillDefinition) bool { return slices.Contains(c.skills, s) }

// MaxHP returns effective maximum HP (base plus modifiers, at least 1).
func (c *Combatant) MaxHP() int32 {
	return max(c.Effective(data.StatMaxHP), 1)
}

// MaxSP returns effective maximum SP, capped at SPCap.
func (c *Combatant) MaxSP() int32 {
	return min(c.Effective(data.StatMaxSP), SPCap)
}

// SetHP writes HP clamped to [0, MaxHP].
// Returns the HP actually written.
func (c *Combatant) SetHP(hp int32) int32 {
	c.currentHP = clamp32(hp, 0, c.MaxHP())
	return c.currentHP
}

// AdjustHP adds delta to HP with saturation and clamping.
// Returns the signed change that was actually applied.
func (c *Combatant) AdjustHP(delta int64) int32 {
	before := c.currentHP
	c.currentHP = clamp32(saturate(int64(before)+delta), 0, c.MaxHP())
	return c.currentHP - before
}

// SetSP writes SP clamped to [0, MaxSP].
func (c *Combatant) SetSP(sp int32) int32 {
	c.currentSP = clamp32(sp, 0, c.MaxSP())
	return c.currentSP
}

// AdjustSP adds delta to SP with saturation and clamping.
// Returns the signed change that was actually applied.
func (c *Combatant) AdjustSP(delta int64) int32 {
	before := c.currentSP
	c.currentSP = clamp32(saturate(int64(before)+delta), 0, c.MaxSP())
	return c.currentSP - before
}

// GainSP adds a non-negative amount, silently stopping at MaxSP.
func (c *Combatant) GainSP(amount int32) int32 {
	if amount <= 0 {
		return 0
	}
	return c.AdjustSP(int64(amount))
}

// SpendSP deducts amount if affordable. Returns false and changes nothing
// when currentSP < amount.
func (c *Combatant) SpendSP(amount int32) bool {
	if amount <= 0 {
		return true
	}
	if c.currentSP < amount {
		return false
	}
	c.currentSP -= amount
	return true
}

// reclamp keeps current resources within effective maxima after the
// status list changes.
func (c *Combatant) reclamp() {
	c.currentHP = clamp32(c.currentHP, 0, c.MaxHP())
	c.currentSP = clamp32(c.currentSP, 0, c.MaxSP())
}

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func saturate(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
