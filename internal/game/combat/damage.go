// Package combat holds the damage and heal formulas.
//
// Every function is pure given the current stat snapshot of the combatants
// passed in: nothing here writes HP, SP or statuses.
package combat

import (
	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/model"
)

// Round rounds to the nearest integer, ties away from zero.
func Round(x float64) int32 {
	return model.Round(x)
}

// PotencyAmount converts a power value into an amount.
//
//	Flat:    max(0, power)
//	Percent: round(baseStat * power / 100)
func PotencyAmount(power int32, mode data.PotencyMode, baseStat int32) int32 {
	if mode == data.PotencyPercent {
		return Round(float64(baseStat) * float64(power) / 100)
	}
	return max(0, power)
}

// BasicAttackDamage is max(0, ATK - DEF) on effective stats, then the
// damage multipliers of both sides.
func BasicAttackDamage(attacker, defender *model.Combatant) int32 {
	raw := attacker.Effective(data.StatATK) - defender.Effective(data.StatDEF)
	return applyMultipliers(max(0, raw), attacker, defender)
}

// ActionDamage is the damage of a skill or item against one defender.
// The base stat is the attacker's effective value of effect.Basis.
func ActionDamage(attacker, defender *model.Combatant, effect data.EffectSpec) int32 {
	amount := PotencyAmount(effect.Power, effect.Mode, attacker.Effective(effect.Basis))
	raw := amount - defender.Effective(data.StatDEF)
	return applyMultipliers(max(0, raw), attacker, defender)
}

// HealAmount is the HP a heal effect restores before clamping.
// MaxHP and MaxSP bases read the target; other bases read the source.
// DEF is not subtracted. Never negative.
func HealAmount(source, target *model.Combatant, effect data.EffectSpec) int32 {
	basisOwner := source
	if effect.Basis == data.StatMaxHP || effect.Basis == data.StatMaxSP {
		basisOwner = target
	}
	return max(0, PotencyAmount(effect.Power, effect.Mode, basisOwner.Effective(effect.Basis)))
}

// DotOwner returns whose stats drive a DOT tick: the inflictor when the
// definition says so and it is still referenced, otherwise the holder.
func DotOwner(holder *model.Combatant, st *model.ActiveStatus) *model.Combatant {
	if st.Definition.DOT.Source == data.DotFromInflictor {
		if inf := st.Inflictor(); inf != nil {
			return inf
		}
	}
	return holder
}

// DotAmount is the HP a DOT tick removes. It is applied as is: no DEF,
// no damage multipliers. Never negative.
func DotAmount(owner *model.Combatant, dot data.DamageOverTime) int32 {
	return max(0, PotencyAmount(dot.Power, dot.Mode, owner.Effective(dot.Basis)))
}

// applyMultipliers scales damage by (1+dealt%) * (1+taken%).
func applyMultipliers(raw int32, attacker, defender *model.Combatant) int32 {
	dealt, _ := attacker.DamageMultipliers()
	_, taken := defender.DamageMultipliers()
	if dealt == 0 && taken == 0 {
		return raw
	}
	scaled := float64(raw) * (1 + float64(dealt)/100) * (1 + float64(taken)/100)
	return max(0, Round(scaled))
}
