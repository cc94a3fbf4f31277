package testutil

import (
	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/model"
)

// Stats builds a stat block; MaxSP defaults to the cap.
func Stats(atk, def, agi, maxHP int32) data.Stats {
	return data.Stats{ATK: atk, DEF: def, AGI: agi, MaxHP: maxHP, MaxSP: model.SPCap}
}

// Ally creates an ally-side combatant.
func Ally(id string, s data.Stats, opts ...model.Option) *model.Combatant {
	return model.NewCombatant(id, id, model.FactionAlly, s, opts...)
}

// Enemy creates an enemy-side combatant.
func Enemy(id string, s data.Stats, opts ...model.Option) *model.Combatant {
	return model.NewCombatant(id, id, model.FactionEnemy, s, opts...)
}

// Status creates a status definition with the given duration and modifiers.
func Status(id string, duration int32, mods ...data.StatModifier) *data.StatusEffectDefinition {
	return &data.StatusEffectDefinition{
		ID:            id,
		Name:          id,
		DurationTurns: duration,
		Modifiers:     mods,
	}
}

// DotStatus creates a status whose only effect is damage over time.
func DotStatus(id string, duration int32, dot data.DamageOverTime) *data.StatusEffectDefinition {
	dot.Active = true
	return &data.StatusEffectDefinition{
		ID:            id,
		Name:          id,
		DurationTurns: duration,
		DOT:           dot,
	}
}

// Flat is a flat stat modifier.
func Flat(stat data.Stat, power int32) data.StatModifier {
	return data.StatModifier{Stat: stat, Mode: data.PotencyFlat, Power: power}
}

// Percent is a percent stat modifier.
func Percent(stat data.Stat, power int32) data.StatModifier {
	return data.StatModifier{Stat: stat, Mode: data.PotencyPercent, Power: power}
}

// Target is a shorthand for a targeting spec.
func Target(sel data.Selection, faction data.FactionMask) data.TargetSpec {
	return data.TargetSpec{Selection: sel, Faction: faction}
}

// Damage is a damage effect spec.
func Damage(basis data.Stat, mode data.PotencyMode, power int32) data.EffectSpec {
	return data.EffectSpec{Type: data.EffectDamage, Basis: basis, Mode: mode, Power: power}
}

// Heal is a heal effect spec.
func Heal(basis data.Stat, mode data.PotencyMode, power int32) data.EffectSpec {
	return data.EffectSpec{Type: data.EffectHeal, Basis: basis, Mode: mode, Power: power}
}

// Inflict pairs a status with the inflict op.
func Inflict(def *data.StatusEffectDefinition) data.StatusOperation {
	return data.StatusOperation{Status: def, Op: data.OpInflict}
}

// Cure pairs a status with the remove op.
func Cure(def *data.StatusEffectDefinition) data.StatusOperation {
	return data.StatusOperation{Status: def, Op: data.OpRemove}
}

// Skill creates a skill definition.
func Skill(id string, cost int32, target data.TargetSpec, effect data.EffectSpec, ops ...data.StatusOperation) *data.SkillDefinition {
	return &data.SkillDefinition{
		ID:       id,
		Name:     id,
		Cost:     cost,
		Target:   target,
		Effect:   effect,
		Statuses: ops,
	}
}

// Item creates an item definition consuming one unit per use.
func Item(id string, target data.TargetSpec, effect data.EffectSpec, ops ...data.StatusOperation) *data.ItemDefinition {
	return &data.ItemDefinition{
		ID:       id,
		Name:     id,
		Quantity: 1,
		Target:   target,
		Effect:   effect,
		Statuses: ops,
	}
}

// Snapshots captures the mutable state of every combatant, keyed by ID.
func Snapshots(units ...*model.Combatant) map[string]model.Snapshot {
	out := make(map[string]model.Snapshot, len(units))
	for _, u := range units {
		out[u.ID()] = u.Snapshot()
	}
	return out
}
