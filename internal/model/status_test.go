package model

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skirmish/internal/data"
)

func modStatus(id string, mods ...data.StatModifier) *data.StatusEffectDefinition {
	return &data.StatusEffectDefinition{ID: id, DurationTurns: 3, Modifiers: mods}
}

func TestEffective_FlatThenPercent(t *testing.T) {
	c := newTestCombatant()
	c.AddStatus(NewActiveStatus(modStatus("flat", data.StatModifier{Stat: data.StatATK, Mode: data.PotencyFlat, Power: 10}), nil, c))
	c.AddStatus(NewActiveStatus(modStatus("pct", data.StatModifier{Stat: data.StatATK, Mode: data.PotencyPercent, Power: 50}), nil, c))

	// round((20+10) * 1.5)
	assert.Equal(t, int32(45), c.Effective(data.StatATK))
	assert.Equal(t, int32(5), c.Effective(data.StatDEF), "other stats untouched")
}

func TestEffective_FloorsAtZero(t *testing.T) {
	c := newTestCombatant()
	c.AddStatus(NewActiveStatus(modStatus("break", data.StatModifier{Stat: data.StatDEF, Mode: data.PotencyFlat, Power: -50}), nil, c))

	assert.Equal(t, int32(0), c.Effective(data.StatDEF))
}

func TestEffective_Rounding(t *testing.T) {
	c := NewCombatant("r", "R", FactionAlly, data.Stats{ATK: 5, MaxHP: 10})
	c.AddStatus(NewActiveStatus(modStatus("half", data.StatModifier{Stat: data.StatATK, Mode: data.PotencyPercent, Power: -50}), nil, c))

	// 5 * 0.5 = 2.5 rounds away from zero
	assert.Equal(t, int32(3), c.Effective(data.StatATK))
}

func TestRound_TiesAwayFromZero(t *testing.T) {
	assert.Equal(t, int32(3), Round(2.5))
	assert.Equal(t, int32(-3), Round(-2.5))
	assert.Equal(t, int32(2), Round(2.49))
	assert.Equal(t, int32(0), Round(0.4))
	assert.Equal(t, int32(2147483647), Round(1e12))
}

func TestStatusChange_ReclampsHP(t *testing.T) {
	c := newTestCombatant()
	c.AddStatus(NewActiveStatus(modStatus("vigor", data.StatModifier{Stat: data.StatMaxHP, Mode: data.PotencyFlat, Power: 50}), nil, c))

	assert.Equal(t, int32(150), c.MaxHP())
	c.SetHP(150)

	removed := c.RemoveStatusAt(0)
	require.NotNil(t, removed)
	assert.Equal(t, int32(100), c.MaxHP())
	assert.Equal(t, int32(100), c.CurrentHP(), "HP clamped to new max")
	assert.Nil(t, c.RemoveStatusAt(5))
}

func TestNewActiveStatus(t *testing.T) {
	self := newTestCombatant()
	other := NewCombatant("u2", "Other", FactionEnemy, data.Stats{MaxHP: 10})
	def := &data.StatusEffectDefinition{ID: "x", DurationTurns: 0}

	own := NewActiveStatus(def, self, self)
	assert.Equal(t, int32(1), own.Remaining, "duration floors at 1")
	assert.True(t, own.SkipDecrement)
	assert.Same(t, self, own.Inflictor())

	foreign := NewActiveStatus(def, other, self)
	assert.False(t, foreign.SkipDecrement)
	assert.Same(t, other, foreign.Inflictor())

	none := NewActiveStatus(def, nil, self)
	assert.False(t, none.SkipDecrement)
	assert.Nil(t, none.Inflictor())

	runtime.KeepAlive(other)
}

func TestIndexOfStatus_Oldest(t *testing.T) {
	c := newTestCombatant()
	poison := &data.StatusEffectDefinition{ID: "poison", DurationTurns: 2}
	c.AddStatus(NewActiveStatus(poison, nil, c))
	c.AddStatus(NewActiveStatus(modStatus("other"), nil, c))
	c.AddStatus(NewActiveStatus(poison, nil, c))

	assert.Equal(t, 0, c.IndexOfStatus("poison"))
	assert.Equal(t, 1, c.IndexOfStatus("other"))
	assert.Equal(t, -1, c.IndexOfStatus("none"))
	assert.Equal(t, 3, c.StatusCount())
}

func TestDamageMultipliers(t *testing.T) {
	c := newTestCombatant()
	c.AddStatus(NewActiveStatus(&data.StatusEffectDefinition{ID: "rage", DamageDealtPercent: 20, DamageTakenPercent: 10}, nil, c))
	c.AddStatus(NewActiveStatus(&data.StatusEffectDefinition{ID: "guard", DamageTakenPercent: -30}, nil, c))

	dealt, taken := c.DamageMultipliers()
	assert.Equal(t, int32(20), dealt)
	assert.Equal(t, int32(-20), taken)
}

func TestSnapshot(t *testing.T) {
	c := newTestCombatant(WithStartingSP(4))
	c.AddStatus(NewActiveStatus(modStatus("a"), c, c))

	snap := c.Snapshot()
	assert.Equal(t, Snapshot{
		HP: 100,
		SP: 4,
		Statuses: []StatusSnapshot{
			{DefinitionID: "a", Remaining: 3, SkipDecrement: true},
		},
	}, snap)
}
