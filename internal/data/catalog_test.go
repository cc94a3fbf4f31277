package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
statuses:
  - id: poison
    name: Poison
    category: ailment
    duration: 3
    dot: {active: true, source: inflictor, basis: atk, mode: percent, power: 20}
    triggers: {on_apply: Poisoned, on_tick: PoisonTick}
  - id: might
    name: Might
    category: buff
    duration: 2
    modifiers:
      - {stat: atk, mode: flat, power: 10}
      - {stat: atk, mode: percent, power: 50}
skills:
  - id: venom
    name: Venom Strike
    cost: 3
    target: {selection: single, faction: enemies}
    effect: {type: damage, basis: atk, mode: percent, power: 120}
    statuses: [{status: poison, op: inflict}]
  - id: rally
    cost: 2
    target: {selection: self}
    statuses: [{status: might}]
items:
  - id: potion
    target: {selection: single, faction: allies}
    effect: {type: heal, basis: maxhp, mode: percent, power: 50}
equipment:
  - id: sword
    bonus: {atk: 5}
units:
  - id: hero
    name: Hero
    stats: {atk: 20, def: 5, agi: 12, max_hp: 200, max_sp: 20}
    skills: [venom, rally]
    equipment: [sword]
  - id: slime
    stats: {atk: 8, def: 4, agi: 8, max_hp: 80, max_sp: 3}
encounters:
  - id: intro
    party: [hero]
    enemies: [slime, slime]
    party_items: [{item: potion, count: 2}]
`

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	poison := cat.Status("poison")
	require.NotNil(t, poison)
	assert.Equal(t, int32(3), poison.DurationTurns)
	assert.True(t, poison.DOT.Active)
	assert.Equal(t, DotFromInflictor, poison.DOT.Source)
	assert.Equal(t, StatATK, poison.DOT.Basis)
	assert.Equal(t, PotencyPercent, poison.DOT.Mode)
	assert.Equal(t, "PoisonTick", poison.Triggers.OnTick)

	might := cat.Status("might")
	require.Len(t, might.Modifiers, 2)
	assert.Equal(t, StatModifier{Stat: StatATK, Mode: PotencyPercent, Power: 50}, might.Modifiers[1])
	assert.Equal(t, CategoryBuff, might.Category)

	venom := cat.Skill("venom")
	require.NotNil(t, venom)
	assert.Equal(t, TargetSpec{Selection: SelectSingle, Faction: TargetEnemies}, venom.Target)
	require.Len(t, venom.Statuses, 1)
	assert.Same(t, poison, venom.Statuses[0].Status)
	assert.Equal(t, OpInflict, venom.Statuses[0].Op)

	rally := cat.Skill("rally")
	assert.Equal(t, SelectSelf, rally.Target.Selection)
	assert.Equal(t, EffectNone, rally.Effect.Type)

	potion := cat.Item("potion")
	assert.Equal(t, int32(1), potion.Quantity, "quantity defaults to 1")
	assert.Equal(t, TargetAllies, potion.Target.Faction)
	assert.Equal(t, StatMaxHP, potion.Effect.Basis)

	hero := cat.Units["hero"]
	require.NotNil(t, hero)
	assert.Equal(t, int32(25), hero.TotalStats().ATK)
	assert.Len(t, hero.Skills, 2)

	slime := cat.Units["slime"]
	assert.Equal(t, "slime", slime.Name, "name falls back to id")

	intro := cat.Encounter("intro")
	require.NotNil(t, intro)
	assert.Len(t, intro.Party, 1)
	assert.Len(t, intro.Enemies, 2)
	require.Len(t, intro.PartyItems, 1)
	assert.Equal(t, int32(2), intro.PartyItems[0].Count)
}

func TestBuild_ReportsAllErrors(t *testing.T) {
	doc := CatalogDocument{
		Statuses: []StatusDoc{
			{ID: "slow", Modifiers: []ModifierDoc{{Stat: "agi", Power: -5}}},
			{ID: "slow"},
		},
		Skills: []SkillDoc{
			{ID: "bad", Cost: -1, Target: TargetDoc{Selection: "cone"}, Statuses: []StatusOpDoc{{Status: "missing"}}},
		},
		Units: []UnitDoc{{ID: "ghost", Skills: []string{"nope"}}},
	}

	_, err := Build(doc)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "stat agi cannot be modified")
	assert.Contains(t, msg, `status "slow": duplicate id`)
	assert.Contains(t, msg, "negative cost")
	assert.Contains(t, msg, `unknown selection "cone"`)
	assert.Contains(t, msg, `unknown status "missing"`)
	assert.Contains(t, msg, "max_hp must be positive")
	assert.Contains(t, msg, `unknown skill "nope"`)
}

func TestBuild_EncounterRefs(t *testing.T) {
	doc := CatalogDocument{
		Units: []UnitDoc{{ID: "a", Stats: StatsDoc{MaxHP: 10}}},
		Encounters: []EncounterDoc{
			{ID: "e", Party: []string{"a"}, PartyItems: []StackDoc{{Item: "elixir", Count: 1}}},
		},
	}

	_, err := Build(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty enemies")
	assert.Contains(t, err.Error(), `unknown item "elixir"`)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	cat, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Len(t, cat.Encounters, 1)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	s := Stats{ATK: 1, DEF: 2, AGI: 3, MaxHP: 4, MaxSP: 5}
	assert.Equal(t, int32(3), s.Get(StatAGI))
	assert.Equal(t, int32(5), s.Get(StatMaxSP))
	assert.Equal(t, Stats{ATK: 2, DEF: 4, AGI: 6, MaxHP: 8, MaxSP: 10}, s.Plus(s))

	assert.True(t, StatMaxHP.Modifiable())
	assert.False(t, StatAGI.Modifiable())
	assert.Equal(t, "maxsp", StatMaxSP.String())
}
