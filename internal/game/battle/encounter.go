package battle

import (
	"errors"
	"fmt"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/model"
)

// FromEncounter builds fresh combatants and inventories for enc and
// creates a session. Combatant IDs are "<side><n>-<template>", unique
// within the battle even when a template repeats.
func FromEncounter(enc *data.Encounter, playerCtl, enemyCtl Controller, opts ...Option) (*Session, error) {
	if enc == nil {
		return nil, errors.New("creating battle: nil encounter")
	}

	players := Spawn(enc.Party, model.FactionAlly)
	enemies := Spawn(enc.Enemies, model.FactionEnemy)

	opts = append([]Option{
		WithInventory(model.FactionAlly, Stock(enc.PartyItems)),
		WithInventory(model.FactionEnemy, Stock(enc.EnemyItems)),
	}, opts...)

	s, err := New(players, enemies, playerCtl, enemyCtl, opts...)
	if err != nil {
		return nil, fmt.Errorf("encounter %s: %w", enc.ID, err)
	}
	return s, nil
}

// Spawn creates combatants from templates. Equipment bonuses are folded
// into base stats.
func Spawn(templates []*data.UnitTemplate, f model.Faction) []*model.Combatant {
	prefix := "p"
	if f == model.FactionEnemy {
		prefix = "e"
	}

	out := make([]*model.Combatant, 0, len(templates))
	for i, tpl := range templates {
		if tpl == nil {
			continue
		}
		id := fmt.Sprintf("%s%d-%s", prefix, i+1, tpl.ID)
		out = append(out, model.NewCombatant(id, tpl.Name, f, tpl.TotalStats(),
			model.WithSkills(tpl.Skills...),
			model.WithStartingSP(tpl.StartingSP)))
	}
	return out
}

// Stock creates an inventory holding stacks.
func Stock(stacks []data.ItemStack) *model.Inventory {
	inv := model.NewInventory()
	for _, st := range stacks {
		if st.Item != nil {
			inv.Add(st.Item.ID, st.Count)
		}
	}
	return inv
}
