package ai

import (
	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/action"
	"github.com/udisondev/skirmish/internal/model"
)

// IntentType is what the AI plans to do.
type IntentType int8

const (
	// IntentAttack - basic attack on one opponent
	IntentAttack IntentType = iota
	// IntentSkill - use a known skill
	IntentSkill
	// IntentItem - use a consumable from the side's inventory
	IntentItem
)

// String returns human-readable intent name
func (t IntentType) String() string {
	switch t {
	case IntentAttack:
		return "ATTACK"
	case IntentSkill:
		return "SKILL"
	case IntentItem:
		return "ITEM"
	default:
		return "UNKNOWN"
	}
}

// Intent is a planned action whose targets may not be known yet.
type Intent struct {
	Type      IntentType
	Skill     *data.SkillDefinition
	Item      *data.ItemDefinition
	Faction   data.FactionMask
	Selection data.Selection
	Targets   []*model.Combatant
}

// NeedsTarget reports whether targets still have to be picked.
func (in Intent) NeedsTarget() bool {
	return len(in.Targets) == 0
}

// Spec returns the targeting spec of the intent.
func (in Intent) Spec() data.TargetSpec {
	return data.TargetSpec{Selection: in.Selection, Faction: in.Faction}
}

// Decision converts the intent into an action decision.
func (in Intent) Decision() action.Decision {
	switch in.Type {
	case IntentSkill:
		return action.UseSkill(in.Skill, in.Targets...)
	case IntentItem:
		return action.UseItem(in.Item, in.Targets...)
	default:
		return action.Decision{Kind: action.KindAttack, Targets: in.Targets}
	}
}
