// Package ai decides actions for computer-controlled combatants.
package ai

import (
	"log/slog"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/targeting"
	"github.com/udisondev/skirmish/internal/model"
)

// Policy is the enemy decision rule: use the first skill in list order the
// unit can afford, otherwise attack. Only target picks are random.
//
// With WithConsumables the policy may reach for a healing item first; see
// DecideItem.
type Policy struct {
	resolver *targeting.Resolver

	items         []*data.ItemDefinition
	itemHPPercent int32
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithConsumables lets the policy use healing items from the side's stock
// once a living ally is at or below hpPercent of its max HP. Items are
// tried in the given order. hpPercent <= 0 disables item use.
func WithConsumables(hpPercent int32, items ...*data.ItemDefinition) PolicyOption {
	return func(p *Policy) {
		p.itemHPPercent = hpPercent
		p.items = items
	}
}

// NewPolicy creates a policy picking targets through resolver.
// A nil resolver uses an unseeded one.
func NewPolicy(resolver *targeting.Resolver, opts ...PolicyOption) *Policy {
	if resolver == nil {
		resolver = targeting.NewResolver(nil)
	}
	p := &Policy{resolver: resolver}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DecideItem returns an item intent when the most wounded living ally is at
// or below the consumable threshold and stock can supply a healing item.
// Single-target items are aimed at that ally; self-only items are used only
// when self is that ally.
func (p *Policy) DecideItem(self *model.Combatant, allies []*model.Combatant, stock *model.Inventory) (Intent, bool) {
	if p.itemHPPercent <= 0 || len(p.items) == 0 || stock == nil {
		return Intent{}, false
	}
	wounded := mostWounded(allies, p.itemHPPercent)
	if wounded == nil {
		return Intent{}, false
	}

	for _, it := range p.items {
		if it == nil || it.Effect.Type != data.EffectHeal {
			continue
		}
		if stock.Count(it.ID) < max(it.Quantity, 1) {
			continue
		}

		in := Intent{
			Type:      IntentItem,
			Item:      it,
			Faction:   it.Target.Faction,
			Selection: it.Target.Selection,
		}
		switch it.Target.Selection {
		case data.SelectSelf:
			if wounded != self {
				continue
			}
		case data.SelectSingle:
			if it.Target.Faction != data.TargetAllies {
				continue
			}
			in.Targets = []*model.Combatant{wounded}
		default:
			if it.Target.Faction != data.TargetAllies {
				continue
			}
		}

		if IsDebugEnabled() {
			slog.Debug("AI chose item",
				"unit", self.String(),
				"item", it.ID,
				"wounded", wounded.String(),
				"hp", wounded.CurrentHP(),
				"maxHP", wounded.MaxHP())
		}
		return in, true
	}
	return Intent{}, false
}

// mostWounded returns the living unit with the lowest HP ratio, provided it
// is at or below hpPercent. Ties go to the earlier unit.
func mostWounded(units []*model.Combatant, hpPercent int32) *model.Combatant {
	var pick *model.Combatant
	for _, u := range units {
		if u == nil || !u.Alive() {
			continue
		}
		if int64(u.CurrentHP())*100 > int64(hpPercent)*int64(u.MaxHP()) {
			continue
		}
		if pick == nil || int64(u.CurrentHP())*int64(pick.MaxHP()) < int64(pick.CurrentHP())*int64(u.MaxHP()) {
			pick = u
		}
	}
	return pick
}

// Decide returns the intent for self. Targets are left empty.
func (p *Policy) Decide(self *model.Combatant) Intent {
	for _, s := range self.Skills() {
		if s == nil || s.Cost > self.CurrentSP() {
			continue
		}
		in := Intent{
			Type:      IntentSkill,
			Skill:     s,
			Faction:   s.Target.Faction,
			Selection: s.Target.Selection,
		}
		if IsDebugEnabled() {
			slog.Debug("AI chose skill",
				"unit", self.String(),
				"skill", s.ID,
				"cost", s.Cost,
				"sp", self.CurrentSP())
		}
		return in
	}

	if IsDebugEnabled() {
		slog.Debug("AI chose attack", "unit", self.String(), "sp", self.CurrentSP())
	}
	return Intent{
		Type:      IntentAttack,
		Faction:   data.TargetEnemies,
		Selection: data.SelectSingle,
	}
}

// PickTargets resolves the intent's targets on the AI path: single picks
// steer clear of units in avoid when possible.
func (p *Policy) PickTargets(in Intent, self *model.Combatant, allies, enemies []*model.Combatant, avoid *targeting.AvoidSet) []*model.Combatant {
	return p.resolver.Resolve(in.Spec(), self, allies, enemies, avoid)
}
