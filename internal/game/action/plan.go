package action

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/combat"
	"github.com/udisondev/skirmish/internal/game/event"
	"github.com/udisondev/skirmish/internal/game/status"
	"github.com/udisondev/skirmish/internal/model"
)

type stage int8

const (
	stagePrepared stage = iota
	stagePaid
	stageApplied
	stageStatused
	stageCommitted
)

// Plan is a validated action with its targets resolved. Its steps must be
// called exactly once each, in order:
//
//	PayCost -> ApplyEffect -> ApplyStatusOps -> Commit
//
// Any other order returns ErrStepOrder. Every step returns the events it
// produced; Commit returns the full list.
type Plan struct {
	statuses *status.Engine

	actor     *model.Combatant
	kind      Kind
	basic     bool
	skill     *data.SkillDefinition
	item      *data.ItemDefinition
	quantity  int32
	inventory Inventory
	cost      int32
	target    data.TargetSpec
	effect    data.EffectSpec
	statusOps []data.StatusOperation

	targets []*model.Combatant
	stage   stage
	events  []event.Event
}

// Actor returns the acting combatant.
func (p *Plan) Actor() *model.Combatant { return p.actor }

// Kind returns the decision kind.
func (p *Plan) Kind() Kind { return p.kind }

// Targets returns the resolved targets.
func (p *Plan) Targets() []*model.Combatant { return slices.Clone(p.targets) }

// Effect returns the effect the plan applies.
func (p *Plan) Effect() data.EffectSpec { return p.effect }

// PayCost deducts SP for skills or consumes the item. A failure here
// leaves every combatant and the inventory untouched and ends the plan.
func (p *Plan) PayCost() ([]event.Event, error) {
	if err := p.advance(stagePrepared, stagePaid); err != nil {
		return nil, err
	}
	mark := len(p.events)

	switch {
	case p.skill != nil && p.cost > 0:
		if !p.actor.SpendSP(p.cost) {
			p.stage = stageCommitted
			return nil, fmt.Errorf("%w: %s needs %d SP, has %d",
				ErrInsufficientResource, p.skill.ID, p.cost, p.actor.CurrentSP())
		}
		p.push(event.Event{
			Kind:        event.KindSPSpent,
			ActorID:     p.actor.ID(),
			TargetID:    p.actor.ID(),
			Amount:      p.cost,
			ResultingHP: p.actor.CurrentHP(),
			ResultingSP: p.actor.CurrentSP(),
		})

	case p.item != nil:
		if !p.inventory.TryConsume(p.item.ID, p.quantity) {
			p.stage = stageCommitted
			return nil, fmt.Errorf("%w: %s x%d", ErrItemUnavailable, p.item.ID, p.quantity)
		}
		p.push(event.Event{
			Kind:    event.KindItemConsumed,
			ActorID: p.actor.ID(),
			ItemID:  p.item.ID,
			Amount:  p.quantity,
		})
	}

	return p.since(mark), nil
}

// ApplyEffect applies damage or healing to each target in order. A target
// that is already defeated when its turn in the list comes is skipped.
func (p *Plan) ApplyEffect() ([]event.Event, error) {
	if err := p.advance(stagePaid, stageApplied); err != nil {
		return nil, err
	}
	mark := len(p.events)

	for _, t := range p.targets {
		if !t.Alive() {
			continue
		}
		switch {
		case p.basic:
			p.damage(t, combat.BasicAttackDamage(p.actor, t))
		case p.effect.Type == data.EffectDamage:
			p.damage(t, combat.ActionDamage(p.actor, t, p.effect))
		case p.effect.Type == data.EffectHeal:
			p.heal(t, combat.HealAmount(p.actor, t, p.effect))
		}
	}

	return p.since(mark), nil
}

// ApplyStatusOps runs the status operations, each over every resolved
// target, including ones defeated by this action's effect. Inflict adds a
// new instance with the actor as inflictor; Remove takes out the oldest
// instance and is a no-op when there is none.
func (p *Plan) ApplyStatusOps() ([]event.Event, error) {
	if err := p.advance(stageApplied, stageStatused); err != nil {
		return nil, err
	}
	mark := len(p.events)

	for _, op := range p.statusOps {
		if op.Status == nil {
			continue
		}
		for _, t := range p.targets {
			switch op.Op {
			case data.OpInflict:
				p.push(p.statuses.Apply(t, op.Status, p.actor))
			case data.OpRemove:
				if ev, ok := p.statuses.Remove(t, op.Status); ok {
					ev.ActorID = p.actor.ID()
					p.push(ev)
				}
			}
		}
	}

	return p.since(mark), nil
}

// Commit finalizes the action. A basic attack grants the attacker SP here.
func (p *Plan) Commit() (Result, error) {
	if err := p.advance(stageStatused, stageCommitted); err != nil {
		return Result{}, err
	}

	switch {
	case p.basic:
		if gained := p.actor.GainSP(basicAttackSP); gained > 0 {
			p.push(event.Event{
				Kind:        event.KindSPGained,
				ActorID:     p.actor.ID(),
				TargetID:    p.actor.ID(),
				Amount:      gained,
				ResultingHP: p.actor.CurrentHP(),
				ResultingSP: p.actor.CurrentSP(),
			})
		}
	case p.kind == KindGuard:
		p.push(event.Event{
			Kind:        event.KindGuard,
			ActorID:     p.actor.ID(),
			TargetID:    p.actor.ID(),
			ResultingHP: p.actor.CurrentHP(),
			ResultingSP: p.actor.CurrentSP(),
		})
	}

	slog.Debug("action committed",
		"actor", p.actor.ID(),
		"kind", p.kind.String(),
		"targets", len(p.targets),
		"events", len(p.events))

	return Result{
		Outcome: OutcomeOK,
		Actor:   p.actor,
		Kind:    p.kind,
		Targets: slices.Clone(p.targets),
		Events:  slices.Clone(p.events),
	}, nil
}

func (p *Plan) damage(t *model.Combatant, amount int32) {
	applied := -t.AdjustHP(-int64(amount))
	p.push(event.Event{
		Kind:        event.KindDamage,
		ActorID:     p.actor.ID(),
		TargetID:    t.ID(),
		Amount:      applied,
		ResultingHP: t.CurrentHP(),
		ResultingSP: t.CurrentSP(),
	})
	if !t.Alive() {
		p.push(event.Event{Kind: event.KindDefeated, ActorID: p.actor.ID(), TargetID: t.ID()})
	}
}

func (p *Plan) heal(t *model.Combatant, amount int32) {
	applied := t.AdjustHP(int64(amount))
	p.push(event.Event{
		Kind:        event.KindHeal,
		ActorID:     p.actor.ID(),
		TargetID:    t.ID(),
		Amount:      applied,
		ResultingHP: t.CurrentHP(),
		ResultingSP: t.CurrentSP(),
	})
}

func (p *Plan) advance(from, to stage) error {
	if p.stage != from {
		return fmt.Errorf("%w: at stage %d, want %d", ErrStepOrder, p.stage, from)
	}
	p.stage = to
	return nil
}

func (p *Plan) push(ev event.Event) {
	p.events = append(p.events, ev)
}

func (p *Plan) since(mark int) []event.Event {
	return slices.Clone(p.events[mark:])
}
