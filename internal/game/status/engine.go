// Package status applies, removes and ticks status effect instances.
package status

import (
	"log/slog"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/combat"
	"github.com/udisondev/skirmish/internal/game/event"
	"github.com/udisondev/skirmish/internal/model"
)

// Engine owns the status lifecycle.
//
// Stacking is additive: every Apply adds an independent instance, even
// for a definition that is already active. Remove takes out the oldest
// matching instance only.
type Engine struct{}

// NewEngine creates a status engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Effective returns the stat after all active modifiers.
func (e *Engine) Effective(c *model.Combatant, stat data.Stat) int32 {
	return c.Effective(stat)
}

// Apply adds a new instance of def to target.
// A status a combatant inflicts on itself skips the decrement of the
// current turn's end tick.
func (e *Engine) Apply(target *model.Combatant, def *data.StatusEffectDefinition, inflictor *model.Combatant) event.Event {
	st := model.NewActiveStatus(def, inflictor, target)
	target.AddStatus(st)

	ev := event.Event{
		Kind:        event.KindStatusApplied,
		TargetID:    target.ID(),
		StatusID:    def.ID,
		Amount:      st.Remaining,
		ResultingHP: target.CurrentHP(),
		ResultingSP: target.CurrentSP(),
		Trigger:     def.Triggers.OnApply,
	}
	if inflictor != nil {
		ev.ActorID = inflictor.ID()
	}

	slog.Debug("status applied",
		"status", def.ID,
		"target", target.ID(),
		"remaining", st.Remaining,
		"skipDecrement", st.SkipDecrement)
	return ev
}

// Remove takes out the oldest instance of def from target.
// Returns false when target has no such instance.
func (e *Engine) Remove(target *model.Combatant, def *data.StatusEffectDefinition) (event.Event, bool) {
	i := target.IndexOfStatus(def.ID)
	if i < 0 {
		return event.Event{}, false
	}
	target.RemoveStatusAt(i)

	slog.Debug("status removed", "status", def.ID, "target", target.ID())
	return event.Event{
		Kind:        event.KindStatusRemoved,
		TargetID:    target.ID(),
		StatusID:    def.ID,
		ResultingHP: target.CurrentHP(),
		ResultingSP: target.CurrentSP(),
		Trigger:     def.Triggers.OnExpire,
	}, true
}

// TickTurnEnd runs the end-of-turn pass over c's statuses, oldest first.
//
// For each instance the DOT (if active) is applied while c is alive, then
// the turn counter is handled: a pending SkipDecrement is consumed instead
// of decrementing, otherwise Remaining drops by one and the instance
// expires at zero. A one-turn DOT therefore still deals its damage on the
// tick that removes it. An expired instance leaves c before the next one
// ticks, so its modifiers no longer count toward later DOT amounts.
func (e *Engine) TickTurnEnd(c *model.Combatant) []event.Event {
	list := c.Statuses()
	if len(list) == 0 {
		return nil
	}

	var events []event.Event
	// pos tracks st's index in c's live list; only expiries shift it.
	pos := 0

	for _, st := range list {
		def := st.Definition

		if def.DOT.Active && c.Alive() {
			events = append(events, e.tickDot(c, st)...)
		}

		if st.SkipDecrement {
			st.SkipDecrement = false
			pos++
			continue
		}

		st.Remaining--
		if st.Remaining > 0 {
			pos++
			continue
		}

		c.RemoveStatusAt(pos)
		slog.Debug("status expired", "status", def.ID, "target", c.ID())
		events = append(events, event.Event{
			Kind:        event.KindStatusExpired,
			TargetID:    c.ID(),
			StatusID:    def.ID,
			ResultingHP: c.CurrentHP(),
			ResultingSP: c.CurrentSP(),
			Trigger:     def.Triggers.OnExpire,
		})
	}
	return events
}

func (e *Engine) tickDot(c *model.Combatant, st *model.ActiveStatus) []event.Event {
	owner := combat.DotOwner(c, st)
	amount := combat.DotAmount(owner, st.Definition.DOT)
	applied := -c.AdjustHP(-int64(amount))

	ev := event.Event{
		Kind:        event.KindDamage,
		TargetID:    c.ID(),
		Amount:      applied,
		ResultingHP: c.CurrentHP(),
		ResultingSP: c.CurrentSP(),
		StatusID:    st.Definition.ID,
		Trigger:     st.Definition.Triggers.OnTick,
	}
	if inf := st.Inflictor(); inf != nil {
		ev.ActorID = inf.ID()
	}

	slog.Debug("dot tick",
		"status", st.Definition.ID,
		"target", c.ID(),
		"owner", owner.ID(),
		"damage", applied,
		"hp", c.CurrentHP())

	if c.Alive() {
		return []event.Event{ev}
	}
	return []event.Event{ev, {
		Kind:     event.KindDefeated,
		ActorID:  ev.ActorID,
		TargetID: c.ID(),
	}}
}
