// Package action validates and resolves a single combat action.
//
// Resolution is split into discrete, ordered steps (see Plan) so a
// presentation driver can run each one at the right moment of its own
// timeline. The core keeps no timer state.
package action

import (
	"errors"
	"fmt"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/event"
	"github.com/udisondev/skirmish/internal/game/targeting"
	"github.com/udisondev/skirmish/internal/model"
)

// Kind is the type of a decision.
type Kind int8

const (
	KindNone   Kind = iota // malformed decision
	KindAttack             // basic attack
	KindSkill
	KindItem
	KindGuard // pass the turn
)

func (k Kind) String() string {
	switch k {
	case KindAttack:
		return "attack"
	case KindSkill:
		return "skill"
	case KindItem:
		return "item"
	case KindGuard:
		return "guard"
	default:
		return "none"
	}
}

// Decision is a fully formed command from a player or the AI.
// Targets may be empty for self-only and multi-target actions, and for
// single-target actions on the AI path.
type Decision struct {
	Kind    Kind
	Skill   *data.SkillDefinition
	Item    *data.ItemDefinition
	Targets []*model.Combatant
}

// Attack returns a basic attack decision.
func Attack(target *model.Combatant) Decision {
	d := Decision{Kind: KindAttack}
	if target != nil {
		d.Targets = []*model.Combatant{target}
	}
	return d
}

// UseSkill returns a skill decision.
func UseSkill(s *data.SkillDefinition, targets ...*model.Combatant) Decision {
	return Decision{Kind: KindSkill, Skill: s, Targets: targets}
}

// UseItem returns an item decision.
func UseItem(it *data.ItemDefinition, targets ...*model.Combatant) Decision {
	return Decision{Kind: KindItem, Item: it, Targets: targets}
}

// Guard returns a pass decision.
func Guard() Decision {
	return Decision{Kind: KindGuard}
}

func (d Decision) String() string {
	switch d.Kind {
	case KindSkill:
		if d.Skill != nil {
			return "skill " + d.Skill.ID
		}
	case KindItem:
		if d.Item != nil {
			return "item " + d.Item.ID
		}
	}
	return d.Kind.String()
}

// Inventory supplies consumables for item actions.
type Inventory interface {
	TryConsume(itemID string, qty int32) bool
	Add(itemID string, qty int32)
}

// Request is everything needed to resolve one action.
type Request struct {
	Actor    *model.Combatant
	Decision Decision

	// Allies and Enemies are relative to Actor.
	Allies  []*model.Combatant
	Enemies []*model.Combatant

	// Inventory of the actor's side; required for item actions.
	Inventory Inventory

	// Avoid steers automatic single-target picks; nil for none.
	Avoid *targeting.AvoidSet
}

// Outcome classifies the result of an action.
type Outcome int8

const (
	OutcomeOK Outcome = iota
	OutcomeInsufficientResource
	OutcomeNoValidTargets
	OutcomeItemUnavailable
	OutcomeInvalidAction
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInsufficientResource:
		return "insufficient_resource"
	case OutcomeNoValidTargets:
		return "no_valid_targets"
	case OutcomeItemUnavailable:
		return "item_unavailable"
	case OutcomeInvalidAction:
		return "invalid_action"
	default:
		return fmt.Sprintf("outcome(%d)", o)
	}
}

// Failure classes. Every one is recovered locally as a no-op: no combatant
// changes and the caller may re-prompt or skip the turn.
var (
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrNoValidTargets       = errors.New("no valid targets")
	ErrItemUnavailable      = errors.New("item unavailable")
	ErrInvalidAction        = errors.New("invalid action")
)

// ErrStepOrder is returned when Plan steps are called out of order.
var ErrStepOrder = errors.New("action step out of order")

// Err returns the sentinel error of a failure outcome, or nil for OK.
func (o Outcome) Err() error {
	switch o {
	case OutcomeInsufficientResource:
		return ErrInsufficientResource
	case OutcomeNoValidTargets:
		return ErrNoValidTargets
	case OutcomeItemUnavailable:
		return ErrItemUnavailable
	case OutcomeInvalidAction:
		return ErrInvalidAction
	}
	return nil
}

// OutcomeOf maps an error back to its outcome. Unknown errors count as
// invalid actions.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrInsufficientResource):
		return OutcomeInsufficientResource
	case errors.Is(err, ErrNoValidTargets):
		return OutcomeNoValidTargets
	case errors.Is(err, ErrItemUnavailable):
		return OutcomeItemUnavailable
	default:
		return OutcomeInvalidAction
	}
}

// Result is the definite classification of a resolved action plus the
// events it produced, in order.
type Result struct {
	Outcome Outcome
	Actor   *model.Combatant
	Kind    Kind
	Targets []*model.Combatant
	Events  []event.Event
}

// OK reports whether the action succeeded.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}
