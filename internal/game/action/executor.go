package action

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/status"
	"github.com/udisondev/skirmish/internal/game/targeting"
	"github.com/udisondev/skirmish/internal/model"
)

// basicAttackSP is the SP a successful basic attack grants the attacker.
const basicAttackSP = 1

// Executor validates decisions and builds Plans.
type Executor struct {
	resolver *targeting.Resolver
	statuses *status.Engine
}

// NewExecutor creates an executor. Nil arguments get defaults.
func NewExecutor(resolver *targeting.Resolver, statuses *status.Engine) *Executor {
	if resolver == nil {
		resolver = targeting.NewResolver(nil)
	}
	if statuses == nil {
		statuses = status.NewEngine()
	}
	return &Executor{resolver: resolver, statuses: statuses}
}

// Statuses returns the status engine actions apply through.
func (e *Executor) Statuses() *status.Engine {
	return e.statuses
}

// Prepare runs Validate and Resolve Targets. Nothing is mutated: on error
// the action is a no-op and the error wraps one of ErrInvalidAction,
// ErrInsufficientResource, ErrNoValidTargets or ErrItemUnavailable.
func (e *Executor) Prepare(req Request) (*Plan, error) {
	p, err := e.validate(req)
	if err != nil {
		return nil, err
	}
	if p.kind == KindGuard {
		return p, nil
	}

	targets, err := e.resolveTargets(req, p.target)
	if err != nil {
		return nil, err
	}
	p.targets = targets
	return p, nil
}

// Execute runs every step of an action in order. Failures are returned as
// a Result with a non-OK outcome together with the matching error.
func (e *Executor) Execute(req Request) (Result, error) {
	p, err := e.Prepare(req)
	if err != nil {
		slog.Debug("action rejected",
			"actor", actorID(req.Actor),
			"decision", req.Decision.String(),
			"error", err)
		return Result{Outcome: OutcomeOf(err), Actor: req.Actor, Kind: req.Decision.Kind}, err
	}

	if _, err := p.PayCost(); err != nil {
		slog.Debug("action cost not paid",
			"actor", actorID(req.Actor),
			"decision", req.Decision.String(),
			"error", err)
		return Result{Outcome: OutcomeOf(err), Actor: req.Actor, Kind: req.Decision.Kind}, err
	}
	if _, err := p.ApplyEffect(); err != nil {
		return Result{}, err
	}
	if _, err := p.ApplyStatusOps(); err != nil {
		return Result{}, err
	}
	return p.Commit()
}

// validate checks the decision against the actor's current state.
func (e *Executor) validate(req Request) (*Plan, error) {
	actor := req.Actor
	d := req.Decision

	// 1. Actor exists and can act
	if actor == nil {
		return nil, fmt.Errorf("%w: no actor", ErrInvalidAction)
	}
	if !actor.Alive() {
		return nil, fmt.Errorf("%w: %s is defeated", ErrInvalidAction, actor)
	}

	p := &Plan{
		statuses: e.statuses,
		actor:    actor,
		kind:     d.Kind,
	}

	// 2. Decision is well formed and affordable
	switch d.Kind {
	case KindAttack:
		p.basic = true
		p.target = data.TargetSpec{Selection: data.SelectSingle, Faction: data.TargetEnemies}
		p.effect = data.EffectSpec{Type: data.EffectDamage}

	case KindSkill:
		s := d.Skill
		if s == nil {
			return nil, fmt.Errorf("%w: skill decision without skill", ErrInvalidAction)
		}
		if s.Cost < 0 {
			return nil, fmt.Errorf("%w: skill %s has negative cost", ErrInvalidAction, s.ID)
		}
		if actor.CurrentSP() < s.Cost {
			return nil, fmt.Errorf("%w: %s needs %d SP, has %d",
				ErrInsufficientResource, s.ID, s.Cost, actor.CurrentSP())
		}
		p.skill = s
		p.cost = s.Cost
		p.target = s.Target
		p.effect = s.Effect
		p.statusOps = s.Statuses

	case KindItem:
		it := d.Item
		if it == nil {
			return nil, fmt.Errorf("%w: item decision without item", ErrInvalidAction)
		}
		if req.Inventory == nil {
			return nil, fmt.Errorf("%w: %s has no inventory", ErrItemUnavailable, actor)
		}
		p.item = it
		p.quantity = max(it.Quantity, 1)
		p.inventory = req.Inventory
		p.target = it.Target
		p.effect = it.Effect
		p.statusOps = it.Statuses

	case KindGuard:

	default:
		return nil, fmt.Errorf("%w: unknown decision kind %d", ErrInvalidAction, d.Kind)
	}

	return p, nil
}

// resolveTargets picks targets. A Single action without an explicit
// target is only auto-resolved on the AI path (Avoid set); a player must
// name one.
func (e *Executor) resolveTargets(req Request, spec data.TargetSpec) ([]*model.Combatant, error) {
	var targets []*model.Combatant
	switch {
	case len(req.Decision.Targets) == 0 && (spec.Selection != data.SelectSingle || req.Avoid != nil):
		targets = e.resolver.Resolve(spec, req.Actor, req.Allies, req.Enemies, req.Avoid)
	default:
		targets = e.resolver.Validate(spec, req.Actor, req.Allies, req.Enemies, req.Decision.Targets)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %s for %s", ErrNoValidTargets, req.Decision, req.Actor)
	}
	return targets, nil
}

func actorID(c *model.Combatant) string {
	if c == nil {
		return ""
	}
	return c.ID()
}
