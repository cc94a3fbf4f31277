package ai

import (
	"context"
	"log/slog"

	"github.com/udisondev/skirmish/internal/game/action"
	"github.com/udisondev/skirmish/internal/game/battle"
	"github.com/udisondev/skirmish/internal/model"
)

// Controller drives one side of a battle with a Policy.
// Safe to share between battles: all per-battle state lives in the
// TurnContext.
type Controller struct {
	policy *Policy
}

// NewController creates a battle controller for policy.
func NewController(policy *Policy) *Controller {
	if policy == nil {
		policy = NewPolicy(nil)
	}
	return &Controller{policy: policy}
}

var _ battle.Controller = (*Controller)(nil)

// Decide picks an intent (a healing item when the policy allows one, else
// the skill-or-attack rule), resolves its targets and records them in the
// side's avoid set so the next same-side turn spreads out.
func (c *Controller) Decide(ctx context.Context, tc battle.TurnContext) (action.Decision, error) {
	if err := ctx.Err(); err != nil {
		return action.Decision{}, err
	}

	in, ok := c.policy.DecideItem(tc.Actor, tc.Allies, tc.Inventory)
	if !ok {
		in = c.policy.Decide(tc.Actor)
	}
	if in.NeedsTarget() {
		in.Targets = c.policy.PickTargets(in, tc.Actor, tc.Allies, tc.Enemies, tc.Avoid)
	}

	if tc.Avoid != nil {
		for _, t := range in.Targets {
			if t != tc.Actor {
				tc.Avoid.Add(t)
			}
		}
	}

	if IsDebugEnabled() {
		slog.Debug("AI decided",
			"battle", tc.BattleID,
			"turn", tc.Turn,
			"unit", tc.Actor.String(),
			"intent", in.Type,
			"targets", targetIDs(in.Targets),
			"avoid", tc.Avoid.Len())
	}
	return in.Decision(), nil
}

func targetIDs(units []*model.Combatant) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.ID()
	}
	return out
}
