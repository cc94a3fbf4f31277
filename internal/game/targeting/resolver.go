// Package targeting turns a targeting spec and the live unit pools into a
// concrete target list.
package targeting

import (
	"math/rand/v2"
	"slices"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/model"
)

// Resolver resolves targets. The random source is only used to pick among
// candidates for AI-issued single-target actions.
type Resolver struct {
	rng *rand.Rand
}

// NewResolver creates a resolver drawing from rng. A nil rng uses an
// unseeded source.
func NewResolver(rng *rand.Rand) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Resolver{rng: rng}
}

// Pool returns the side a spec draws from. allies and enemies are
// relative to the caster.
func Pool(spec data.TargetSpec, allies, enemies []*model.Combatant) []*model.Combatant {
	if spec.Faction == data.TargetAllies {
		return allies
	}
	return enemies
}

// Eligible filters a pool down to living combatants, keeping pool order.
func Eligible(pool []*model.Combatant) []*model.Combatant {
	out := make([]*model.Combatant, 0, len(pool))
	for _, c := range pool {
		if c != nil && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// Resolve picks targets for an AI-issued action (or any action that needs
// no explicit choice). avoid may be nil.
//
//   - SelfOnly: [self]
//   - Multi: every living unit in the pool
//   - Single: uniform pick among living units not in avoid, falling back
//     to all living units when avoid excludes everyone
//
// An empty pool yields an empty list.
func (r *Resolver) Resolve(spec data.TargetSpec, self *model.Combatant, allies, enemies []*model.Combatant, avoid *AvoidSet) []*model.Combatant {
	if spec.Selection == data.SelectSelf {
		return []*model.Combatant{self}
	}

	eligible := Eligible(Pool(spec, allies, enemies))
	if len(eligible) == 0 {
		return nil
	}
	if spec.Selection == data.SelectMulti {
		return eligible
	}

	candidates := eligible
	if avoid.Len() > 0 {
		candidates = slices.DeleteFunc(slices.Clone(eligible), avoid.Contains)
		if len(candidates) == 0 {
			candidates = eligible
		}
	}
	return []*model.Combatant{candidates[r.rng.IntN(len(candidates))]}
}

// Validate checks player-chosen targets. For Single, the first chosen unit
// is kept if it is alive and in the pool. SelfOnly and Multi ignore the
// choice and resolve as usual.
func (r *Resolver) Validate(spec data.TargetSpec, self *model.Combatant, allies, enemies, chosen []*model.Combatant) []*model.Combatant {
	if spec.Selection != data.SelectSingle {
		return r.Resolve(spec, self, allies, enemies, nil)
	}
	if len(chosen) == 0 || chosen[0] == nil {
		return nil
	}
	pick := chosen[0]
	if !pick.Alive() || !slices.Contains(Pool(spec, allies, enemies), pick) {
		return nil
	}
	return []*model.Combatant{pick}
}
