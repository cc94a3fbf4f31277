package battle

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/action"
	"github.com/udisondev/skirmish/internal/game/event"
	"github.com/udisondev/skirmish/internal/game/targeting"
	"github.com/udisondev/skirmish/internal/game/turn"
	"github.com/udisondev/skirmish/internal/model"
	tu "github.com/udisondev/skirmish/internal/testutil"
)

// attackFirst attacks the first living opponent.
var attackFirst = ControllerFunc(func(_ context.Context, tc TurnContext) (action.Decision, error) {
	for _, e := range tc.Enemies {
		if e.Alive() {
			return action.Attack(e), nil
		}
	}
	return action.Guard(), nil
})

var guard = ControllerFunc(func(context.Context, TurnContext) (action.Decision, error) {
	return action.Guard(), nil
})

func newSession(t *testing.T, players, enemies []*model.Combatant, pc, ec Controller, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 1)))}, opts...)
	s, err := New(players, enemies, pc, ec, opts...)
	require.NoError(t, err)
	return s
}

func TestNew_Validation(t *testing.T) {
	hero := tu.Ally("hero", tu.Stats(10, 0, 10, 10))

	_, err := New([]*model.Combatant{hero}, nil, guard, guard)
	assert.Error(t, err)

	_, err = New([]*model.Combatant{hero}, []*model.Combatant{tu.Enemy("e", tu.Stats(1, 1, 1, 1))}, guard, nil)
	assert.Error(t, err)
}

func TestRun_Victory(t *testing.T) {
	hero := tu.Ally("hero", tu.Stats(50, 0, 20, 100))
	slime := tu.Enemy("slime", tu.Stats(5, 0, 10, 30))
	rec := &event.Recorder{}
	s := newSession(t, []*model.Combatant{hero}, []*model.Combatant{slime}, attackFirst, attackFirst, WithSink(rec))

	sum, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeVictory, sum.Outcome)
	assert.Equal(t, 1, sum.Turns)
	assert.Equal(t, 1, sum.PlayersAlive)
	assert.Equal(t, 0, sum.EnemiesAlive)
	assert.Equal(t, []event.Kind{event.KindDamage, event.KindDefeated, event.KindSPGained}, rec.Kinds())
	assert.Equal(t, s.ID(), sum.BattleID)

	_, err = s.Step(context.Background())
	assert.ErrorIs(t, err, ErrFinished)
}

func TestRun_Defeat(t *testing.T) {
	hero := tu.Ally("hero", tu.Stats(1, 0, 5, 10))
	ogre := tu.Enemy("ogre", tu.Stats(99, 0, 30, 500))
	s := newSession(t, []*model.Combatant{hero}, []*model.Combatant{ogre}, attackFirst, attackFirst)

	sum, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeDefeat, sum.Outcome)
	assert.Equal(t, turn.StateFinished, s.Scheduler().State())
}

func TestRun_MaxTurnsDraw(t *testing.T) {
	hero := tu.Ally("hero", tu.Stats(10, 0, 10, 100))
	slime := tu.Enemy("slime", tu.Stats(10, 0, 10, 100))
	s := newSession(t, []*model.Combatant{hero}, []*model.Combatant{slime}, guard, guard, WithMaxTurns(5))

	sum, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeDraw, sum.Outcome)
	assert.Equal(t, 5, sum.Turns)
}

func TestStep_TurnOrderAndRequeue(t *testing.T) {
	fast := tu.Ally("fast", tu.Stats(1, 0, 30, 100))
	slow := tu.Ally("slow", tu.Stats(1, 0, 5, 100))
	mid := tu.Enemy("mid", tu.Stats(1, 0, 10, 100))
	s := newSession(t, []*model.Combatant{slow, fast}, []*model.Combatant{mid}, guard, guard)

	var order []string
	for range 6 {
		rep, err := s.Step(context.Background())
		require.NoError(t, err)
		order = append(order, rep.Actor.ID())
	}
	assert.Equal(t, []string{"fast", "mid", "slow", "fast", "mid", "slow"}, order)
}

func TestStep_DeadUnitsSkipped(t *testing.T) {
	a := tu.Ally("a", tu.Stats(1, 0, 30, 100))
	b := tu.Ally("b", tu.Stats(1, 0, 20, 100))
	e := tu.Enemy("e", tu.Stats(1, 0, 10, 100))
	s := newSession(t, []*model.Combatant{a, b}, []*model.Combatant{e}, guard, guard)
	a.SetHP(0)

	rep, err := s.Step(context.Background())

	require.NoError(t, err)
	assert.Equal(t, b, rep.Actor)
	assert.Equal(t, 1, rep.Turn)
	assert.NotContains(t, s.Scheduler().Forecast(), a)
}

func TestStep_CancelledRepromptsWithoutMutation(t *testing.T) {
	hero := tu.Ally("hero", tu.Stats(20, 0, 30, 100))
	slime := tu.Enemy("slime", tu.Stats(5, 5, 10, 100))

	var seen []TurnContext
	pc := ControllerFunc(func(_ context.Context, tc TurnContext) (action.Decision, error) {
		seen = append(seen, tc)
		if tc.Attempt == 1 {
			assert.Equal(t, int32(100), slime.CurrentHP())
			return action.Decision{}, ErrCancelled
		}
		return action.Attack(slime), nil
	})
	s := newSession(t, []*model.Combatant{hero}, []*model.Combatant{slime}, pc, guard)

	rep, err := s.Step(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, rep.Attempts)
	assert.False(t, rep.Skipped)
	assert.Equal(t, int32(85), slime.CurrentHP())
	require.Len(t, seen, 2)
	assert.ErrorIs(t, seen[1].LastError, ErrCancelled)
}

func TestStep_FailedAttemptsSkipTurn(t *testing.T) {
	mage := tu.Ally("mage", tu.Stats(20, 0, 30, 100), model.WithStartingSP(1))
	slime := tu.Enemy("slime", tu.Stats(5, 5, 10, 100))
	nova := tu.Skill("nova", 5, tu.Target(data.SelectMulti, data.TargetEnemies), tu.Damage(data.StatATK, data.PotencyFlat, 99))
	calls := 0
	pc := ControllerFunc(func(_ context.Context, tc TurnContext) (action.Decision, error) {
		calls++
		if calls > 1 {
			assert.ErrorIs(t, tc.LastError, action.ErrInsufficientResource)
		}
		return action.UseSkill(nova), nil
	})
	s := newSession(t, []*model.Combatant{mage}, []*model.Combatant{slime}, pc, guard, WithMaxPromptAttempts(2))
	before := tu.Snapshots(mage, slime)

	rep, err := s.Step(context.Background())

	require.NoError(t, err)
	assert.True(t, rep.Skipped)
	assert.Equal(t, 2, rep.Attempts)
	assert.Equal(t, action.OutcomeInsufficientResource, rep.Result.Outcome)
	assert.Equal(t, before, tu.Snapshots(mage, slime))
	assert.Equal(t, 1, s.Summary().Skipped)
	assert.Equal(t, 2, s.Scheduler().Len(), "the unit is still requeued")
}

func TestStep_ControllerError(t *testing.T) {
	boom := errors.New("boom")
	pc := ControllerFunc(func(context.Context, TurnContext) (action.Decision, error) {
		return action.Decision{}, boom
	})
	s := newSession(t, []*model.Combatant{tu.Ally("a", tu.Stats(1, 0, 30, 10))}, []*model.Combatant{tu.Enemy("e", tu.Stats(1, 0, 1, 10))}, pc, guard)

	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pc := ControllerFunc(func(context.Context, TurnContext) (action.Decision, error) {
		cancel()
		return action.Guard(), nil
	})
	s := newSession(t, []*model.Combatant{tu.Ally("a", tu.Stats(1, 0, 30, 10))}, []*model.Combatant{tu.Enemy("e", tu.Stats(1, 0, 1, 10))}, pc, guard)

	_, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeOngoing, s.Outcome())
}

func TestStep_AvoidSetClearedOnSideSwitch(t *testing.T) {
	hero := tu.Ally("hero", tu.Stats(1, 0, 5, 100))
	e1 := tu.Enemy("e1", tu.Stats(1, 0, 30, 100))
	e2 := tu.Enemy("e2", tu.Stats(1, 0, 20, 100))

	var sizes []int
	ec := ControllerFunc(func(_ context.Context, tc TurnContext) (action.Decision, error) {
		sizes = append(sizes, tc.Avoid.Len())
		tc.Avoid.Add(hero)
		return action.Guard(), nil
	})
	s := newSession(t, []*model.Combatant{hero}, []*model.Combatant{e1, e2}, guard, ec)

	for range 4 { // e1, e2, hero, e1
		_, err := s.Step(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, []int{0, 1, 0}, sizes, "kept across e1 -> e2, cleared after the player's turn")
}

func TestStep_EndOfTurnTickAfterAction(t *testing.T) {
	hero := tu.Ally("hero", tu.Stats(10, 0, 30, 100))
	slime := tu.Enemy("slime", tu.Stats(1, 0, 10, 100))
	burn := tu.DotStatus("burn", 2, data.DamageOverTime{Source: data.DotFromTarget, Basis: data.StatMaxHP, Mode: data.PotencyFlat, Power: 5})
	s := newSession(t, []*model.Combatant{hero}, []*model.Combatant{slime}, attackFirst, guard)
	s.Statuses().Apply(hero, burn, nil)

	rep, err := s.Step(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []event.Kind{event.KindDamage, event.KindSPGained, event.KindDamage}, kindsOf(rep.Events))
	assert.Equal(t, int32(95), hero.CurrentHP())
	assert.Equal(t, int32(1), hero.Statuses()[0].Remaining)
}

func TestStep_DotDefeatEndsBattle(t *testing.T) {
	hero := tu.Ally("hero", tu.Stats(10, 0, 30, 5))
	slime := tu.Enemy("slime", tu.Stats(1, 0, 10, 100))
	burn := tu.DotStatus("burn", 2, data.DamageOverTime{Source: data.DotFromTarget, Basis: data.StatMaxHP, Mode: data.PotencyFlat, Power: 50})
	s := newSession(t, []*model.Combatant{hero}, []*model.Combatant{slime}, guard, guard)
	s.Statuses().Apply(hero, burn, nil)

	rep, err := s.Step(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeDefeat, rep.Outcome)
	assert.Equal(t, 0, s.Scheduler().Len())
}

func TestFromEncounter(t *testing.T) {
	potion := tu.Item("potion", tu.Target(data.SelectSelf, data.TargetAllies), tu.Heal(data.StatMaxHP, data.PotencyPercent, 30))
	slimeTpl := &data.UnitTemplate{ID: "slime", Name: "Slime", Stats: tu.Stats(3, 1, 5, 20)}
	knight := &data.UnitTemplate{
		ID:         "knight",
		Name:       "Knight",
		Stats:      tu.Stats(10, 5, 10, 80),
		StartingSP: 2,
		Equipment:  []*data.EquipmentDefinition{{ID: "sword", Bonus: data.Stats{ATK: 5}}},
	}
	enc := &data.Encounter{
		ID:         "meadow",
		Party:      []*data.UnitTemplate{knight},
		Enemies:    []*data.UnitTemplate{slimeTpl, slimeTpl},
		PartyItems: []data.ItemStack{{Item: potion, Count: 3}},
	}

	s, err := FromEncounter(enc, guard, guard)

	require.NoError(t, err)
	require.Len(t, s.Players(), 1)
	p := s.Players()[0]
	assert.Equal(t, "p1-knight", p.ID())
	assert.Equal(t, int32(15), p.Effective(data.StatATK))
	assert.Equal(t, int32(2), p.CurrentSP())
	assert.Equal(t, []string{"e1-slime", "e2-slime"}, []string{s.Enemies()[0].ID(), s.Enemies()[1].ID()})
	assert.Equal(t, int32(3), s.Inventory(model.FactionAlly).Count("potion"))
	assert.Empty(t, s.Inventory(model.FactionEnemy).Items())

	_, err = FromEncounter(&data.Encounter{ID: "empty"}, guard, guard)
	assert.Error(t, err)
}

func TestSession_ItemsComeFromOwnSide(t *testing.T) {
	potion := tu.Item("potion", tu.Target(data.SelectSelf, data.TargetAllies), tu.Heal(data.StatMaxHP, data.PotencyFlat, 10))
	hero := tu.Ally("hero", tu.Stats(1, 0, 30, 100))
	hero.SetHP(50)
	slime := tu.Enemy("slime", tu.Stats(1, 0, 10, 100))
	pc := ControllerFunc(func(context.Context, TurnContext) (action.Decision, error) {
		return action.UseItem(potion), nil
	})
	enemyInv := model.NewInventory()
	enemyInv.Add("potion", 1)
	s := newSession(t, []*model.Combatant{hero}, []*model.Combatant{slime}, pc, guard,
		WithInventory(model.FactionEnemy, enemyInv))

	rep, err := s.Step(context.Background())

	require.NoError(t, err)
	assert.True(t, rep.Skipped, "players have no inventory")
	assert.Equal(t, action.OutcomeItemUnavailable, rep.Result.Outcome)
	assert.Equal(t, int32(1), enemyInv.Count("potion"))
}

func TestTurnContext_ForecastAndAvoid(t *testing.T) {
	hero := tu.Ally("hero", tu.Stats(1, 0, 30, 100))
	slime := tu.Enemy("slime", tu.Stats(1, 0, 10, 100))
	var got TurnContext
	pc := ControllerFunc(func(_ context.Context, tc TurnContext) (action.Decision, error) {
		got = tc
		return action.Guard(), nil
	})
	s := newSession(t, []*model.Combatant{hero}, []*model.Combatant{slime}, pc, guard)

	_, err := s.Step(context.Background())

	require.NoError(t, err)
	assert.Equal(t, s.ID(), got.BattleID)
	assert.Equal(t, []*model.Combatant{hero, slime}, got.Forecast)
	assert.Equal(t, []*model.Combatant{slime}, got.Enemies)
	assert.IsType(t, &targeting.AvoidSet{}, got.Avoid)
}

func kindsOf(events []event.Event) []event.Kind {
	out := make([]event.Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
