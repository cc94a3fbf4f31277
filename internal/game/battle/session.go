// Package battle runs a party-vs-party fight turn by turn.
package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/udisondev/skirmish/internal/game/action"
	"github.com/udisondev/skirmish/internal/game/event"
	"github.com/udisondev/skirmish/internal/game/status"
	"github.com/udisondev/skirmish/internal/game/targeting"
	"github.com/udisondev/skirmish/internal/game/turn"
	"github.com/udisondev/skirmish/internal/model"
)

const (
	DefaultMaxTurns          = 200
	DefaultMaxPromptAttempts = 3
)

// Option configures a Session.
type Option func(*Session)

// WithSink streams every event to sink as it is produced.
func WithSink(sink event.Sink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithInventory sets the consumables of a side.
func WithInventory(f model.Faction, inv *model.Inventory) Option {
	return func(s *Session) { s.inventories[f] = inv }
}

// WithMaxTurns ends the battle as a draw after n turns. 0 disables the
// limit.
func WithMaxTurns(n int) Option {
	return func(s *Session) { s.maxTurns = max(n, 0) }
}

// WithMaxPromptAttempts bounds how many decisions a controller may offer
// per turn before the turn is skipped.
func WithMaxPromptAttempts(n int) Option {
	return func(s *Session) { s.maxAttempts = max(n, 1) }
}

// WithRand seeds target resolution.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithID overrides the generated battle ID.
func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.id = id }
}

// Session owns one battle. It is driven from a single goroutine; only the
// scheduler forecast and inventories are safe to read concurrently.
type Session struct {
	id      uuid.UUID
	players []*model.Combatant
	enemies []*model.Combatant

	controllers map[model.Faction]Controller
	inventories map[model.Faction]*model.Inventory

	scheduler *turn.Scheduler
	statuses  *status.Engine
	executor  *action.Executor
	rng       *rand.Rand

	avoid    *targeting.AvoidSet
	lastSide model.Faction
	started  bool

	sink        event.Sink
	maxTurns    int
	maxAttempts int

	turn    int
	skipped int
	outcome Outcome
}

// New creates a session. Players and enemies keep their order; that order
// breaks AGI ties in the turn queue.
func New(players, enemies []*model.Combatant, playerCtl, enemyCtl Controller, opts ...Option) (*Session, error) {
	if len(players) == 0 || len(enemies) == 0 {
		return nil, fmt.Errorf("creating battle: both sides need units (players=%d, enemies=%d)", len(players), len(enemies))
	}
	if playerCtl == nil || enemyCtl == nil {
		return nil, errors.New("creating battle: both sides need a controller")
	}

	s := &Session{
		id:      uuid.New(),
		players: players,
		enemies: enemies,
		controllers: map[model.Faction]Controller{
			model.FactionAlly:  playerCtl,
			model.FactionEnemy: enemyCtl,
		},
		inventories: make(map[model.Faction]*model.Inventory, 2),
		scheduler:   turn.NewScheduler(),
		statuses:    status.NewEngine(),
		avoid:       targeting.NewAvoidSet(),
		maxTurns:    DefaultMaxTurns,
		maxAttempts: DefaultMaxPromptAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.executor = action.NewExecutor(targeting.NewResolver(s.rng), s.statuses)

	all := make([]*model.Combatant, 0, len(players)+len(enemies))
	all = append(all, players...)
	all = append(all, enemies...)
	s.scheduler.Initialize(all)

	slog.Info("battle created",
		"battle", s.id,
		"players", len(players),
		"enemies", len(enemies))
	return s, nil
}

func (s *Session) ID() uuid.UUID { return s.id }
func (s *Session) Players() []*model.Combatant { return s.players }
func (s *Session) Enemies() []*model.Combatant { return s.enemies }
func (s *Session) Scheduler() *turn.Scheduler { return s.scheduler }
func (s *Session) Statuses() *status.Engine { return s.statuses }
func (s *Session) Avoid() *targeting.AvoidSet { return s.avoid }
func (s *Session) Outcome() Outcome { return s.outcome }
func (s *Session) Turn() int { return s.turn }
func (s *Session) Inventory(f model.Faction) *model.Inventory { return s.inventories[f] }

// Step plays the next turn. Dead units at the head of the queue are
// skipped without a turn. Returns ErrFinished once the battle is over,
// and ctx.Err() if ctx ends while waiting for a decision.
func (s *Session) Step(ctx context.Context) (TurnReport, error) {
	if s.outcome != OutcomeOngoing {
		return TurnReport{Outcome: s.outcome}, ErrFinished
	}
	if err := ctx.Err(); err != nil {
		return TurnReport{}, err
	}

	actor, ok := s.popLiving()
	if !ok {
		s.finish(s.evaluate(true))
		return TurnReport{Outcome: s.outcome}, ErrFinished
	}

	if s.started && actor.Faction() != s.lastSide {
		s.avoid.Clear()
	}
	s.started = true
	s.lastSide = actor.Faction()
	s.turn++

	rep := TurnReport{Turn: s.turn, Actor: actor}
	res, attempts, err := s.resolve(ctx, actor)
	rep.Attempts = attempts
	if err != nil {
		return rep, err
	}
	rep.Result = res
	rep.Skipped = !res.OK()
	if rep.Skipped {
		s.skipped++
		slog.Debug("turn skipped",
			"battle", s.id,
			"turn", s.turn,
			"actor", actor.String(),
			"outcome", res.Outcome.String())
	}
	rep.Events = append(rep.Events, res.Events...)

	ticks := s.statuses.TickTurnEnd(actor)
	s.emit(ticks)
	rep.Events = append(rep.Events, ticks...)

	s.scheduler.Requeue(actor)

	if o := s.evaluate(false); o != OutcomeOngoing {
		s.finish(o)
	} else if s.maxTurns > 0 && s.turn >= s.maxTurns {
		s.finish(OutcomeDraw)
	}
	rep.Outcome = s.outcome
	return rep, nil
}

// Run plays turns until the battle ends.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	for {
		_, err := s.Step(ctx)
		if errors.Is(err, ErrFinished) {
			return s.Summary(), nil
		}
		if err != nil {
			return s.Summary(), fmt.Errorf("running battle %s: %w", s.id, err)
		}
	}
}

// Summary describes the battle so far.
func (s *Session) Summary() Summary {
	return Summary{
		BattleID:     s.id,
		Outcome:      s.outcome,
		Turns:        s.turn,
		Skipped:      s.skipped,
		PlayersAlive: countAlive(s.players),
		EnemiesAlive: countAlive(s.enemies),
	}
}

// resolve prompts the actor's controller until an action succeeds or the
// attempts run out. Cancelled decisions count as attempts but never reach
// the executor.
func (s *Session) resolve(ctx context.Context, actor *model.Combatant) (action.Result, int, error) {
	ctl := s.controllers[actor.Faction()]
	allies, enemies := s.sides(actor)
	inv := s.inventories[actor.Faction()]

	tc := TurnContext{
		BattleID:  s.id,
		Turn:      s.turn,
		Actor:     actor,
		Allies:    allies,
		Enemies:   enemies,
		Inventory: inv,
		Avoid:     s.avoid,
		Forecast:  s.scheduler.Forecast(),
	}

	req := action.Request{Actor: actor, Allies: allies, Enemies: enemies}
	if inv != nil {
		req.Inventory = inv
	}

	last := action.Result{Outcome: action.OutcomeInvalidAction, Actor: actor}
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		tc.Attempt = attempt
		d, err := ctl.Decide(ctx, tc)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return action.Result{}, attempt, ctxErr
		}
		if errors.Is(err, ErrCancelled) {
			tc.LastError = err
			continue
		}
		if err != nil {
			return action.Result{}, attempt, fmt.Errorf("deciding for %s: %w", actor, err)
		}

		req.Decision = d
		res, err := s.executor.Execute(req)
		if err == nil {
			s.emit(res.Events)
			slog.Debug("action resolved",
				"battle", s.id,
				"turn", s.turn,
				"actor", actor.String(),
				"decision", d.String(),
				"events", len(res.Events))
			return res, attempt, nil
		}

		slog.Debug("action rejected",
			"battle", s.id,
			"turn", s.turn,
			"actor", actor.String(),
			"decision", d.String(),
			"attempt", attempt,
			"error", err)
		tc.LastError = err
		last = res
	}
	return last, s.maxAttempts, nil
}

// popLiving pops until a living unit comes up.
func (s *Session) popLiving() (*model.Combatant, bool) {
	for {
		c, ok := s.scheduler.PopNext()
		if !ok {
			return nil, false
		}
		if c.Alive() {
			return c, true
		}
	}
}

// sides returns the actor's allies and enemies.
func (s *Session) sides(actor *model.Combatant) (allies, enemies []*model.Combatant) {
	if actor.Faction() == model.FactionAlly {
		return s.players, s.enemies
	}
	return s.enemies, s.players
}

// evaluate checks for a wiped side. exhausted reports that the turn queue
// ran dry, which ends the battle as a draw if nobody was wiped.
func (s *Session) evaluate(exhausted bool) Outcome {
	switch {
	case countAlive(s.players) == 0:
		return OutcomeDefeat
	case countAlive(s.enemies) == 0:
		return OutcomeVictory
	case exhausted:
		return OutcomeDraw
	}
	return OutcomeOngoing
}

func (s *Session) finish(o Outcome) {
	s.outcome = o
	s.scheduler.Finish()
	slog.Info("battle finished",
		"battle", s.id,
		"outcome", o.String(),
		"turns", s.turn,
		"playersAlive", countAlive(s.players),
		"enemiesAlive", countAlive(s.enemies))
}

func (s *Session) emit(events []event.Event) {
	if s.sink == nil {
		return
	}
	for _, e := range events {
		s.sink.Push(e)
	}
}
