package battle

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/udisondev/skirmish/internal/game/action"
	"github.com/udisondev/skirmish/internal/game/targeting"
	"github.com/udisondev/skirmish/internal/model"
)

// ErrCancelled is returned by a Controller when the decision was abandoned
// before it reached validation (for example the player backed out of a
// target picker). The session prompts again; nothing has changed.
var ErrCancelled = errors.New("decision cancelled")

// ErrFinished is returned by Step once the battle is over.
var ErrFinished = errors.New("battle finished")

// TurnContext is what a controller sees when asked for a decision.
type TurnContext struct {
	BattleID uuid.UUID
	Turn     int
	Attempt  int

	Actor *model.Combatant

	// Allies and Enemies are relative to Actor.
	Allies  []*model.Combatant
	Enemies []*model.Combatant

	// Inventory of the actor's side. May be nil.
	Inventory *model.Inventory

	// Avoid holds units picked by earlier turns of the actor's side since
	// control last changed sides.
	Avoid *targeting.AvoidSet

	Forecast []*model.Combatant

	// LastError is why the previous attempt this turn was rejected.
	LastError error
}

// Controller produces decisions for one side.
type Controller interface {
	Decide(ctx context.Context, tc TurnContext) (action.Decision, error)
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(ctx context.Context, tc TurnContext) (action.Decision, error)

// Decide calls f.
func (f ControllerFunc) Decide(ctx context.Context, tc TurnContext) (action.Decision, error) {
	return f(ctx, tc)
}
