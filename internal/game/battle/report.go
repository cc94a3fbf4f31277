package battle

import (
	"github.com/google/uuid"

	"github.com/udisondev/skirmish/internal/game/action"
	"github.com/udisondev/skirmish/internal/game/event"
	"github.com/udisondev/skirmish/internal/model"
)

// Outcome is the battle result.
type Outcome int8

const (
	OutcomeOngoing Outcome = iota
	OutcomeVictory         // every enemy defeated
	OutcomeDefeat          // every player defeated
	OutcomeDraw            // turn limit reached or queue exhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

// TurnReport describes one turn.
type TurnReport struct {
	Turn     int
	Actor    *model.Combatant
	Attempts int

	// Skipped is set when every attempt failed and the turn passed.
	Skipped bool

	// Result of the accepted action, or of the last rejected attempt.
	Result action.Result

	// Events holds the action events followed by the end-of-turn ticks.
	Events []event.Event

	Outcome Outcome
}

// Summary describes a finished battle.
type Summary struct {
	BattleID     uuid.UUID
	Outcome      Outcome
	Turns        int
	Skipped      int
	PlayersAlive int
	EnemiesAlive int
}

func countAlive(units []*model.Combatant) int {
	n := 0
	for _, u := range units {
		if u.Alive() {
			n++
		}
	}
	return n
}
