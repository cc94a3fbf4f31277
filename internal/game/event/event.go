// Package event defines the effect events a battle emits for playback.
//
// The engine never knows about positions, sprites or animation names; it
// emits an ordered stream of these values and a presentation collaborator
// maps them to visuals.
package event

import "fmt"

// Kind identifies what happened.
type Kind int8

const (
	KindDamage        Kind = iota // HP lost from an action or a DOT tick
	KindHeal                      // HP restored
	KindStatusApplied             // new status instance
	KindStatusRemoved             // instance removed by an action
	KindStatusExpired             // instance ran out of turns
	KindSPSpent                   // skill cost paid
	KindSPGained                  // basic attack reward
	KindItemConsumed              // inventory stock used
	KindDefeated                  // HP reached 0
	KindGuard                     // actor passed the turn
)

var kindNames = [...]string{
	KindDamage:        "damage",
	KindHeal:          "heal",
	KindStatusApplied: "status_applied",
	KindStatusRemoved: "status_removed",
	KindStatusExpired: "status_expired",
	KindSPSpent:       "sp_spent",
	KindSPGained:      "sp_gained",
	KindItemConsumed:  "item_consumed",
	KindDefeated:      "defeated",
	KindGuard:         "guard",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && k >= 0 {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Event is a single observable state change.
type Event struct {
	Kind     Kind
	ActorID  string // who caused it; empty for turn-end ticks
	TargetID string // who it happened to

	// Amount is the magnitude actually applied after clamping.
	Amount int32

	ResultingHP int32
	ResultingSP int32

	StatusID string // status events and DOT damage
	ItemID   string // item consumption
	Trigger  string // optional presentation cue from the status definition
}

func (e Event) String() string {
	switch e.Kind {
	case KindDamage, KindHeal:
		return fmt.Sprintf("%s %s -> %s %d (hp=%d)", e.Kind, e.ActorID, e.TargetID, e.Amount, e.ResultingHP)
	case KindStatusApplied, KindStatusRemoved, KindStatusExpired:
		return fmt.Sprintf("%s %s on %s", e.Kind, e.StatusID, e.TargetID)
	case KindSPSpent, KindSPGained:
		return fmt.Sprintf("%s %s %d (sp=%d)", e.Kind, e.TargetID, e.Amount, e.ResultingSP)
	case KindItemConsumed:
		return fmt.Sprintf("%s %s x%d by %s", e.Kind, e.ItemID, e.Amount, e.ActorID)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.TargetID)
	}
}

// Sink receives events in emission order.
type Sink interface {
	Push(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Push(e Event) { f(e) }

// Recorder collects events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Push(e Event) { r.Events = append(r.Events, e) }

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	out := make([]Kind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() { r.Events = r.Events[:0] }
