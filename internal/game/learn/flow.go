// Package learn drives the move-learning dialogue of a combatant whose move
// slots are full.
package learn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/looplab/fsm"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
)

// State names of the learn flow.
const (
	StateOffer   = "offer"
	StateChoose  = "choose"
	StateStop    = "confirm_stop"
	StateLearned = "learned"
	StateDenied  = "declined"
)

// Event names of the learn flow.
const (
	EventAccept  = "accept"
	EventDecline = "decline"
	EventForget  = "forget"
	EventCancel  = "cancel"
	EventStop    = "stop"
	EventRetry   = "retry"
)

// CancelSlot is the slot choice meaning "keep every move". NoSlot is accepted
// as an alias.
const (
	CancelSlot = battler.MaxMoves
	NoSlot     = -1
)

// ErrInvalidSlot is returned by Choose for a slot outside the move list.
var ErrInvalidSlot = errors.New("invalid move slot")

// Result is the outcome of attempting to learn a move without a dialogue.
type Result int

const (
	// ResultKnown means the move is already known; nothing changes.
	ResultKnown Result = iota
	// ResultLearned means the move filled an empty slot.
	ResultLearned
	// ResultFull means every slot is taken and a Flow must run.
	ResultFull
)

// Direct learns moveID into a free slot when one exists.
//
// Postcondition: the combatant changes only when ResultLearned is returned.
func Direct(c *battler.Combatant, moveID string, maxPP int) Result {
	if c.KnowsMove(moveID) {
		return ResultKnown
	}
	slot := c.EmptySlot()
	if slot < 0 {
		return ResultFull
	}
	c.SetMove(slot, moveID, maxPP)
	return ResultLearned
}

// Flow is the replace-a-move dialogue for one combatant and one new move.
// Every transition reports its text through Say.
type Flow struct {
	mon       *battler.Combatant
	move      string
	maxPP     int
	label     func(moveID string) string
	say       func(string)
	forgotten string
	fsm       *fsm.FSM
}

// New returns a flow in StateOffer.
//
// label renders move ids for messages; nil falls back to the upper-cased id.
//
// Precondition: mon has no empty slot and does not know moveID; say is non-nil.
func New(mon *battler.Combatant, moveID string, maxPP int, label func(string) string, say func(string)) *Flow {
	if label == nil {
		label = upperID
	}
	f := &Flow{mon: mon, move: moveID, maxPP: maxPP, label: label, say: say}
	f.fsm = fsm.NewFSM(
		StateOffer,
		fsm.Events{
			{Name: EventAccept, Src: []string{StateOffer}, Dst: StateChoose},
			{Name: EventDecline, Src: []string{StateOffer}, Dst: StateStop},
			{Name: EventForget, Src: []string{StateChoose}, Dst: StateLearned},
			{Name: EventCancel, Src: []string{StateChoose}, Dst: StateStop},
			{Name: EventStop, Src: []string{StateStop}, Dst: StateDenied},
			{Name: EventRetry, Src: []string{StateStop}, Dst: StateOffer},
		},
		fsm.Callbacks{
			"enter_" + StateOffer: func(_ context.Context, _ *fsm.Event) { f.say(f.Prompt()) },
			"enter_" + StateStop:  func(_ context.Context, _ *fsm.Event) { f.say(f.Prompt()) },
			"enter_" + StateLearned: func(_ context.Context, e *fsm.Event) {
				slot := e.Args[0].(int)
				f.forgotten = f.mon.Moves[slot].Move
				f.mon.SetMove(slot, f.move, f.maxPP)
				f.say(fmt.Sprintf("1, 2, and… Poof! %s forgot %s.", f.mon.Name, f.label(f.forgotten)))
				f.say(fmt.Sprintf("And… %s learned %s!", f.mon.Name, f.label(f.move)))
			},
			"enter_" + StateDenied: func(_ context.Context, _ *fsm.Event) {
				f.say(fmt.Sprintf("%s did not learn %s.", f.mon.Name, f.label(f.move)))
			},
		},
	)
	return f
}

// Open reports the opening lines and the first question.
func (f *Flow) Open() {
	f.say(fmt.Sprintf("%s wants to learn the move %s.", f.mon.Name, f.label(f.move)))
	f.say(fmt.Sprintf("However, %s already knows four moves.", f.mon.Name))
	f.say(f.Prompt())
}

// State returns the current state name.
func (f *Flow) State() string { return f.fsm.Current() }

// Done reports whether the flow reached a terminal state.
func (f *Flow) Done() bool {
	return f.fsm.Is(StateLearned) || f.fsm.Is(StateDenied)
}

// Learned reports whether the move was learned.
func (f *Flow) Learned() bool { return f.fsm.Is(StateLearned) }

// Forgotten returns the move that was replaced, or "".
func (f *Flow) Forgotten() string { return f.forgotten }

// Move returns the move being taught.
func (f *Flow) Move() string { return f.move }

// Prompt returns the question asked in the current state, or "" when none is pending.
func (f *Flow) Prompt() string {
	switch f.fsm.Current() {
	case StateOffer:
		return fmt.Sprintf("Should a move be forgotten and replaced with %s?", f.label(f.move))
	case StateChoose:
		return "Which move should be forgotten?"
	case StateStop:
		return fmt.Sprintf("Stop trying to teach %s?", f.label(f.move))
	default:
		return ""
	}
}

// Answer feeds a yes/no reply to the pending confirmation.
//
// Precondition: State() is StateOffer or StateStop.
func (f *Flow) Answer(ctx context.Context, yes bool) error {
	var event string
	switch {
	case f.fsm.Is(StateOffer) && yes:
		event = EventAccept
	case f.fsm.Is(StateOffer):
		event = EventDecline
	case f.fsm.Is(StateStop) && yes:
		event = EventStop
	default:
		event = EventRetry
	}
	return f.fsm.Event(ctx, event)
}

// Choose feeds the slot to forget. CancelSlot or NoSlot backs out to the
// stop-trying question.
//
// Precondition: State() is StateChoose.
func (f *Flow) Choose(ctx context.Context, slot int) error {
	if slot == CancelSlot || slot == NoSlot {
		return f.fsm.Event(ctx, EventCancel)
	}
	if slot < 0 || slot >= len(f.mon.Moves) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return f.fsm.Event(ctx, EventForget, slot)
}

func upperID(moveID string) string {
	return strings.ToUpper(strings.ReplaceAll(moveID, "_", " "))
}
