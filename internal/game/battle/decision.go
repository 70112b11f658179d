package battle

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/capture"
	"github.com/cory-johannsen/monbattle/internal/game/move"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

// ErrInvalidCommand is wrapped by every rejected player choice. A rejected
// choice changes nothing and is asked again.
var ErrInvalidCommand = errors.New("invalid command")

// CommandKind is the top-level turn action.
type CommandKind int

const (
	CommandFight CommandKind = iota
	CommandSwitch
	CommandBall
)

var commandNames = [...]string{"fight", "switch", "ball"}

// String returns the command name.
func (k CommandKind) String() string {
	if k < CommandFight || k > CommandBall {
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
	return commandNames[k]
}

// Command is the player's action for one turn.
type Command struct {
	Kind CommandKind
	// Move is the move slot for CommandFight.
	Move int
	// Member is the party index for CommandSwitch.
	Member int
	// Ball is the ball thrown for CommandBall.
	Ball capture.Ball
}

// Fight returns a command using move slot slot.
func Fight(slot int) Command { return Command{Kind: CommandFight, Move: slot} }

// SwitchTo returns a command sending in party member i.
func SwitchTo(i int) Command { return Command{Kind: CommandSwitch, Member: i} }

// Throw returns a command throwing ball b.
func Throw(b capture.Ball) Command { return Command{Kind: CommandBall, Ball: b} }

// CommandRequest asks for the player's turn action. Rejected carries the
// reason the previous answer was refused.
type CommandRequest struct {
	Turn     int
	Active   *battler.Combatant
	Foe      *battler.Combatant
	Party    []*battler.Combatant
	Balls    [capture.BallCount]int
	Rejected error
}

// SwitchRequest asks which member replaces a fainted one.
type SwitchRequest struct {
	Party    []*battler.Combatant
	Rejected error
}

// ConfirmKind identifies a yes/no question.
type ConfirmKind int

const (
	// ConfirmReplaceMove asks whether to forget a move for a new one.
	ConfirmReplaceMove ConfirmKind = iota
	// ConfirmStopLearning asks whether to give up on the new move.
	ConfirmStopLearning
)

// ConfirmRequest is a yes/no question about a member learning a move.
type ConfirmRequest struct {
	Kind   ConfirmKind
	Prompt string
	Member *battler.Combatant
	Move   *move.Def
}

// ForgetRequest asks which slot to overwrite with Move. The reply is a slot
// index, or learn.CancelSlot / -1 to keep every move.
type ForgetRequest struct {
	Member *battler.Combatant
	Move   *move.Def
}

// SkipReward is the Reward reply that takes nothing.
const SkipReward = -1

// RewardRequest offers the post-victory options. The reply is an option
// index or SkipReward.
type RewardRequest struct {
	Options  []reward.Option
	Party    []*battler.Combatant
	Rejected error
}

// TargetRequest asks which member receives Option. The reply is a party
// index or reward.NoTarget to go back to the reward choice.
type TargetRequest struct {
	Option   reward.Option
	Party    []*battler.Combatant
	Rejected error
}

// ReleaseRequest asks which member to release to make room for Newcomer. The
// reply is a party index or reward.NoTarget to release the newcomer.
type ReleaseRequest struct {
	Party    []*battler.Combatant
	Newcomer *battler.Combatant
	Rejected error
}

// DecisionSource supplies every player choice. Each method must eventually
// call reply exactly once, from any goroutine. Requests reference live
// engine state and must only be read before replying.
type DecisionSource interface {
	Command(req CommandRequest, reply func(Command))
	Switch(req SwitchRequest, reply func(member int))
	Confirm(req ConfirmRequest, reply func(yes bool))
	ForgetMove(req ForgetRequest, reply func(slot int))
	Reward(req RewardRequest, reply func(option int))
	PartyTarget(req TargetRequest, reply func(member int))
	Release(req ReleaseRequest, reply func(member int))
}

// EnemyAI picks enemy moves.
type EnemyAI interface {
	// ChooseMove returns the move self uses against foe, one of usable. ok is
	// false when the default random choice should be used.
	ChooseMove(self, foe *battler.Combatant, usable []string) (moveID string, ok bool)
}
