package battle

import (
	"errors"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/reward"
)

var (
	// ErrBusy is returned by Snapshot while a turn is being resolved.
	ErrBusy = errors.New("battle: snapshot only between turns")
	// ErrStarted is returned by Restore once the engine has started.
	ErrStarted = errors.New("battle: engine already started")
)

// Snapshot is the plain-data state of a run, taken between turns.
type Snapshot struct {
	SessionID string             `json:"session_id"`
	Wave      int                `json:"wave"`
	Turn      int                `json:"turn"`
	Party     []battler.Snapshot `json:"party"`
	// Active is the party index of the player's active member, or -1.
	Active      int                `json:"active"`
	Enemy       []battler.Snapshot `json:"enemy,omitempty"`
	EnemyActive int                `json:"enemy_active"`
	// Participants are the ids of party members with exp credit this encounter.
	Participants []string        `json:"participants,omitempty"`
	Holdings     reward.Holdings `json:"holdings"`
	Outcome      Outcome         `json:"outcome"`
}

// Snapshot captures the run. It must be called on the worker, either while
// idle or while waiting for a turn command.
//
// Postcondition: Restore of the result on a fresh engine resumes at the same command.
func (e *Engine) Snapshot() (Snapshot, error) {
	if cur := e.sched.Current(); cur != nil {
		if _, ok := cur.(*CommandPhase); !ok || e.sched.Len() > 0 {
			return Snapshot{}, ErrBusy
		}
	}
	s := Snapshot{
		SessionID:   e.sessionID,
		Active:      -1,
		EnemyActive: -1,
		Holdings:    *e.holdings.Clone(),
		Outcome:     e.outcome,
	}
	for i, c := range e.party {
		s.Party = append(s.Party, c.Snapshot())
		if e.battle != nil && e.battle.Field[battler.SidePlayer] == c {
			s.Active = i
		}
	}
	if b := e.battle; b != nil {
		s.Wave, s.Turn = b.Wave, b.Turn
		s.Participants = append([]string(nil), b.Participants...)
		for i, c := range b.Enemy {
			s.Enemy = append(s.Enemy, c.Snapshot())
			if b.Field[battler.SideEnemy] == c {
				s.EnemyActive = i
			}
		}
	}
	return s, nil
}

// Restore replaces the engine state with s. Start then resumes the battle
// at its next command, or opens the next encounter if none was in progress.
//
// Precondition: Start has not been called.
func (e *Engine) Restore(s Snapshot) error {
	if e.started {
		return ErrStarted
	}
	e.sessionID = s.SessionID
	e.outcome = s.Outcome
	e.holdings = s.Holdings.Clone()
	e.party = make([]*battler.Combatant, len(s.Party))
	for i, cs := range s.Party {
		e.party[i] = battler.FromSnapshot(cs)
	}
	e.battle = nil
	if s.Wave == 0 {
		return nil
	}
	enemy := make([]*battler.Combatant, len(s.Enemy))
	for i, cs := range s.Enemy {
		enemy[i] = battler.FromSnapshot(cs)
	}
	b := NewBattle(s.Wave, enemy)
	b.Turn = s.Turn
	b.Participants = append([]string(nil), s.Participants...)
	if s.Active >= 0 && s.Active < len(e.party) {
		b.Field[battler.SidePlayer] = e.party[s.Active]
	}
	if s.EnemyActive >= 0 && s.EnemyActive < len(enemy) {
		b.Field[battler.SideEnemy] = enemy[s.EnemyActive]
	}
	e.battle = b
	return nil
}
