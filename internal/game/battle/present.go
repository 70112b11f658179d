package battle

import "github.com/cory-johannsen/monbattle/internal/game/phase"

// MessagePhase shows one message and waits for the presenter.
type MessagePhase struct {
	phase.Base
	e    *Engine
	Text string
	Opts MessageOptions
}

func newMessagePhase(e *Engine, text string) *MessagePhase {
	return &MessagePhase{e: e, Text: text}
}

// Name returns "message".
func (p *MessagePhase) Name() string { return "message" }

// Start hands the text to the presenter.
func (p *MessagePhase) Start() {
	p.e.presenter.ShowMessage(p.Text, p.Opts, p.e.await("message", func() { p.e.end(p) }))
}

// EffectPhase plays one effect and waits for the presenter.
type EffectPhase struct {
	phase.Base
	e      *Engine
	Effect Effect
}

func newEffectPhase(e *Engine, fx Effect) *EffectPhase {
	return &EffectPhase{e: e, Effect: fx}
}

// Name returns "effect".
func (p *EffectPhase) Name() string { return "effect" }

// Start hands the effect to the presenter.
func (p *EffectPhase) Start() {
	p.e.presenter.PlayEffect(p.Effect, p.e.await(string(p.Effect.Kind), func() { p.e.end(p) }))
}
