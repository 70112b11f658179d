package battle

import "go.uber.org/zap"

// MessageOptions tunes how a message is shown.
type MessageOptions struct {
	// Prompt asks the presenter to wait for an acknowledgement before done.
	Prompt bool
}

// EffectKind names a presentation effect.
type EffectKind string

const (
	EffectSummon  EffectKind = "summon"
	EffectRecall  EffectKind = "recall"
	EffectMove    EffectKind = "move"
	EffectFaint   EffectKind = "faint"
	EffectThrow   EffectKind = "throw"
	EffectShake   EffectKind = "shake"
	EffectCapture EffectKind = "capture"
	EffectLevelUp EffectKind = "level_up"
)

// Effect describes one visual or audio beat. Source and Target are combatant ids.
type Effect struct {
	Kind   EffectKind
	Source string
	Target string
	Move   string
}

// Presenter renders battle output. Each call must eventually invoke done,
// from any goroutine; the engine force-advances after its watchdog timeout
// when it does not.
type Presenter interface {
	ShowMessage(text string, opts MessageOptions, done func())
	PlayEffect(fx Effect, done func())
}

// NopPresenter completes every request immediately.
type NopPresenter struct{}

// ShowMessage calls done.
func (NopPresenter) ShowMessage(_ string, _ MessageOptions, done func()) { done() }

// PlayEffect calls done.
func (NopPresenter) PlayEffect(_ Effect, done func()) { done() }

// LogPresenter writes every message and effect to a zap logger and completes
// immediately. It drives the headless simulator.
type LogPresenter struct {
	Logger *zap.Logger
}

// ShowMessage logs text at Info and calls done.
func (p LogPresenter) ShowMessage(text string, _ MessageOptions, done func()) {
	p.Logger.Info(text)
	done()
}

// PlayEffect logs fx at Debug and calls done.
func (p LogPresenter) PlayEffect(fx Effect, done func()) {
	p.Logger.Debug("effect",
		zap.String("kind", string(fx.Kind)),
		zap.String("source", fx.Source),
		zap.String("target", fx.Target),
		zap.String("move", fx.Move),
	)
	done()
}
