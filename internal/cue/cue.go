// Package cue описывает звуковые и тактильные сигналы игры.
// Движок ничего не знает о воспроизведении: сигналы получает внедрённый Player.
package cue

import (
	"fmt"

	"github.com/annel0/arstack/internal/stack"
)

// Cue звуковой сигнал
type Cue int

const (
	CueSlice Cue = iota
	CuePerfect
	CueGameOver
)

var cueNames = [...]string{"slice", "perfect", "gameover"}

func (c Cue) String() string {
	if c < 0 || int(c) >= len(cueNames) {
		return fmt.Sprintf("cue(%d)", int(c))
	}
	return cueNames[c]
}

func (c Cue) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ParseCue разбирает имя сигнала
func ParseCue(name string) (Cue, error) {
	for i, n := range cueNames {
		if n == name {
			return Cue(i), nil
		}
	}
	return 0, fmt.Errorf("неизвестный сигнал %q", name)
}

// AllCues возвращает все сигналы
func AllCues() []Cue {
	return []Cue{CueSlice, CuePerfect, CueGameOver}
}

// Feedback тактильный отклик
type Feedback int

const (
	FeedbackImpact Feedback = iota
	FeedbackSuccess
	FeedbackError
)

func (f Feedback) String() string {
	switch f {
	case FeedbackImpact:
		return "impact"
	case FeedbackSuccess:
		return "success"
	case FeedbackError:
		return "error"
	default:
		return fmt.Sprintf("feedback(%d)", int(f))
	}
}

func (f Feedback) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// Player воспроизводит сигналы. Реализации не должны блокировать вызывающего.
type Player interface {
	PlayCue(c Cue)
	TriggerFeedback(f Feedback)
}

// ForOutcome выбирает пару сигналов для результата нажатия
func ForOutcome(o stack.Outcome) (Cue, Feedback) {
	switch {
	case o.Kind == stack.OutcomeGameOver:
		return CueGameOver, FeedbackError
	case o.Perfect:
		return CuePerfect, FeedbackSuccess
	default:
		return CueSlice, FeedbackImpact
	}
}

// Emit отправляет в p сигналы для результата нажатия
func Emit(p Player, o stack.Outcome) {
	if p == nil {
		return
	}
	c, f := ForOutcome(o)
	p.PlayCue(c)
	p.TriggerFeedback(f)
}
