// Package replay записывает действия игрока и воспроизводит партию.
// Движок детерминирован, поэтому партия полностью задаётся числом кадров
// между нажатиями.
package replay

import (
	"errors"
	"fmt"
	"time"

	"github.com/annel0/arstack/internal/stack"
)

var (
	ErrNotFound = errors.New("replay не найден")
	ErrMismatch = errors.New("воспроизведение не совпало с записью")
)

// Replay запись одной завершённой партии
type Replay struct {
	ID          string    `json:"id"`
	Player      string    `json:"player,omitempty"`
	Taps        []int     `json:"taps"` // Кадров перед каждым нажатием
	FinalHeight int       `json:"final_height"`
	CreatedAt   time.Time `json:"created_at"`
}

// Result итог воспроизведения
type Result struct {
	FinalHeight    int  `json:"final_height"`
	Over           bool `json:"over"`
	Perfects       int  `json:"perfects"`
	Bonuses        int  `json:"bonuses"`
	TapsResolved   int  `json:"taps_resolved"`
	TicksSimulated int  `json:"ticks_simulated"`
}

// Play прогоняет запись на новом состоянии.
// Лишние нажатия после конца партии игнорируются.
func Play(taps []int) (Result, *stack.StackState) {
	state := stack.NewStackState()
	var res Result

	for _, frames := range taps {
		if state.Over {
			break
		}
		for i := 0; i < frames; i++ {
			state.Tick()
		}
		res.TicksSimulated += frames

		outcome, err := stack.Resolve(state)
		if err != nil {
			break
		}
		res.TapsResolved++

		switch outcome.Kind {
		case stack.OutcomeGameOver:
			res.FinalHeight = outcome.FinalHeight
			res.Over = true
		default:
			if outcome.Perfect {
				res.Perfects++
			}
			if outcome.BonusApplied {
				res.Bonuses++
			}
		}
	}

	if !res.Over {
		res.FinalHeight = state.Height
	}
	return res, state
}

// Verify воспроизводит партию и сверяет итоговую высоту
func Verify(r Replay) (Result, error) {
	res, _ := Play(r.Taps)
	if !res.Over || res.FinalHeight != r.FinalHeight {
		return res, fmt.Errorf("%w: записано %d, получено %d", ErrMismatch, r.FinalHeight, res.FinalHeight)
	}
	return res, nil
}

// Recorder накапливает кадры и нажатия текущей партии.
// Не потокобезопасен, владелец Session.
type Recorder struct {
	pending int
	taps    []int
}

// Tick учитывает n прошедших кадров
func (r *Recorder) Tick(n int) {
	r.pending += n
}

// Tap фиксирует нажатие
func (r *Recorder) Tap() {
	r.taps = append(r.taps, r.pending)
	r.pending = 0
}

// Taps возвращает копию записанных нажатий
func (r *Recorder) Taps() []int {
	out := make([]int, len(r.taps))
	copy(out, r.taps)
	return out
}

// Reset очищает запись
func (r *Recorder) Reset() {
	r.pending = 0
	r.taps = nil
}
