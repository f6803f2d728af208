// Package bot реализует автоматического игрока для симуляций и демо-режима.
package bot

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/arstack/internal/stack"
)

const (
	// Полный цикл качания: 2 * (2B / S) кадров с запасом
	searchTicks = 240
	// Максимальная ошибка руки в кадрах при skill = 0
	maxJitterTicks = 18
	// Шаг по шуму между нажатиями
	noiseStep = 0.37
	// Расстояния, различающиеся меньше, считаются равными: выигрывает более ранний кадр
	tieEpsilon = 1e-12
)

// Bot выбирает момент нажатия.
// Идеальный момент ищется на копии состояния, затем добавляется
// «дрожание руки» по шуму Перлина, зависящее от мастерства.
type Bot struct {
	skill float64
	noise *perlin.Perlin
	taps  int
}

// New создаёт бота. skill в диапазоне 0.0 - 1.0, при 1.0 бот не ошибается
func New(skill float64, seed int64) *Bot {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав

	return &Bot{
		skill: math.Max(0, math.Min(1, skill)),
		noise: perlin.NewPerlin(alpha, beta, n, seed),
	}
}

// BestTicks возвращает число кадров до момента минимального смещения.
// При равных смещениях выбирается самый ранний кадр. Состояние не изменяется.
func BestTicks(s *stack.StackState) int {
	if s.Over || s.Current == nil {
		return 0
	}

	probe := s.Clone()
	axis := stack.ActiveAxis(probe.Height)
	target := probe.Previous.Position.Get(axis)

	best, bestDist := 0, math.Abs(probe.Current.Position.Get(axis)-target)
	for i := 1; i <= searchTicks; i++ {
		probe.Tick()
		if d := math.Abs(probe.Current.Position.Get(axis) - target); d < bestDist-tieEpsilon {
			best, bestDist = i, d
		}
	}
	return best
}

// NextTap возвращает, сколько кадров подождать перед нажатием
func (b *Bot) NextTap(s *stack.StackState) int {
	ticks := BestTicks(s)
	b.taps++

	if b.skill >= 1 {
		return ticks
	}

	n := b.noise.Noise1D(float64(b.taps) * noiseStep)
	n = math.Max(-1, math.Min(1, n*2))
	jitter := int(math.Round(n * (1 - b.skill) * maxJitterTicks))

	if ticks+jitter < 0 {
		return 0
	}
	return ticks + jitter
}

// Play доигрывает партию до конца и возвращает итоговое состояние и нажатия.
// maxTaps ограничивает длину партии для идеального бота.
func (b *Bot) Play(s *stack.StackState, maxTaps int) []int {
	var taps []int
	for !s.Over && len(taps) < maxTaps {
		wait := b.NextTap(s)
		for i := 0; i < wait; i++ {
			s.Tick()
		}
		if _, err := stack.Resolve(s); err != nil {
			break
		}
		taps = append(taps, wait)
	}
	return taps
}
