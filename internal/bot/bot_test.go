package bot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arstack/internal/stack"
)

func TestBestTicks_FirstBlock(t *testing.T) {
	s := stack.NewStackState()

	// Блок стартует в -0.6 и идёт к 0 со скоростью 0.011: ближе всего на 55-м кадре
	assert.Equal(t, 55, BestTicks(s))
	assert.Equal(t, -stack.BounceBound, s.Current.Position.Z, "состояние не должно меняться")
}

func TestBestTicks_EarliestOnTie(t *testing.T) {
	s := stack.NewStackState()
	probe := s.Clone()

	// Кадры 55 и 165 отстоят от цели одинаково с точностью до шума округления
	var z55, z165 float64
	for i := 1; i <= 165; i++ {
		probe.Tick()
		switch i {
		case 55:
			z55 = probe.Current.Position.Z
		case 165:
			z165 = probe.Current.Position.Z
		}
	}
	require.InDelta(t, math.Abs(z55), math.Abs(z165), 1e-12)
	assert.Equal(t, 55, BestTicks(s))
}

func TestFirstBlockCannotBePerfect(t *testing.T) {
	s := stack.NewStackState()
	ticks := BestTicks(s)

	// Из -0.6 с шагом 0.011 блок проходит мимо цели на 0.005 с лишним
	for i := 0; i < ticks; i++ {
		s.Tick()
	}
	assert.Greater(t, math.Abs(s.Current.Position.Z), stack.PerfectTolerance)

	out, err := stack.Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, stack.OutcomeContinue, out.Kind)
	assert.False(t, out.Perfect)
	assert.NotNil(t, out.Fragment)
	assert.Equal(t, 0, s.PerfectMatches)
}

func TestBestTicks_NoActiveBlock(t *testing.T) {
	s := stack.NewStackState()
	s.Over = true
	assert.Equal(t, 0, BestTicks(s))
}

func TestPerfectBotKeepsFootprint(t *testing.T) {
	s := stack.NewStackState()
	b := New(1, 7)

	taps := b.Play(s, 30)
	require.Len(t, taps, 30)
	assert.False(t, s.Over)
	assert.Equal(t, 30, s.Height)

	// Шаг сетки 0.011, поэтому за нажатие теряется не больше половины шага
	assert.Greater(t, s.Previous.Size.X, 0.3)
	assert.Greater(t, s.Previous.Size.Z, 0.3)
}

func TestClumsyBotEventuallyLoses(t *testing.T) {
	s := stack.NewStackState()
	b := New(0, 42)

	taps := b.Play(s, 10000)
	assert.True(t, s.Over)
	assert.NotEmpty(t, taps)
	assert.Less(t, len(taps), 10000)
}

func TestNextTapJitterBounded(t *testing.T) {
	b := New(0.5, 3)
	s := stack.NewStackState()
	best := BestTicks(s)

	for i := 0; i < 50; i++ {
		wait := b.NextTap(s)
		assert.GreaterOrEqual(t, wait, 0)
		assert.LessOrEqual(t, math.Abs(float64(wait-best)), float64(maxJitterTicks)/2+1)
	}
}

func TestSkillClamped(t *testing.T) {
	assert.Equal(t, 1.0, New(3, 1).skill)
	assert.Equal(t, 0.0, New(-1, 1).skill)
}
