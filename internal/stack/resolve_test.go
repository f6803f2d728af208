package stack

import (
	"testing"

	"github.com/annel0/arstack/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

// stateWithOffset возвращает новую партию, где активный блок сдвинут относительно основания
func stateWithOffset(offset vec.Vec3Float) *StackState {
	s := NewStackState()
	s.Current.Position = vec.Vec3Float{
		X: s.Previous.Position.X + offset.X,
		Y: s.Current.Position.Y,
		Z: s.Previous.Position.Z + offset.Z,
	}
	return s
}

// align ставит активный блок над нижним со сдвигом off по активной оси
func align(s *StackState, off float64) {
	axis := ActiveAxis(s.Height)
	s.Current.Position = s.Current.Position.With(axis, s.Previous.Position.Get(axis)+off)
}

func TestResolve_Scenario_RegularCut(t *testing.T) {
	s := stateWithOffset(vec.Vec3Float{Z: 0.1})

	out, err := Resolve(s)
	require.NoError(t, err)

	assert.Equal(t, OutcomeContinue, out.Kind)
	assert.Equal(t, vec.AxisZ, out.Axis)
	assert.False(t, out.Perfect)
	assert.Equal(t, 0, s.PerfectMatches)
	assert.InDelta(t, 0.1, s.AbsoluteOffset.Z, eps)
	assert.InDelta(t, 0.3, s.NewSize.Z, eps)

	require.NotNil(t, out.Surviving)
	assert.InDelta(t, 0.3, out.Surviving.Size.Z, eps)
	assert.InDelta(t, BaseFootprint, out.Surviving.Size.X, eps, "вторая ось не меняется")
	assert.InDelta(t, 0.05, out.Surviving.Position.Z, eps, "центр сдвигается на offset/2")

	require.NotNil(t, out.Fragment)
	assert.InDelta(t, 0.1, out.Fragment.Size.Z, eps)
	assert.InDelta(t, BaseFootprint, out.Fragment.Size.X, eps)
	assert.Equal(t, BodyDynamic, out.Fragment.Body)

	assert.Equal(t, 1, s.Height)
	assert.Equal(t, 2, out.Score)
	assert.Equal(t, out.Surviving.Position, s.Previous.Position)
	assert.InDelta(t, 0.3, s.Previous.Size.Z, eps)
}

func TestResolve_Scenario_PerfectMatch(t *testing.T) {
	s := stateWithOffset(vec.Vec3Float{Z: 0.003})

	out, err := Resolve(s)
	require.NoError(t, err)

	assert.True(t, out.Perfect)
	assert.False(t, out.BonusApplied)
	assert.Equal(t, 1, s.PerfectMatches)
	assert.Nil(t, out.Fragment, "после привязки отпадать нечему")
	assert.Equal(t, 0.0, s.AbsoluteOffset.Z)
	assert.InDelta(t, BaseFootprint, out.Surviving.Size.Z, eps)
	assert.Equal(t, s.Previous.Position.Z, out.Surviving.Position.Z)
}

func TestResolve_Scenario_GameOver(t *testing.T) {
	s := stateWithOffset(vec.Vec3Float{Z: 0.45})

	out, err := Resolve(s)
	require.NoError(t, err)

	assert.Equal(t, OutcomeGameOver, out.Kind)
	assert.Equal(t, 0, out.FinalHeight)
	assert.Nil(t, out.Surviving)
	assert.Nil(t, out.Fragment)
	require.NotNil(t, out.Falling)
	assert.Equal(t, BodyDynamic, out.Falling.Body)
	assert.InDelta(t, -0.05, s.NewSize.Z, eps)

	assert.True(t, s.Over)
	assert.Nil(t, s.Current)
	assert.Equal(t, 0, s.Height, "высота не растёт при проигрыше")
}

func TestResolve_ExactZeroIsGameOver(t *testing.T) {
	s := stateWithOffset(vec.Vec3Float{Z: 0.5})
	s.Current.Size.Z = 0.5
	s.Previous.Size.Z = 0.5

	out, err := Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGameOver, out.Kind)
}

func TestResolve_GameOverReportsHeightBeforeIncrement(t *testing.T) {
	s := NewStackState()
	for i := 0; i < 4; i++ {
		align(s, 0)
		_, err := Resolve(s)
		require.NoError(t, err)
	}
	require.Equal(t, 4, s.Height)

	align(s, 1)

	out, err := Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGameOver, out.Kind)
	assert.Equal(t, 4, out.FinalHeight)
}

func TestResolve_Errors(t *testing.T) {
	s := NewStackState()
	s.Current = nil
	_, err := Resolve(s)
	assert.ErrorIs(t, err, ErrNoActiveBlock)

	s = stateWithOffset(vec.Vec3Float{Z: 1})
	_, err = Resolve(s)
	require.NoError(t, err)
	_, err = Resolve(s)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestResolve_PerfectStreakResetsOnMiss(t *testing.T) {
	s := NewStackState()
	s.PerfectMatches = 3
	s.Current.Position.Z = 0.02

	out, err := Resolve(s)
	require.NoError(t, err)
	assert.False(t, out.Perfect)
	assert.Equal(t, 0, s.PerfectMatches)
}

func TestResolve_BonusGrowth(t *testing.T) {
	s := stateWithOffset(vec.Vec3Float{Z: 0.001})
	s.PerfectMatches = BonusStreak - 1

	out, err := Resolve(s)
	require.NoError(t, err)

	assert.True(t, out.Perfect)
	assert.True(t, out.BonusApplied)
	assert.Equal(t, BonusStreak, s.PerfectMatches)
	assert.InDelta(t, BaseFootprint+BonusGrowth, out.Surviving.Size.Z, eps)
	assert.InDelta(t, BaseFootprint+BonusGrowth, s.Previous.Size.Z, eps)
}

func TestResolve_NoBonusBelowStreak(t *testing.T) {
	s := stateWithOffset(vec.Vec3Float{Z: 0.001})
	s.PerfectMatches = BonusStreak - 2

	out, err := Resolve(s)
	require.NoError(t, err)

	assert.True(t, out.Perfect)
	assert.False(t, out.BonusApplied)
	assert.InDelta(t, BaseFootprint, out.Surviving.Size.Z, eps)
}

func TestResolve_NoBonusAtSizeLimit(t *testing.T) {
	s := stateWithOffset(vec.Vec3Float{Z: 0.001})
	s.PerfectMatches = 20
	s.Current.Size.Z = BonusSizeLimit
	s.Previous.Size.Z = BonusSizeLimit

	out, err := Resolve(s)
	require.NoError(t, err)

	assert.True(t, out.Perfect)
	assert.False(t, out.BonusApplied)
	assert.InDelta(t, BonusSizeLimit, out.Surviving.Size.Z, eps)
}

func TestResolve_FragmentAbutsSurvivingBlock(t *testing.T) {
	offsets := []float64{-0.35, -0.2, -0.05, -0.0051, 0.0051, 0.05, 0.2, 0.35}

	for _, height := range []int{0, 1} {
		for _, off := range offsets {
			s := NewStackState()
			if height == 1 {
				align(s, 0)
				_, err := Resolve(s)
				require.NoError(t, err)
			}
			axis := ActiveAxis(s.Height)
			align(s, off)
			original := *s.Current

			out, err := Resolve(s)
			require.NoError(t, err)
			require.NotNil(t, out.Fragment, "offset %v", off)

			frag, surv := *out.Fragment, *out.Surviving
			assert.InDelta(t, absf(off), frag.Size.Get(axis), eps, "толщина обломка равна |offset|")

			// Обломок и остаток без зазора и без перекрытия покрывают исходный блок
			lo, hi := surv, frag
			if frag.Min(axis) < surv.Min(axis) {
				lo, hi = frag, surv
			}
			assert.InDelta(t, lo.Max(axis), hi.Min(axis), eps, "стык без зазора, offset %v", off)
			assert.InDelta(t, original.Min(axis), lo.Min(axis), eps)
			assert.InDelta(t, original.Max(axis), hi.Max(axis), eps)
			assert.InDelta(t, original.Size.Get(axis), frag.Size.Get(axis)+surv.Size.Get(axis), eps)

			other := OtherAxis(axis)
			assert.InDelta(t, original.Size.Get(other), frag.Size.Get(other), eps)
			assert.Equal(t, original.Position.Y, frag.Position.Y)
		}
	}
}

func TestResolve_SpawnsNextBlockOnNextAxis(t *testing.T) {
	s := stateWithOffset(vec.Vec3Float{Z: 0.1})
	startY := s.Current.Position.Y

	out, err := Resolve(s)
	require.NoError(t, err)
	require.NotNil(t, out.Next)

	assert.Equal(t, 1, out.Next.Index)
	assert.Equal(t, -BounceBound, out.Next.Position.X, "следующий блок стартует с края оси X")
	assert.Equal(t, out.Surviving.Position.Z, out.Next.Position.Z)
	assert.InDelta(t, startY+BlockHeight, out.Next.Position.Y, eps)
	assert.Equal(t, out.Surviving.Size.X, out.Next.Size.X)
	assert.Equal(t, out.Surviving.Size.Z, out.Next.Size.Z)
	assert.Equal(t, Hue(1), out.Next.Hue)
	assert.Equal(t, *out.Next, *s.Current)

	// Изменение выданной копии не трогает состояние
	out.Next.Position.X = 42
	assert.Equal(t, -BounceBound, s.Current.Position.X)
}

func TestResolve_Compaction(t *testing.T) {
	s := NewStackState()
	for i := 0; i < CompactionHeight; i++ {
		align(s, 0)
		out, err := Resolve(s)
		require.NoError(t, err)
		assert.Nil(t, out.Window, "до высоты %d уплотнения нет", CompactionHeight)
	}

	align(s, 0)
	out, err := Resolve(s)
	require.NoError(t, err)
	require.NotNil(t, out.Window)
	assert.InDelta(t, float64(CompactionHeight-VisibleLayers)*BlockHeight, out.Window.HideBelow, eps)
	assert.Equal(t, -BlockHeight, out.Window.Shift)
	assert.Equal(t, -BlockHeight, s.ViewShift)

	align(s, 0)
	out, err = Resolve(s)
	require.NoError(t, err)
	require.NotNil(t, out.Window)
	assert.InDelta(t, -2*BlockHeight, s.ViewShift, eps)
	assert.True(t, s.Tower[0].Hidden, "нижний блок скрыт")
	assert.False(t, s.Tower[len(s.Tower)-1].Hidden, "верхний блок виден")

	// Проигрыш возвращает башню в исходный вид
	align(s, 5)
	out, err = Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGameOver, out.Kind)
	assert.Equal(t, 0.0, s.ViewShift)
	for _, b := range s.Tower {
		assert.False(t, b.Hidden)
	}
}

func TestStackState_ResetAndScore(t *testing.T) {
	s := stateWithOffset(vec.Vec3Float{Z: 0.1})
	assert.Equal(t, 0, s.Score())

	_, err := Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Score())

	s.Reset()
	assert.Equal(t, 0, s.Height)
	assert.Equal(t, DirPositive, s.Direction)
	assert.Empty(t, s.Tower)
	require.NotNil(t, s.Current)
	assert.Equal(t, -BounceBound, s.Current.Position.Z)
	assert.InDelta(t, BlockHeight*1.5, s.Current.Position.Y, eps)
}

func TestStackState_CloneIsIndependent(t *testing.T) {
	s := NewStackState()
	align(s, 0)
	_, err := Resolve(s)
	require.NoError(t, err)

	c := s.Clone()
	c.Current.Position.X = 7
	c.Tower[0].Hidden = true

	assert.NotEqual(t, 7.0, s.Current.Position.X)
	assert.False(t, s.Tower[0].Hidden)
}

func TestHueAndCull(t *testing.T) {
	assert.Equal(t, 0.0, Hue(0))
	assert.InDelta(t, 15.0/360.0, Hue(1), eps)
	assert.Equal(t, Hue(3), Hue(27))
	assert.True(t, Culled(-10))
	assert.False(t, Culled(-9.99))
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
