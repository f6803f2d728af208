package sim

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{Games: 0, MaxTaps: 10})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Run(context.Background(), Config{Games: 1, MaxTaps: 10, Skill: 1.5})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRun_PerfectBotReachesCap(t *testing.T) {
	rep, err := Run(context.Background(), Config{Games: 8, Workers: 3, Skill: 1, Seed: 1, MaxTaps: 25})
	require.NoError(t, err)

	assert.Equal(t, 8, rep.Games)
	assert.Equal(t, 8, rep.Unfinished)
	assert.Equal(t, 25.0, rep.Mean)
	assert.Equal(t, 0.0, rep.Std)
	assert.Equal(t, 25, rep.Min)
	assert.Equal(t, 25, rep.Max)
	assert.Equal(t, 8*25, rep.Taps)
	assert.Equal(t, rep.CILo, rep.CIHi)
}

func TestRun_DeterministicAcrossWorkers(t *testing.T) {
	cfg := Config{Games: 12, Workers: 1, Skill: 0.3, Seed: 99, MaxTaps: 500}
	a, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Workers = 4
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Mean, b.Mean)
	assert.Equal(t, a.Max, b.Max)
	assert.Equal(t, a.BestSeed, b.BestSeed)
	assert.Equal(t, a.Perfects, b.Perfects)
}

func TestRun_ClumsyBotStatistics(t *testing.T) {
	rep, err := Run(context.Background(), Config{Games: 20, Skill: 0, Seed: 5, MaxTaps: 10000})
	require.NoError(t, err)

	assert.LessOrEqual(t, float64(rep.Min), rep.Median)
	assert.LessOrEqual(t, rep.Median, rep.P90)
	assert.LessOrEqual(t, rep.P90, float64(rep.Max))
	assert.LessOrEqual(t, rep.CILo, rep.Mean)
	assert.GreaterOrEqual(t, rep.CIHi, rep.Mean)
	assert.GreaterOrEqual(t, rep.BestSeed, int64(5))
	assert.Less(t, rep.BestSeed, int64(25))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{Games: 100, Skill: 1, MaxTaps: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlayOne_MatchesReplay(t *testing.T) {
	g := PlayOne(3, 0.5, 77, 1000)
	assert.Equal(t, 3, g.Index)
	assert.Equal(t, len(g.Taps), g.Result.TapsResolved)
}

func TestReport_Print(t *testing.T) {
	rep, err := Run(context.Background(), Config{Games: 2, Skill: 1, MaxTaps: 5})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.Print(&buf))
	out := buf.String()
	assert.Contains(t, out, "Партий")
	assert.Contains(t, out, "Средняя высота")
	assert.Contains(t, out, "Идеальных")
}
