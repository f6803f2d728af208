package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arstack/internal/cue"
	"github.com/annel0/arstack/internal/eventbus"
	"github.com/annel0/arstack/internal/highscore"
	"github.com/annel0/arstack/internal/replay"
	"github.com/annel0/arstack/internal/stack"
)

type fixture struct {
	deps    Deps
	bus     eventbus.EventBus
	cues    *cue.Recorder
	replays *replay.MemoryStore

	mu     sync.Mutex
	events []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tracker, err := highscore.NewTracker(context.Background(), highscore.NewMemoryRepo())
	require.NoError(t, err)

	f := &fixture{
		bus:     eventbus.NewMemoryBus(64),
		cues:    &cue.Recorder{},
		replays: replay.NewMemoryStore(),
	}
	_, err = f.bus.Subscribe(context.Background(), eventbus.Filter{}, func(ctx context.Context, ev *eventbus.Envelope) {
		f.mu.Lock()
		f.events = append(f.events, ev.EventType)
		f.mu.Unlock()
	})
	require.NoError(t, err)

	f.deps = Deps{
		Tracker:      tracker,
		Bus:          f.bus,
		Cues:         f.cues,
		Replays:      f.replays,
		Metrics:      NewMetrics(prometheus.NewRegistry()),
		MaxTickBatch: 600,
	}
	return f
}

// flush дожидается доставки всех событий
func (f *fixture) flush(t *testing.T) []string {
	t.Helper()
	require.NoError(t, f.bus.Close())
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func TestSession_ImmediateTapEndsGame(t *testing.T) {
	f := newFixture(t)
	s := NewSession(context.Background(), NewSessionID(), "ann", f.deps)

	res, err := s.Tap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, stack.OutcomeGameOver, res.Outcome.Kind)
	assert.Equal(t, 0, res.Outcome.FinalHeight)
	assert.False(t, res.NewRecord)
	assert.NotEmpty(t, res.ReplayID)

	assert.Equal(t, []cue.Cue{cue.CueGameOver}, f.cues.Cues())
	assert.Equal(t, []cue.Feedback{cue.FeedbackError}, f.cues.Feedbacks())

	_, err = s.Tap(context.Background())
	assert.ErrorIs(t, err, stack.ErrGameOver)

	assert.Equal(t, []string{eventbus.EventGameStarted, eventbus.EventGameOver}, f.flush(t))
}

func TestSession_TwoSlicesThenRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := NewSession(ctx, NewSessionID(), "bob", f.deps)

	for i := 0; i < 2; i++ {
		// 54 кадра: смещение 0.006, больше допуска
		_, err := s.Tick(ctx, 54)
		require.NoError(t, err)

		res, err := s.Tap(ctx)
		require.NoError(t, err)
		assert.Equal(t, stack.OutcomeContinue, res.Outcome.Kind)
		assert.False(t, res.Outcome.Perfect)
		assert.Equal(t, i+2, res.Outcome.Score)
	}

	view := s.Snapshot()
	assert.Equal(t, 2, view.Height)
	assert.Equal(t, 3, view.Score)
	assert.Len(t, view.Tower, 2)

	res, err := s.Tap(ctx)
	require.NoError(t, err)
	assert.Equal(t, stack.OutcomeGameOver, res.Outcome.Kind)
	assert.Equal(t, 2, res.Outcome.FinalHeight)
	assert.True(t, res.NewRecord)
	assert.Equal(t, 2, res.HighScore)
	assert.Equal(t, 2, f.deps.Tracker.CurrentHighScore())

	assert.Equal(t, []cue.Cue{cue.CueSlice, cue.CueSlice, cue.CueGameOver}, f.cues.Cues())
	assert.Equal(t, []cue.Feedback{cue.FeedbackImpact, cue.FeedbackImpact, cue.FeedbackError}, f.cues.Feedbacks())

	// Запись партии воспроизводится с тем же результатом
	rec, err := f.replays.Load(ctx, res.ReplayID)
	require.NoError(t, err)
	assert.Equal(t, []int{54, 54, 0}, rec.Taps)
	assert.Equal(t, "bob", rec.Player)
	_, err = replay.Verify(rec)
	require.NoError(t, err)

	assert.Equal(t, []string{
		eventbus.EventGameStarted,
		eventbus.EventBlockPlaced,
		eventbus.EventBlockPlaced,
		eventbus.EventGameOver,
		eventbus.EventHighScoreBeaten,
	}, f.flush(t))
}

func TestSession_TickValidation(t *testing.T) {
	f := newFixture(t)
	s := NewSession(context.Background(), NewSessionID(), "", f.deps)

	_, err := s.Tick(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidFrames)

	_, err = s.Tick(context.Background(), 601)
	assert.ErrorIs(t, err, ErrTooManyFrames)

	view, err := s.Tick(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, view.Current)
	assert.InDelta(t, -stack.BounceBound+10*stack.StepSpeed, view.Current.Position.Z, 1e-9)
	assert.Equal(t, "z", view.ActiveAxis)
}

func TestSession_TicksAfterGameOverAreIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := NewSession(ctx, NewSessionID(), "", f.deps)

	_, err := s.Tap(ctx)
	require.NoError(t, err)

	view, err := s.Tick(ctx, 5)
	require.NoError(t, err)
	assert.True(t, view.Over)
	assert.Nil(t, view.Current)
}

func TestSession_Reset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := NewSession(ctx, NewSessionID(), "", f.deps)

	_, err := s.Tap(ctx)
	require.NoError(t, err)

	view := s.Reset(ctx)
	assert.False(t, view.Over)
	assert.Equal(t, 0, view.Height)
	assert.Equal(t, 0, view.Score)
	require.NotNil(t, view.Current)
	assert.Equal(t, -stack.BounceBound, view.Current.Position.Z)

	assert.Contains(t, f.flush(t), eventbus.EventGameReset)
}

func TestSession_SnapshotIsCopy(t *testing.T) {
	f := newFixture(t)
	s := NewSession(context.Background(), NewSessionID(), "", f.deps)

	view := s.Snapshot()
	view.Current.Position.Z = 42

	assert.Equal(t, -stack.BounceBound, s.Snapshot().Current.Position.Z)
}

func TestSession_WithoutOptionalDeps(t *testing.T) {
	tracker, err := highscore.NewTracker(context.Background(), highscore.NewMemoryRepo())
	require.NoError(t, err)

	s := NewSession(context.Background(), NewSessionID(), "", Deps{Tracker: tracker})
	res, err := s.Tap(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.ReplayID)
}

func TestSession_ConcurrentTickAndTap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := NewSession(ctx, NewSessionID(), "", f.deps)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = s.Tick(ctx, 3)
				_, _ = s.Tap(ctx)
			}
		}()
	}
	wg.Wait()

	view := s.Snapshot()
	assert.True(t, view.Over)
	f.flush(t)
}

func TestManager(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.deps, 2, time.Minute)
	ctx := context.Background()

	a, err := m.Create(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, ValidateID(a.ID, PrefixGame))

	b, err := m.Create(ctx, "b")
	require.NoError(t, err)

	_, err = m.Create(ctx, "c")
	assert.ErrorIs(t, err, ErrSessionLimit)
	assert.Equal(t, 2, m.Count())
	assert.Len(t, m.IDs(), 2)

	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, m.Delete(b.ID))
	_, err = m.Get(b.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(b.ID), ErrSessionNotFound)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, m.Count())

	f.flush(t)
}

func TestValidateID(t *testing.T) {
	require.NoError(t, ValidateID(NewReplayID(), PrefixReplay))
	assert.Error(t, ValidateID(NewReplayID(), PrefixGame))
	assert.Error(t, ValidateID("not-an-id", PrefixGame))
}

func TestSession_CloneStateIsIndependent(t *testing.T) {
	f := newFixture(t)
	s := NewSession(context.Background(), NewSessionID(), "ann", f.deps)

	st := s.CloneState()
	st.Tick()
	st.Over = true

	view := s.Snapshot()
	assert.False(t, view.Over)
	assert.Equal(t, -stack.BounceBound, view.Current.Position.Z)
}
