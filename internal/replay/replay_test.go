package replay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arstack/internal/bot"
	"github.com/annel0/arstack/internal/stack"
)

// recordedGame играет партию ботом и возвращает запись
func recordedGame(t *testing.T, seed int64) Replay {
	t.Helper()

	s := stack.NewStackState()
	taps := bot.New(0.2, seed).Play(s, 5000)
	require.True(t, s.Over, "неумелый бот должен проиграть")

	return Replay{
		ID:          "game_test",
		Taps:        taps,
		FinalHeight: s.Height,
		CreatedAt:   time.Now(),
	}
}

func TestPlay_ImmediateTapLoses(t *testing.T) {
	res, state := Play([]int{0})

	assert.True(t, res.Over)
	assert.Equal(t, 0, res.FinalHeight)
	assert.Equal(t, 1, res.TapsResolved)
	assert.True(t, state.Over)
}

func TestPlay_IgnoresTapsAfterGameOver(t *testing.T) {
	res, _ := Play([]int{0, 55, 55})
	assert.Equal(t, 1, res.TapsResolved)
	assert.Equal(t, 0, res.TicksSimulated)
}

func TestPlay_Unfinished(t *testing.T) {
	res, state := Play([]int{55})
	assert.False(t, res.Over)
	assert.Equal(t, 1, res.FinalHeight)
	assert.Equal(t, 1, state.Height)
	assert.Equal(t, 55, res.TicksSimulated)
}

func TestVerify_BotGame(t *testing.T) {
	r := recordedGame(t, 11)

	res, err := Verify(r)
	require.NoError(t, err)
	assert.Equal(t, r.FinalHeight, res.FinalHeight)
	assert.Equal(t, len(r.Taps), res.TapsResolved)
}

func TestVerify_Tampered(t *testing.T) {
	r := recordedGame(t, 5)
	r.FinalHeight += 3

	_, err := Verify(r)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	rec.Tick(10)
	rec.Tick(5)
	rec.Tap()
	rec.Tap()
	rec.Tick(3)

	assert.Equal(t, []int{15, 0}, rec.Taps())

	rec.Reset()
	assert.Empty(t, rec.Taps())
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC().Truncate(time.Millisecond)
	older := Replay{ID: "game_a", Player: "ann", Taps: []int{55, 30}, FinalHeight: 1, CreatedAt: now.Add(-time.Minute)}
	newer := Replay{ID: "game_b", Player: "bob", Taps: []int{0}, FinalHeight: 0, CreatedAt: now}

	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	loaded, err := store.Load(ctx, "game_a")
	require.NoError(t, err)
	assert.Equal(t, older.Taps, loaded.Taps)
	assert.Equal(t, "ann", loaded.Player)
	assert.True(t, older.CreatedAt.Equal(loaded.CreatedAt))

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "game_b", list[0].ID)

	list, err = store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestBadgerStore(t *testing.T) {
	store, err := NewBadgerStore("")
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)

	assert.Error(t, store.Save(context.Background(), Replay{}))
}
