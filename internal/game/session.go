package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/annel0/arstack/internal/cue"
	"github.com/annel0/arstack/internal/eventbus"
	"github.com/annel0/arstack/internal/highscore"
	"github.com/annel0/arstack/internal/logging"
	"github.com/annel0/arstack/internal/replay"
	"github.com/annel0/arstack/internal/stack"
)

var (
	ErrInvalidFrames   = errors.New("число кадров должно быть положительным")
	ErrTooManyFrames   = errors.New("слишком много кадров за один запрос")
	ErrSessionNotFound = errors.New("сессия не найдена")
	ErrSessionLimit    = errors.New("достигнут лимит сессий")
)

var tracer = otel.Tracer("github.com/annel0/arstack/internal/game")

// Deps внешние зависимости сессии. Любая, кроме Tracker, может быть nil.
type Deps struct {
	Tracker      *highscore.Tracker
	Bus          eventbus.EventBus
	Cues         cue.Player
	Replays      replay.Store
	Metrics      *Metrics
	Logger       *logging.Logger
	MaxTickBatch int
	Source       string
}

// Session единственный владелец StackState одной партии.
// Tick и Tap сериализуются мьютексом, так что Resolve всегда видит
// согласованный снимок состояния.
type Session struct {
	ID        string
	Player    string
	CreatedAt time.Time

	deps Deps

	mu         sync.Mutex
	state      *stack.StackState
	recorder   replay.Recorder
	lastActive time.Time
}

// TapResult результат нажатия вместе с побочными эффектами
type TapResult struct {
	Outcome   stack.Outcome `json:"outcome"`
	HighScore int           `json:"high_score"`
	NewRecord bool          `json:"new_record"`
	ReplayID  string        `json:"replay_id,omitempty"`
}

// NewSession создаёт сессию с новой партией
func NewSession(ctx context.Context, id, player string, deps Deps) *Session {
	if deps.Cues == nil {
		deps.Cues = cue.Nop{}
	}
	if deps.Source == "" {
		deps.Source = "arstack"
	}

	now := time.Now()
	s := &Session{
		ID:         id,
		Player:     player,
		CreatedAt:  now,
		deps:       deps,
		state:      stack.NewStackState(),
		lastActive: now,
	}

	deps.Metrics.gameStarted()
	s.publish(ctx, eventbus.EventGameStarted, eventbus.GameEvent{})
	s.logf("🎮 Новая партия %s (игрок %q)", id, player)
	return s
}

// Tick продвигает активный блок на frames кадров.
// После конца партии кадры игнорируются.
func (s *Session) Tick(ctx context.Context, frames int) (View, error) {
	if frames <= 0 {
		return View{}, ErrInvalidFrames
	}
	if s.deps.MaxTickBatch > 0 && frames > s.deps.MaxTickBatch {
		return View{}, fmt.Errorf("%w: %d > %d", ErrTooManyFrames, frames, s.deps.MaxTickBatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	for i := 0; i < frames; i++ {
		if !s.state.Tick() {
			break
		}
		moved++
	}
	s.recorder.Tick(moved)
	s.lastActive = time.Now()

	return s.viewLocked(), nil
}

// Tap разрешает нажатие игрока
func (s *Session) Tap(ctx context.Context) (TapResult, error) {
	ctx, span := tracer.Start(ctx, "session.tap")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", s.ID))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()

	outcome, err := stack.Resolve(s.state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TapResult{}, err
	}
	s.recorder.Tap()

	span.SetAttributes(
		attribute.String("outcome.kind", outcome.Kind.String()),
		attribute.Int("stack.height", s.state.Height),
		attribute.Bool("outcome.perfect", outcome.Perfect),
	)

	cue.Emit(s.deps.Cues, outcome)
	s.deps.Metrics.tap(outcome)

	result := TapResult{Outcome: outcome}

	if outcome.Kind == stack.OutcomeContinue {
		s.publish(ctx, eventbus.EventBlockPlaced, eventbus.GameEvent{
			Height:  s.state.Height,
			Score:   outcome.Score,
			Perfect: outcome.Perfect,
			Bonus:   outcome.BonusApplied,
			Axis:    outcome.Axis.String(),
			Width:   outcome.Surviving.Size.X,
			Depth:   outcome.Surviving.Size.Z,
		})
		if s.deps.Tracker != nil {
			result.HighScore = s.deps.Tracker.CurrentHighScore()
		}
		return result, nil
	}

	s.finishLocked(ctx, outcome, &result)
	return result, nil
}

// finishLocked обрабатывает конец партии: рекорд, событие, запись replay
func (s *Session) finishLocked(ctx context.Context, outcome stack.Outcome, result *TapResult) {
	height := outcome.FinalHeight

	if s.deps.Tracker != nil {
		updated, err := s.deps.Tracker.RecordFinalHeight(ctx, height)
		if err != nil {
			// Партия уже окончена, ошибку хранилища только логируем
			s.errorf("❌ Не удалось сохранить рекорд %d: %v", height, err)
		}
		result.NewRecord = updated
		result.HighScore = s.deps.Tracker.CurrentHighScore()
		s.deps.Metrics.record(result.HighScore)
	}

	if s.deps.Replays != nil {
		rec := replay.Replay{
			ID:          NewReplayID(),
			Player:      s.Player,
			Taps:        s.recorder.Taps(),
			FinalHeight: height,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.deps.Replays.Save(ctx, rec); err != nil {
			s.errorf("❌ Не удалось сохранить replay %s: %v", rec.ID, err)
		} else {
			result.ReplayID = rec.ID
		}
	}

	s.publish(ctx, eventbus.EventGameOver, eventbus.GameEvent{
		Height:      s.state.Height,
		FinalHeight: height,
		HighScore:   result.HighScore,
		NewRecord:   result.NewRecord,
	})
	if result.NewRecord {
		s.publish(ctx, eventbus.EventHighScoreBeaten, eventbus.GameEvent{
			Height:    height,
			HighScore: result.HighScore,
		})
	}

	s.logf("🏁 Партия %s окончена: высота %d, рекорд %d", s.ID, height, result.HighScore)
}

// Reset начинает новую партию в той же сессии
func (s *Session) Reset(ctx context.Context) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Reset()
	s.recorder.Reset()
	s.lastActive = time.Now()
	s.deps.Metrics.gameStarted()
	s.publish(ctx, eventbus.EventGameReset, eventbus.GameEvent{})

	return s.viewLocked()
}

// Snapshot возвращает копию состояния для отображения
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// CloneState возвращает независимую копию состояния движка (для бота и отладки)
func (s *Session) CloneState() *stack.StackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// idleSince возвращает время последнего действия
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) viewLocked() View {
	v := newView(s.ID, s.state.Clone())
	if s.deps.Tracker != nil {
		v.HighScore = s.deps.Tracker.CurrentHighScore()
	}
	return v
}

func (s *Session) publish(ctx context.Context, eventType string, ev eventbus.GameEvent) {
	if s.deps.Bus == nil {
		return
	}
	ev.SessionID = s.ID

	env, err := eventbus.NewGameEnvelope(s.deps.Source, eventType, ev)
	if err != nil {
		s.errorf("❌ %v", err)
		return
	}
	if err := s.deps.Bus.Publish(ctx, env); err != nil {
		s.errorf("❌ Не удалось опубликовать %s: %v", eventType, err)
	}
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Info(format, args...)
		return
	}
	logging.Info(format, args...)
}

func (s *Session) errorf(format string, args ...interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Error(format, args...)
		return
	}
	logging.Error(format, args...)
}
