package cue

import (
	"sync"

	"github.com/annel0/arstack/internal/logging"
)

// Nop игнорирует все сигналы
type Nop struct{}

func (Nop) PlayCue(Cue)              {}
func (Nop) TriggerFeedback(Feedback) {}

// LogPlayer пишет сигналы в лог компонента
type LogPlayer struct {
	logger *logging.Logger
}

// NewLogPlayer создаёт LogPlayer; nil logger означает глобальный лог
func NewLogPlayer(logger *logging.Logger) *LogPlayer {
	return &LogPlayer{logger: logger}
}

func (p *LogPlayer) PlayCue(c Cue) {
	if p.logger != nil {
		p.logger.Debug("🔊 cue=%s", c)
		return
	}
	logging.Debug("🔊 cue=%s", c)
}

func (p *LogPlayer) TriggerFeedback(f Feedback) {
	if p.logger != nil {
		p.logger.Debug("📳 feedback=%s", f)
		return
	}
	logging.Debug("📳 feedback=%s", f)
}

// Multi рассылает сигналы нескольким плеерам
type Multi []Player

func (m Multi) PlayCue(c Cue) {
	for _, p := range m {
		p.PlayCue(c)
	}
}

func (m Multi) TriggerFeedback(f Feedback) {
	for _, p := range m {
		p.TriggerFeedback(f)
	}
}

// Event запись Recorder
type Event struct {
	Cue      *Cue      `json:"cue,omitempty"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Recorder запоминает сигналы по порядку.
// Используется в тестах и для ответа REST API.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) PlayCue(c Cue) {
	r.mu.Lock()
	r.events = append(r.events, Event{Cue: &c})
	r.mu.Unlock()
}

func (r *Recorder) TriggerFeedback(f Feedback) {
	r.mu.Lock()
	r.events = append(r.events, Event{Feedback: &f})
	r.mu.Unlock()
}

// Events возвращает копию записанных сигналов
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Cues возвращает только звуковые сигналы
func (r *Recorder) Cues() []Cue {
	var out []Cue
	for _, ev := range r.Events() {
		if ev.Cue != nil {
			out = append(out, *ev.Cue)
		}
	}
	return out
}

// Feedbacks возвращает только тактильные сигналы
func (r *Recorder) Feedbacks() []Feedback {
	var out []Feedback
	for _, ev := range r.Events() {
		if ev.Feedback != nil {
			out = append(out, *ev.Feedback)
		}
	}
	return out
}

// Drain возвращает записанные сигналы и очищает буфер
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}
