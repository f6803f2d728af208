// Package device проигрывает игровые сигналы через звуковую карту.
// Требует cgo и системную аудиобиблиотеку, поэтому вынесен из пакета cue:
// серверу и тестам движка он не нужен.
package device

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/annel0/arstack/internal/cue"
	"github.com/annel0/arstack/internal/logging"
)

// Speaker реализует cue.Player поверх beep/speaker.
// Тактильного отклика на десктопе нет, поэтому TriggerFeedback только логируется.
type Speaker struct {
	synth *cue.Synth
	mixer *beep.Mixer

	mu          sync.Mutex
	initialized bool
}

var _ cue.Player = (*Speaker)(nil)

// NewSpeaker инициализирует speaker с частотой синтезатора
func NewSpeaker(synth *cue.Synth) (*Speaker, error) {
	p := &Speaker{synth: synth, mixer: &beep.Mixer{}}

	rate := synth.SampleRate()
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return p, nil
}

func (p *Speaker) PlayCue(c cue.Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	streamer, err := p.synth.Streamer(c)
	if err != nil {
		logging.Warn("⚠️ Не удалось синтезировать %s: %v", c, err)
		return
	}

	speaker.Lock()
	p.mixer.Add(streamer)
	speaker.Unlock()
}

func (p *Speaker) TriggerFeedback(f cue.Feedback) {
	logging.Trace("📳 feedback=%s", f)
}

// Close останавливает все звуки
func (p *Speaker) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	p.initialized = false
}
