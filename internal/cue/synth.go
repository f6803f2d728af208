package cue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
)

// waveShape форма волны генератора
type waveShape int

const (
	waveSine waveShape = iota
	waveSquare
	waveSaw
)

// tone отрезок с линейным изменением частоты
type tone struct {
	from, to float64
	duration time.Duration
	shape    waveShape
	gain     float64
}

// Партитуры сигналов
var scores = map[Cue][]tone{
	// Глухой удар при срезе
	CueSlice: {
		{from: 180, to: 90, duration: 110 * time.Millisecond, shape: waveSaw, gain: 0.8},
	},
	// Восходящий двухнотный звон
	CuePerfect: {
		{from: 880, to: 880, duration: 90 * time.Millisecond, shape: waveSine, gain: 0.7},
		{from: 1320, to: 1320, duration: 160 * time.Millisecond, shape: waveSine, gain: 0.7},
	},
	// Нисходящий гудок
	CueGameOver: {
		{from: 440, to: 330, duration: 220 * time.Millisecond, shape: waveSquare, gain: 0.5},
		{from: 330, to: 196, duration: 380 * time.Millisecond, shape: waveSquare, gain: 0.5},
	},
}

// sweep генерирует тон с переменной частотой
type sweep struct {
	t        tone
	rate     beep.SampleRate
	total    int
	position int
	phase    float64
}

func newSweep(t tone, rate beep.SampleRate) *sweep {
	return &sweep{t: t, rate: rate, total: rate.N(t.duration)}
}

func (s *sweep) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if s.position >= s.total {
			return i, i > 0
		}

		progress := float64(s.position) / float64(s.total)
		freq := s.t.from + (s.t.to-s.t.from)*progress

		var val float64
		switch s.t.shape {
		case waveSine:
			val = math.Sin(2 * math.Pi * s.phase)
		case waveSquare:
			if s.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case waveSaw:
			val = 2 * (s.phase - 0.5)
		}

		// Короткие атака и затухание, чтобы не было щелчков
		env := 1.0
		const edge = 0.08
		if progress < edge {
			env = progress / edge
		} else if progress > 1-edge {
			env = (1 - progress) / edge
		}

		val *= env * s.t.gain
		samples[i][0] = val
		samples[i][1] = val

		s.phase += freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.position++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// Synth синтезирует сигналы в PCM.
type Synth struct {
	rate   beep.SampleRate
	volume float64

	mu    sync.Mutex
	cache map[Cue][]byte
}

// NewSynth создаёт синтезатор. volume в диапазоне 0.0 - 1.0
func NewSynth(sampleRate int, volume float64) *Synth {
	return &Synth{
		rate:   beep.SampleRate(sampleRate),
		volume: volume,
		cache:  make(map[Cue][]byte),
	}
}

// SampleRate частота дискретизации синтезатора
func (s *Synth) SampleRate() beep.SampleRate { return s.rate }

// Duration длительность сигнала
func (s *Synth) Duration(c Cue) time.Duration {
	var d time.Duration
	for _, t := range scores[c] {
		d += t.duration
	}
	return d
}

// Streamer возвращает новый поток для сигнала
func (s *Synth) Streamer(c Cue) (beep.Streamer, error) {
	score, ok := scores[c]
	if !ok {
		return nil, fmt.Errorf("нет партитуры для %s", c)
	}

	parts := make([]beep.Streamer, 0, len(score))
	for _, t := range score {
		parts = append(parts, newSweep(t, s.rate))
	}
	return withVolume(beep.Seq(parts...), s.volume), nil
}

// WAV возвращает сигнал в формате WAV (16 бит, моно). Результат кешируется.
func (s *Synth) WAV(c Cue) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.cache[c]; ok {
		return data, nil
	}

	streamer, err := s.Streamer(c)
	if err != nil {
		return nil, err
	}

	buf := &seekBuffer{}
	format := beep.Format{SampleRate: s.rate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(buf, streamer, format); err != nil {
		return nil, fmt.Errorf("ошибка кодирования WAV: %w", err)
	}

	s.cache[c] = buf.Bytes()
	return s.cache[c], nil
}

// withVolume log2(0) это -Inf, поэтому нулевую громкость делаем тишиной
func withVolume(st beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: st, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: st, Base: 2, Volume: math.Log2(vol)}
}

// seekBuffer io.WriteSeeker в памяти; wav.Encode дописывает заголовок после данных
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(b.pos) + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	default:
		return 0, errors.New("seekBuffer: неверный whence")
	}
	if next < 0 {
		return 0, errors.New("seekBuffer: отрицательная позиция")
	}
	b.pos = int(next)
	return next, nil
}

func (b *seekBuffer) Bytes() []byte {
	return bytes.Clone(b.data)
}
