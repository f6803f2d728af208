// Package sim прогоняет множество партий ботами параллельно и собирает статистику высот.
package sim

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/annel0/arstack/internal/bot"
	"github.com/annel0/arstack/internal/replay"
	"github.com/annel0/arstack/internal/stack"
)

var ErrInvalidConfig = errors.New("недопустимые параметры симуляции")

// Config параметры прогона
type Config struct {
	Games        int     // Количество партий
	Workers      int     // Параллельных воркеров, 0 означает число CPU
	Skill        float64 // Мастерство бота 0.0 - 1.0
	Seed         int64   // Партия i играется ботом с зерном Seed+i
	MaxTaps      int     // Ограничение длины партии
	ShowProgress bool
	Progress     io.Writer // Куда рисовать прогресс, по умолчанию stderr
}

// GameResult итог одной партии
type GameResult struct {
	Index  int
	Taps   []int
	Result replay.Result
}

// Run играет cfg.Games партий и возвращает отчёт.
// Результат не зависит от числа воркеров: каждая партия имеет своё зерно.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.Games < 1 || cfg.MaxTaps < 1 || cfg.Skill < 0 || cfg.Skill > 1 {
		return nil, ErrInvalidConfig
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Workers > cfg.Games {
		cfg.Workers = cfg.Games
	}

	bar := pb.New(cfg.Games)
	switch {
	case !cfg.ShowProgress:
		bar.SetWriter(io.Discard)
	case cfg.Progress != nil:
		bar.SetWriter(cfg.Progress)
	}
	bar.Start()

	results := make([]GameResult, cfg.Games)
	jobs := make(chan int, cfg.Workers*2)

	wg := new(sync.WaitGroup)
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go worker(ctx, wg, cfg, jobs, results, bar)
	}

	start := time.Now()
feed:
	for i := 0; i < cfg.Games; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	used := time.Since(start)
	bar.Finish()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newReport(cfg, results, used), nil
}

func worker(ctx context.Context, wg *sync.WaitGroup, cfg Config, jobs <-chan int, results []GameResult, bar *pb.ProgressBar) {
	defer wg.Done()
	for i := range jobs {
		if ctx.Err() != nil {
			continue
		}
		results[i] = PlayOne(i, cfg.Skill, cfg.Seed+int64(i), cfg.MaxTaps)
		bar.Increment()
	}
}

// PlayOne играет одну партию ботом и перепроверяет её воспроизведением
func PlayOne(index int, skill float64, seed int64, maxTaps int) GameResult {
	b := bot.New(skill, seed)
	taps := b.Play(stack.NewStackState(), maxTaps)
	res, _ := replay.Play(taps)
	return GameResult{Index: index, Taps: taps, Result: res}
}
