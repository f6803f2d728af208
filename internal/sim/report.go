package sim

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang = language.Russian

// Report сводная статистика прогона
type Report struct {
	Games      int           `json:"games"`
	Skill      float64       `json:"skill"`
	Unfinished int           `json:"unfinished"` // Партии, упёршиеся в MaxTaps
	Mean       float64       `json:"mean"`
	Std        float64       `json:"std"`
	CILo       float64       `json:"ci_lo"` // 95% доверительный интервал среднего
	CIHi       float64       `json:"ci_hi"`
	Median     float64       `json:"median"`
	P90        float64       `json:"p90"`
	Min        int           `json:"min"`
	Max        int           `json:"max"`
	BestSeed   int64         `json:"best_seed"`
	Perfects   int           `json:"perfects"`
	Bonuses    int           `json:"bonuses"`
	Taps       int           `json:"taps"`
	Used       time.Duration `json:"used"`
}

func newReport(cfg Config, results []GameResult, used time.Duration) *Report {
	r := &Report{Games: len(results), Skill: cfg.Skill, Used: used}

	heights := make([]float64, len(results))
	for i, g := range results {
		h := g.Result.FinalHeight
		heights[i] = float64(h)

		if !g.Result.Over {
			r.Unfinished++
		}
		if i == 0 || h > r.Max {
			r.Max = h
			r.BestSeed = cfg.Seed + int64(g.Index)
		}
		if i == 0 || h < r.Min {
			r.Min = h
		}
		r.Perfects += g.Result.Perfects
		r.Bonuses += g.Result.Bonuses
		r.Taps += g.Result.TapsResolved
	}

	r.Mean, r.Std = stat.MeanStdDev(heights, nil)
	r.CILo, r.CIHi = r.Mean, r.Mean
	if n := len(heights); n > 1 && r.Std > 0 {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(0.975)
		half := t * r.Std / math.Sqrt(float64(n))
		r.CILo, r.CIHi = r.Mean-half, r.Mean+half
	}
	if len(heights) < 2 {
		r.Std = 0
	}

	sort.Float64s(heights)
	r.Median = stat.Quantile(0.5, stat.Empirical, heights, nil)
	r.P90 = stat.Quantile(0.9, stat.Empirical, heights, nil)
	return r
}

// PerfectRate доля идеальных нажатий среди всех разрешённых
func (r *Report) PerfectRate() float64 {
	if r.Taps == 0 {
		return 0
	}
	return float64(r.Perfects) / float64(r.Taps)
}

// GamesPerSecond скорость симуляции
func (r *Report) GamesPerSecond() float64 {
	sec := r.Used.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	return float64(r.Games) / sec
}

// Print выводит отчёт таблицей
func (r *Report) Print(w io.Writer) error {
	p := message.NewPrinter(lang)

	rows := [][2]string{
		{"Партий", p.Sprintf("%d", r.Games)},
		{"Мастерство", p.Sprintf("%.2f", r.Skill)},
		{"Не завершено", p.Sprintf("%d", r.Unfinished)},
		{"Средняя высота", p.Sprintf("%.2f", r.Mean)},
		{"95% ДИ", p.Sprintf("[%.2f, %.2f]", r.CILo, r.CIHi)},
		{"Ст. отклонение", p.Sprintf("%.3f", r.Std)},
		{"Медиана", p.Sprintf("%.0f", r.Median)},
		{"P90", p.Sprintf("%.0f", r.P90)},
		{"Мин / Макс", p.Sprintf("%d / %d", r.Min, r.Max)},
		{"Лучшее зерно", fmt.Sprintf("%d", r.BestSeed)},
		{"Нажатий", p.Sprintf("%d", r.Taps)},
		{"Идеальных", p.Sprintf("%d (%.1f%%)", r.Perfects, 100*r.PerfectRate())},
		{"Бонусов", p.Sprintf("%d", r.Bonuses)},
		{"Время", p.Sprintf("%.2f с (%.0f партий/с)", r.Used.Seconds(), r.GamesPerSecond())},
	}

	width := 0
	for _, row := range rows {
		if n := len([]rune(row[0])); n > width {
			width = n
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("=", width+24) + "\n")
	for _, row := range rows {
		pad := width - len([]rune(row[0]))
		sb.WriteString(row[0] + strings.Repeat(" ", pad) + " : " + row[1] + "\n")
	}
	sb.WriteString(strings.Repeat("=", width+24) + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
