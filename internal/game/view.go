package game

import (
	"github.com/annel0/arstack/internal/stack"
)

// View снимок сессии для клиента
type View struct {
	SessionID      string          `json:"session_id"`
	Height         int             `json:"height"`
	Score          int             `json:"score"`
	HighScore      int             `json:"high_score"`
	PerfectMatches int             `json:"perfect_matches"`
	Over           bool            `json:"over"`
	ActiveAxis     string          `json:"active_axis"`
	Direction      stack.Direction `json:"direction"`
	Current        *stack.Block    `json:"current,omitempty"`
	Previous       stack.Block     `json:"previous"`
	Tower          []stack.Block   `json:"tower"`
	ViewShift      float64         `json:"view_shift"`
}

// newView строит снимок из копии состояния
func newView(id string, st *stack.StackState) View {
	return View{
		SessionID:      id,
		Height:         st.Height,
		Score:          st.Score(),
		PerfectMatches: st.PerfectMatches,
		Over:           st.Over,
		ActiveAxis:     stack.ActiveAxis(st.Height).String(),
		Direction:      st.Direction,
		Current:        st.Current,
		Previous:       st.Previous,
		Tower:          st.Tower,
		ViewShift:      st.ViewShift,
	}
}
