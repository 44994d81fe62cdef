package web

import (
	"fmt"

	"github.com/eurekazheng/learning-react/internal/app"
	"github.com/eurekazheng/learning-react/internal/domain"
)

type cellView struct {
	Index   int
	Mark    string
	Winning bool
}

type stepView struct {
	Step    int
	Label   string
	Current bool
}

// gameView is everything the game fragment renders. It is derived from a
// session on every render and never stored.
type gameView struct {
	ID         string
	Rows       [domain.Size][domain.Size]cellView
	Status     string
	Over       bool
	OrderLabel string
	Nav        []stepView
	Positions  []stepView
	Error      string
}

func newGameView(s app.Session, errMsg string) gameView {
	h := s.History
	snap := h.Current()
	st := h.Status()

	v := gameView{ID: s.ID, Error: errMsg, Status: statusText(st)}
	v.Over = st.State != domain.InProgress

	for i, c := range snap.Board {
		v.Rows[i/domain.Size][i%domain.Size] = cellView{
			Index:   i,
			Mark:    c.String(),
			Winning: st.State == domain.Won && st.Result.Contains(i),
		}
	}

	moves := h.Moves()
	v.Nav = make([]stepView, len(moves))
	v.Positions = make([]stepView, len(moves))
	for i, m := range moves {
		current := m.Step == h.Step()
		v.Nav[i] = stepView{Step: m.Step, Label: navLabel(m.Step), Current: current}
		v.Positions[i] = stepView{Step: m.Step, Label: positionLabel(m), Current: current}
	}

	v.OrderLabel = "Descend"
	if s.Order == app.Descending {
		v.OrderLabel = "Ascend"
		for i, j := 0, len(v.Positions)-1; i < j; i, j = i+1, j-1 {
			v.Positions[i], v.Positions[j] = v.Positions[j], v.Positions[i]
		}
	}
	return v
}

func statusText(st domain.Status) string {
	switch st.State {
	case domain.Won:
		return "Winner: " + st.Result.Mark.String()
	case domain.Drawn:
		return "Draw"
	default:
		return "Next player: " + st.Next.String()
	}
}

func navLabel(step int) string {
	if step == 0 {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to step #%d", step)
}

func positionLabel(m domain.Move) string {
	if m.Coord == nil {
		return fmt.Sprintf("step #%d: ()", m.Step)
	}
	return fmt.Sprintf("step #%d: (%d,%d)", m.Step, m.Coord.Row, m.Coord.Col)
}

// historyView is the JSON form of a session's history list.
type historyView struct {
	ID     string        `json:"id"`
	Step   int           `json:"step"`
	Order  string        `json:"order"`
	Status string        `json:"status"`
	Next   string        `json:"next,omitempty"`
	Winner string        `json:"winner,omitempty"`
	Line   []int         `json:"line,omitempty"`
	Board  [9]string     `json:"board"`
	Moves  []domain.Move `json:"moves"`
}

func newHistoryView(s app.Session) historyView {
	h := s.History
	st := h.Status()
	v := historyView{
		ID:     s.ID,
		Step:   h.Step(),
		Order:  s.Order.String(),
		Status: st.State.String(),
		Moves:  h.Moves(),
	}
	switch st.State {
	case domain.InProgress:
		v.Next = st.Next.String()
	case domain.Won:
		v.Winner = st.Result.Mark.String()
		v.Line = st.Result.Line[:]
	}
	for i, c := range h.Current().Board {
		v.Board[i] = c.String()
	}
	return v
}
