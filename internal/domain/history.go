package domain

import "fmt"

// State is the phase of the game at the current step.
type State uint8

const (
	InProgress State = iota
	Won
	Drawn
)

func (s State) String() string {
	switch s {
	case Won:
		return "won"
	case Drawn:
		return "drawn"
	default:
		return "in_progress"
	}
}

// Status describes the game at the current step. Next is set while the game
// is in progress, Result once it is won.
type Status struct {
	State  State
	Next   Cell
	Result Result
}

// Move is one entry of the history list. Coord is nil for step 0.
type Move struct {
	Step  int    `json:"step"`
	Coord *Coord `json:"coord,omitempty"`
}

// History is the log of board snapshots together with the step being shown.
// It is a value: Play and JumpTo return a new History and never modify the
// receiver or the snapshots it shares with other values. The zero History
// behaves like NewHistory.
type History struct {
	snapshots []Snapshot
	step      int
}

// NewHistory returns a history holding only the empty board.
func NewHistory() History {
	return History{snapshots: []Snapshot{{}}}
}

var initial = []Snapshot{{}}

func (h History) log() []Snapshot {
	if len(h.snapshots) == 0 {
		return initial[:1:1]
	}
	return h.snapshots
}

// Len returns the number of stored snapshots.
func (h History) Len() int {
	return len(h.log())
}

// Step returns the index of the current snapshot.
func (h History) Step() int {
	return h.step
}

// Current returns the snapshot at the current step.
func (h History) Current() Snapshot {
	return h.log()[h.step].clone()
}

// At returns the snapshot stored at step.
func (h History) At(step int) (Snapshot, error) {
	if step < 0 || step >= h.Len() {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	return h.log()[step].clone(), nil
}

// Turn returns the mark that moves next. X moves on even steps.
func (h History) Turn() Cell {
	if h.step%2 == 0 {
		return X
	}
	return O
}

// IsDraw reports whether every cell is filled at the current step without a
// complete line.
func (h History) IsDraw() bool {
	if h.step < Cells {
		return false
	}
	_, won := Evaluate(h.Current().Board)
	return !won
}

// Status evaluates the current snapshot.
func (h History) Status() Status {
	if r, ok := Evaluate(h.Current().Board); ok {
		return Status{State: Won, Result: r}
	}
	if h.IsDraw() {
		return Status{State: Drawn}
	}
	return Status{State: InProgress, Next: h.Turn()}
}

// Moves lists every stored step with the coordinate that produced it.
func (h History) Moves() []Move {
	log := h.log()
	out := make([]Move, len(log))
	for i, s := range log {
		out[i] = Move{Step: i, Coord: s.clone().Move}
	}
	return out
}

// Play places the current turn's mark on cell (0..8). Snapshots after the
// current step are discarded before the new one is appended. On error the
// receiver is returned unchanged.
func (h History) Play(cell int) (History, error) {
	if cell < 0 || cell >= Cells {
		return h, fmt.Errorf("%w: %d", ErrInvalidCell, cell)
	}
	if h.Status().State != InProgress {
		return h, ErrGameOver
	}
	cur := h.Current()
	if cur.Board[cell] != Empty {
		return h, fmt.Errorf("%w: %d", ErrOccupied, cell)
	}

	next := Snapshot{Board: cur.Board}
	next.Board[cell] = h.Turn()
	pos := CoordOf(cell)
	next.Move = &pos

	// The full slice expression caps the prefix so append always copies and
	// other values sharing the old array keep their snapshots.
	kept := h.log()[:h.step+1 : h.step+1]
	return History{snapshots: append(kept, next), step: h.step + 1}, nil
}

// JumpTo moves the current step without touching the stored snapshots.
func (h History) JumpTo(step int) (History, error) {
	if step < 0 || step >= h.Len() {
		return h, fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	return History{snapshots: h.log(), step: step}, nil
}
