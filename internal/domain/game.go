package domain

import (
	"errors"
	"fmt"
)

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// String returns the mark as shown on the board, empty for Empty.
func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other mark; Empty stays Empty.
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

const (
	// Size is the side length of the board.
	Size = 3
	// Cells is the number of cells on the board.
	Cells = Size * Size
)

// Board is a fixed 3x3 board stored row-major.
type Board [Cells]Cell

// Coord is a row/column position on the board.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CoordOf converts a row-major cell index into a coordinate.
func CoordOf(cell int) Coord {
	return Coord{Row: cell / Size, Col: cell % Size}
}

// Index converts the coordinate back into a row-major cell index.
func (c Coord) Index() int {
	return c.Row*Size + c.Col
}

// Snapshot is one immutable entry of the history: the board after a move and
// the move that produced it. Move is nil for the initial empty board.
type Snapshot struct {
	Board Board
	Move  *Coord
}

// clone returns a copy that shares no memory with the stored snapshot.
func (s Snapshot) clone() Snapshot {
	if s.Move != nil {
		m := *s.Move
		s.Move = &m
	}
	return s
}

// Errors returned by domain operations.
var (
	ErrInvalidCell = errors.New("invalid cell index")
	ErrInvalidStep = errors.New("invalid step")
	ErrIllegalMove = errors.New("illegal move")
	ErrOccupied    = fmt.Errorf("%w: cell occupied", ErrIllegalMove)
	ErrGameOver    = fmt.Errorf("%w: game over", ErrIllegalMove)
)
