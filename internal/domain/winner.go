package domain

// lines lists every winning triple. The order is the tie-break when a board
// holds more than one complete line: rows, then columns, then the diagonals.
var lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Result names the winning mark and the cells of its line in ascending order.
type Result struct {
	Mark Cell
	Line [3]int
}

// Contains reports whether cell i is part of the winning line.
func (r Result) Contains(i int) bool {
	for _, c := range r.Line {
		if c == i {
			return true
		}
	}
	return false
}

// Evaluate returns the first complete line on the board, if any.
func Evaluate(b Board) (Result, bool) {
	for _, ln := range lines {
		m := b[ln[0]]
		if m != Empty && b[ln[1]] == m && b[ln[2]] == m {
			return Result{Mark: m, Line: ln}, true
		}
	}
	return Result{}, false
}
