package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryLengthTracksMoves(t *testing.T) {
	h := NewHistory()
	for i, c := range []int{4, 0, 8, 2, 6} {
		var err error
		h, err = h.Play(c)
		require.NoError(t, err)
		assert.Equal(t, i+2, h.Len())
		assert.Equal(t, h.Len()-1, h.Step())
	}
}

func TestEachSnapshotDiffersByOneCell(t *testing.T) {
	h := playMoves(t, NewHistory(), 0, 1, 2, 4, 3, 5, 7, 6, 8)

	for i := 1; i < h.Len(); i++ {
		prev, err := h.At(i - 1)
		require.NoError(t, err)
		cur, err := h.At(i)
		require.NoError(t, err)

		changed := 0
		for c := range cur.Board {
			if prev.Board[c] != cur.Board[c] {
				changed++
				assert.Equal(t, Empty, prev.Board[c])
				require.NotNil(t, cur.Move)
				assert.Equal(t, c, cur.Move.Index())
			}
		}
		assert.Equal(t, 1, changed, "step %d", i)
	}
}

func TestJumpTo(t *testing.T) {
	t.Run("moves only the pointer", func(t *testing.T) {
		// Given: five moves
		h := playMoves(t, NewHistory(), 0, 1, 2, 3, 4)
		before := h.Moves()

		// When: jumping back
		j, err := h.JumpTo(2)
		require.NoError(t, err)

		// Then: the snapshots are untouched
		assert.Equal(t, 2, j.Step())
		assert.Equal(t, 6, j.Len())
		assert.Equal(t, before, j.Moves())
		assert.Equal(t, X, j.Turn())

		snap, err := h.At(2)
		require.NoError(t, err)
		assert.Equal(t, snap, j.Current())
	})

	t.Run("is idempotent", func(t *testing.T) {
		h := playMoves(t, NewHistory(), 0, 1, 2)

		once, err := h.JumpTo(1)
		require.NoError(t, err)
		twice, err := once.JumpTo(1)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
	})

	t.Run("rejects steps out of range", func(t *testing.T) {
		h := playMoves(t, NewHistory(), 0, 1)

		for _, s := range []int{-1, 3, 100} {
			got, err := h.JumpTo(s)
			require.ErrorIs(t, err, ErrInvalidStep, "step %d", s)
			assert.Equal(t, h, got)
		}
	})

	t.Run("jumping forward again restores the tail", func(t *testing.T) {
		h := playMoves(t, NewHistory(), 0, 1, 2)

		back, err := h.JumpTo(0)
		require.NoError(t, err)
		fwd, err := back.JumpTo(3)
		require.NoError(t, err)

		assert.Equal(t, h.Current(), fwd.Current())
	})
}

func TestPlayAfterJumpTruncatesFuture(t *testing.T) {
	// Given: A:0,2,4 and B:1,3
	h := playMoves(t, NewHistory(), 0, 1, 2, 3, 4)
	require.Equal(t, 6, h.Len())

	// When: jumping to step 2 and playing cell 5
	j, err := h.JumpTo(2)
	require.NoError(t, err)
	b, err := j.Play(5)
	require.NoError(t, err)

	// Then: the branch through cells 3 and 4 is gone
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 3, b.Step())
	assert.Equal(t, Board{X, O, Empty, Empty, Empty, X}, b.Current().Board)
	assert.Equal(t, O, b.Turn())

	// And: the original value still holds its own log
	assert.Equal(t, 6, h.Len())
	assert.Equal(t, Board{X, O, X, O, X}, h.Current().Board)
}

func TestBranchesDoNotShareTail(t *testing.T) {
	// Given: two branches created from the same past step
	h := playMoves(t, NewHistory(), 0, 1, 2)
	j, err := h.JumpTo(1)
	require.NoError(t, err)

	a, err := j.Play(4)
	require.NoError(t, err)
	b, err := j.Play(8)
	require.NoError(t, err)

	// Then: neither overwrote the other
	assert.Equal(t, O, a.Current().Board[4])
	assert.Equal(t, Empty, a.Current().Board[8])
	assert.Equal(t, O, b.Current().Board[8])
	assert.Equal(t, Empty, b.Current().Board[4])
	assert.Equal(t, X, h.Current().Board[2])
}

func TestRewindOutOfTerminalState(t *testing.T) {
	t.Run("won", func(t *testing.T) {
		h := playMoves(t, NewHistory(), 0, 3, 1, 4, 2)
		require.Equal(t, Won, h.Status().State)

		j, err := h.JumpTo(4)
		require.NoError(t, err)

		assert.Equal(t, Status{State: InProgress, Next: X}, j.Status())
		j, err = j.Play(8)
		require.NoError(t, err)
		assert.Equal(t, 6, j.Len())
	})

	t.Run("drawn", func(t *testing.T) {
		h := playMoves(t, NewHistory(), 0, 1, 2, 4, 3, 5, 7, 6, 8)
		require.True(t, h.IsDraw())

		j, err := h.JumpTo(8)
		require.NoError(t, err)

		assert.False(t, j.IsDraw())
		assert.Equal(t, Status{State: InProgress, Next: X}, j.Status())
	})
}

func TestMoves(t *testing.T) {
	h := playMoves(t, NewHistory(), 4, 2)

	moves := h.Moves()
	require.Len(t, moves, 3)
	assert.Equal(t, Move{Step: 0}, moves[0])
	assert.Equal(t, 1, moves[1].Step)
	assert.Equal(t, &Coord{Row: 1, Col: 1}, moves[1].Coord)
	assert.Equal(t, &Coord{Row: 0, Col: 2}, moves[2].Coord)
}

func TestAtOutOfRange(t *testing.T) {
	_, err := NewHistory().At(1)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestReturnedCoordsDoNotAliasSnapshots(t *testing.T) {
	// Given a history shared by two values
	h := playMoves(t, NewHistory(), 4)
	branch := h

	// When callers modify every coordinate handed out
	h.Moves()[1].Coord.Row = 2
	h.Current().Move.Col = 0
	at, err := h.At(1)
	require.NoError(t, err)
	at.Move.Row = 0

	// Then the stored move still points at the centre
	stored, err := branch.At(1)
	require.NoError(t, err)
	assert.Equal(t, &Coord{Row: 1, Col: 1}, stored.Move)
	assert.Equal(t, 4, branch.Current().Move.Index())
	assert.Equal(t, &Coord{Row: 1, Col: 1}, h.Moves()[1].Coord)
}
