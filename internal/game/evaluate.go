// Package game holds the pure rules of tic-tac-toe: terminal-state
// evaluation over a linear 9-cell board.
package game

import "github.com/Makuqty/GridLock/internal/model"

// winningTriples are the 8 cell triples that decide a game: 3 rows,
// 3 columns, 2 diagonals. Scan order is fixed; the first fully matching
// non-empty triple wins.
var winningTriples = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Winner evaluates the board against the fixed triple set and maps the
// winning symbol back to its owning identity. It returns the empty
// username and false if no triple holds three equal non-empty symbols.
func Winner(board model.Board, owners map[model.Symbol]model.Username) (model.Username, bool) {
	for _, triple := range winningTriples {
		a, b, c := board[triple[0]], board[triple[1]], board[triple[2]]
		if a != "" && a == b && b == c {
			return owners[a], true
		}
	}
	return "", false
}
