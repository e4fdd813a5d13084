package tictactoe

import (
	"errors"
	"math/rand/v2"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// SuggestMove picks a free cell at random from the board rows.
func SuggestMove(rows [][]entity.Symbol) (int, int, error) {
	type cell struct{ row, col int }

	free := make([]cell, 0, len(rows)*len(rows))
	for row, cells := range rows {
		for col, symbol := range cells {
			if symbol == entity.Empty {
				free = append(free, cell{row, col})
			}
		}
	}

	if len(free) == 0 {
		return 0, 0, ErrNoAvailableMoves
	}

	chosen := free[rand.IntN(len(free))] //nolint: gosec // a hint, not a secret
	return chosen.row, chosen.col, nil
}
