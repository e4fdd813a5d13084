package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// Evaluate judges an N×N board.
//
// Lines are scanned as rows, columns, main diagonal, anti-diagonal, X before O within a line.
// When more than one line is complete the last one scanned decides the outcome; legal
// alternating play never produces that board.
func Evaluate(board *entity.Board) entity.Outcome {
	size := board.Size()
	outcome := entity.InProgress

	colX := make([]int, size)
	colO := make([]int, size)

	var mainX, mainO, antiX, antiO, occupied int

	for row := 0; row < size; row++ {
		var rowX, rowO int

		for col := 0; col < size; col++ {
			switch board.Get(row, col) {
			case entity.SymbolX:
				rowX++
				colX[col]++
				if row == col {
					mainX++
				}
				if row+col == size-1 {
					antiX++
				}
				occupied++
			case entity.SymbolO:
				rowO++
				colO[col]++
				if row == col {
					mainO++
				}
				if row+col == size-1 {
					antiO++
				}
				occupied++
			case entity.Empty:
			}
		}

		outcome = judgeLine(outcome, rowX, rowO, size)
	}

	for col := 0; col < size; col++ {
		outcome = judgeLine(outcome, colX[col], colO[col], size)
	}

	outcome = judgeLine(outcome, mainX, mainO, size)
	outcome = judgeLine(outcome, antiX, antiO, size)

	if outcome == entity.InProgress && occupied == size*size {
		return entity.Draw
	}

	return outcome
}

// judgeLine overwrites the running outcome when the line is complete.
func judgeLine(current entity.Outcome, countX, countO, size int) entity.Outcome {
	if countX == size {
		current = entity.WinX
	}

	if countO == size {
		current = entity.WinO
	}

	return current
}
