package entity

import (
	"errors"
	"fmt"
	"strings"
)

const DefaultBoardSize = 3

var ErrMalformedBoard = errors.New("malformed board")

// Board is an N×N grid stored row-major.
type Board struct {
	size  int
	cells []Symbol
}

func NewBoard(size int) *Board {
	if size < 1 {
		size = 1
	}

	return &Board{
		size:  size,
		cells: make([]Symbol, size*size),
	}
}

// BoardFromRows builds a board from rows such as "XO.", where '.' or ' ' is an empty cell.
func BoardFromRows(rows ...string) (*Board, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedBoard)
	}

	board := NewBoard(len(rows))

	for row, line := range rows {
		if len(line) != len(rows) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedBoard, row, len(line), len(rows))
		}

		for col, ch := range line {
			switch ch {
			case '.', ' ':
				continue
			case 'X', 'x':
				board.Set(row, col, SymbolX)
			case 'O', 'o':
				board.Set(row, col, SymbolO)
			default:
				return nil, fmt.Errorf("%w: unknown mark %q at %d-%d", ErrMalformedBoard, ch, row, col)
			}
		}
	}

	return board, nil
}

func (that *Board) Size() int {
	return that.size
}

func (that *Board) InRange(row, col int) bool {
	return row >= 0 && row < that.size && col >= 0 && col < that.size
}

// Get returns the symbol at (row, col); out of range cells read as Empty.
func (that *Board) Get(row, col int) Symbol {
	if !that.InRange(row, col) {
		return Empty
	}
	return that.cells[row*that.size+col]
}

// Set writes a symbol; callers check the range first.
func (that *Board) Set(row, col int, symbol Symbol) {
	that.cells[row*that.size+col] = symbol
}

func (that *Board) Clear() {
	clear(that.cells)
}

// Occupied returns the number of non-empty cells.
func (that *Board) Occupied() int {
	count := 0
	for _, cell := range that.cells {
		if cell != Empty {
			count++
		}
	}
	return count
}

func (that *Board) IsFull() bool {
	return that.Occupied() == len(that.cells)
}

func (that *Board) IsEmpty() bool {
	return that.Occupied() == 0
}

func (that *Board) Clone() *Board {
	cells := make([]Symbol, len(that.cells))
	copy(cells, that.cells)

	return &Board{size: that.size, cells: cells}
}

// Rows returns a copy of the grid as nested slices.
func (that *Board) Rows() [][]Symbol {
	rows := make([][]Symbol, that.size)
	for row := range rows {
		rows[row] = make([]Symbol, that.size)
		copy(rows[row], that.cells[row*that.size:(row+1)*that.size])
	}
	return rows
}

func (that *Board) String() string {
	var builder strings.Builder
	for row := 0; row < that.size; row++ {
		for col := 0; col < that.size; col++ {
			builder.WriteString(that.Get(row, col).String())
		}
		if row < that.size-1 {
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}

// Position is one placed mark as reported by the server.
type Position struct {
	Row    int
	Col    int
	Symbol Symbol
}
