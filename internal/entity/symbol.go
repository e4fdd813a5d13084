package entity

import "strings"

// Symbol is the mark a player puts on a cell. The zero value is an empty cell.
type Symbol string

const (
	Empty   Symbol = ""
	SymbolX Symbol = "X"
	SymbolO Symbol = "O"

	// FirstMover always opens a fresh game.
	FirstMover = SymbolX
)

func ParseSymbol(raw string) (Symbol, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(SymbolX):
		return SymbolX, true
	case string(SymbolO):
		return SymbolO, true
	default:
		return Empty, false
	}
}

// IsPlayer reports whether the symbol is X or O.
func (that Symbol) IsPlayer() bool {
	return that == SymbolX || that == SymbolO
}

// Opposite returns the other player's symbol, Empty stays Empty.
func (that Symbol) Opposite() Symbol {
	switch that {
	case SymbolX:
		return SymbolO
	case SymbolO:
		return SymbolX
	default:
		return Empty
	}
}

func (that Symbol) String() string {
	if that == Empty {
		return "."
	}
	return string(that)
}
