package entity

// Outcome is the decided/undecided result of a game at a point in time.
type Outcome string

const (
	InProgress Outcome = "in_progress"
	WinX       Outcome = "win_x"
	WinO       Outcome = "win_o"
	Draw       Outcome = "draw"
)

// WinFor returns the winning outcome for a player symbol.
func WinFor(symbol Symbol) Outcome {
	switch symbol {
	case SymbolX:
		return WinX
	case SymbolO:
		return WinO
	default:
		return InProgress
	}
}

func (that Outcome) IsDecided() bool {
	return that != InProgress && that != ""
}

// Winner returns the symbol that won, or Empty for a draw or an open game.
func (that Outcome) Winner() Symbol {
	switch that {
	case WinX:
		return SymbolX
	case WinO:
		return SymbolO
	default:
		return Empty
	}
}

// PlayerResult is an outcome seen from the local player's side.
type PlayerResult string

const (
	ResultNone PlayerResult = "none"
	ResultWon  PlayerResult = "won"
	ResultLost PlayerResult = "lost"
	ResultDraw PlayerResult = "draw"
)

// ResultFor maps an outcome onto the player holding mySymbol.
func ResultFor(outcome Outcome, mySymbol Symbol) PlayerResult {
	switch outcome {
	case Draw:
		return ResultDraw
	case WinX, WinO:
		if !mySymbol.IsPlayer() {
			return ResultNone
		}
		if outcome.Winner() == mySymbol {
			return ResultWon
		}
		return ResultLost
	default:
		return ResultNone
	}
}
