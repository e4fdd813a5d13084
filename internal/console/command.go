package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("bad arguments")
)

// Command is one parsed console line.
type Command interface{ isCommand() }

// Move coordinates are zero-based; the console reads them one-based.
type Move struct {
	Row, Col int
}

type ChooseSymbol struct {
	Symbol entity.Symbol
}

type Resize struct {
	Size int
}

type Reset struct{}

type Exit struct{}

type Password struct {
	Value string
}

type Show struct{}

type Help struct{}

type Hint struct{}

func (Move) isCommand()         {}
func (ChooseSymbol) isCommand() {}
func (Resize) isCommand()       {}
func (Reset) isCommand()        {}
func (Exit) isCommand()         {}
func (Password) isCommand()     {}
func (Show) isCommand()         {}
func (Help) isCommand()         {}
func (Hint) isCommand()         {}

const usage = `commands:
  move <row> <col>   place your symbol (1-based)
  symbol <X|O>       choose your symbol when asked
  reset              clear the board
  resize <n>         switch to an n x n board
  password <pw>      reconnect to a private room
  show               print the board
  hint               suggest a free cell
  exit               leave the room`

// ParseCommand reads one console line.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}

	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "move", "m":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: move <row> <col>", ErrBadArguments)
		}
		row, err := parsePositive(args[0])
		if err != nil {
			return nil, err
		}
		col, err := parsePositive(args[1])
		if err != nil {
			return nil, err
		}
		return Move{Row: row - 1, Col: col - 1}, nil

	case "symbol":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: symbol <X|O>", ErrBadArguments)
		}
		symbol, ok := entity.ParseSymbol(args[0])
		if !ok {
			return nil, fmt.Errorf("%w: symbol %q", ErrBadArguments, args[0])
		}
		return ChooseSymbol{Symbol: symbol}, nil

	case "resize":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: resize <n>", ErrBadArguments)
		}
		size, err := parsePositive(args[0])
		if err != nil {
			return nil, err
		}
		return Resize{Size: size}, nil

	case "password":
		// the password may be empty or contain spaces
		value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		return Password{Value: value}, nil

	case "reset":
		return Reset{}, nil
	case "exit", "quit":
		return Exit{}, nil
	case "show":
		return Show{}, nil
	case "hint":
		return Hint{}, nil
	case "help", "?":
		return Help{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

func parsePositive(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a positive number", ErrBadArguments, raw)
	}
	return n, nil
}
