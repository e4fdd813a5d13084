// Package console is the line-based terminal front end: it turns typed commands into engine
// calls and prints snapshots.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
)

type commander interface {
	PlayMove(ctx context.Context, row, col int) error
	SelectSymbol(ctx context.Context, symbol entity.Symbol) error
	Resize(ctx context.Context, size int) error
	ResetBoard(ctx context.Context) error
	ExitRoom(ctx context.Context) error
	Snapshot(ctx context.Context) (entity.Snapshot, error)
}

type Console struct {
	logger    *slog.Logger
	engine    commander
	out       io.Writer
	passwords chan string
}

func New(logger *slog.Logger, engine commander, out io.Writer) *Console {
	return &Console{
		logger:    logger.With("component", "console"),
		engine:    engine,
		out:       out,
		passwords: make(chan string, 1),
	}
}

// Passwords delivers passwords typed for a private room.
func (that *Console) Passwords() <-chan string {
	return that.passwords
}

// Run executes commands read from in until exit, end of input or ctx is done.
func (that *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}

			exit, err := that.Execute(ctx, line)
			if err != nil {
				that.report(err)
			}
			if exit {
				return nil
			}
		}
	}
}

// Execute runs one line and reports whether the console should stop.
func (that *Console) Execute(ctx context.Context, line string) (bool, error) {
	command, err := ParseCommand(line)
	if errors.Is(err, ErrEmptyCommand) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch command := command.(type) {
	case Move:
		return false, that.engine.PlayMove(ctx, command.Row, command.Col)
	case ChooseSymbol:
		return false, that.engine.SelectSymbol(ctx, command.Symbol)
	case Resize:
		return false, that.engine.Resize(ctx, command.Size)
	case Reset:
		return false, that.engine.ResetBoard(ctx)
	case Password:
		select {
		case that.passwords <- command.Value:
		default:
			return false, fmt.Errorf("%w: a password is already pending", ErrBadArguments)
		}
		return false, nil
	case Show:
		snapshot, err := that.engine.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		_, err = io.WriteString(that.out, Render(snapshot))
		return false, err
	case Hint:
		snapshot, err := that.engine.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		row, col, err := tictactoe.SuggestMove(snapshot.Board)
		if err != nil {
			return false, err
		}
		_, err = fmt.Fprintf(that.out, "try: move %d %d\n", row+1, col+1)
		return false, err
	case Help:
		_, err := fmt.Fprintln(that.out, usage)
		return false, err
	case Exit:
		if err := that.engine.ExitRoom(ctx); err != nil && !errors.Is(err, apperror.ErrChannelClosed) {
			return true, err
		}
		return true, nil
	}

	return false, fmt.Errorf("%w: %T", ErrUnknownCommand, command)
}

func (that *Console) report(err error) {
	if apperror.IsMoveError(err) || errors.Is(err, apperror.ErrChannelClosed) ||
		errors.Is(err, ErrBadArguments) || errors.Is(err, ErrUnknownCommand) {
		fmt.Fprintf(that.out, "! %v\n", err)
		return
	}

	that.logger.Error("command failed", "error", err)
	fmt.Fprintf(that.out, "! %v\n", err)
}
