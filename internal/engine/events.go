package engine

import (
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/roominfo"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/websocket"
)

// event is anything the actor loop consumes.
type event interface{ isEvent() }

type inbound struct {
	msg websocket.Inbound
}

type stateChanged struct {
	change websocket.StateChange
}

type roomFetched struct {
	result roominfo.Result
}

// command is a caller request admitted during one run. The loop ignores commands from an
// earlier run; their callers have already been answered.
type command struct {
	run   uint64
	reply chan error
}

func (that command) runID() uint64 {
	return that.run
}

type playMove struct {
	command
	row, col int
}

type selectSymbol struct {
	command
	symbol entity.Symbol
}

type resizeBoard struct {
	command
	size int
}

type resetBoard struct {
	command
}

type exitRoom struct {
	command
}

type snapshotRequest struct {
	run   uint64
	reply chan entity.Snapshot
}

func (that snapshotRequest) runID() uint64 {
	return that.run
}

func (inbound) isEvent()         {}
func (stateChanged) isEvent()    {}
func (roomFetched) isEvent()     {}
func (playMove) isEvent()        {}
func (selectSymbol) isEvent()    {}
func (resizeBoard) isEvent()     {}
func (resetBoard) isEvent()      {}
func (exitRoom) isEvent()        {}
func (snapshotRequest) isEvent() {}
