package entity

// ConnectionState is the lifecycle state of the realtime channel.
type ConnectionState string

const (
	Connecting             ConnectionState = "connecting"
	Open                   ConnectionState = "open"
	ClosedTerminal         ConnectionState = "closed_terminal"
	ClosedPasswordRequired ConnectionState = "closed_password_required"
)

func (that ConnectionState) IsClosed() bool {
	return that == ClosedTerminal || that == ClosedPasswordRequired
}
