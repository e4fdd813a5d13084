package entity

import "github.com/google/uuid"

type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

type RoomUser struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Symbol Symbol    `json:"symbol"`
}

// RoomInfo is the membership snapshot of a room as reported by the server.
type RoomInfo struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	IsPrivate bool       `json:"is_private"`
	Users     []RoomUser `json:"users"`
}

// FindUser returns the entry of the given user, if present.
func (that *RoomInfo) FindUser(id uuid.UUID) (RoomUser, bool) {
	for _, user := range that.Users {
		if user.ID == id {
			return user, true
		}
	}
	return RoomUser{}, false
}

// Opponent returns the first user that is not the given one.
func (that *RoomInfo) Opponent(id uuid.UUID) (RoomUser, bool) {
	for _, user := range that.Users {
		if user.ID != id {
			return user, true
		}
	}
	return RoomUser{}, false
}

func (that *RoomInfo) Clone() *RoomInfo {
	if that == nil {
		return nil
	}

	clone := *that
	clone.Users = make([]RoomUser, len(that.Users))
	copy(clone.Users, that.Users)

	return &clone
}
