package entity

// Player is one connected participant. Seat is the in-game player id the
// participant was assigned when joining a room; seat one is the authority.
type Player struct {
	ID        string   `json:"id"`
	RoomToken string   `json:"room_token,omitempty"`
	Seat      PlayerID `json:"seat,omitempty"`
}

func (that *Player) IsAuthority() bool {
	return that.Seat == PlayerOne
}

func (that *Player) InRoom() bool {
	return that.RoomToken != ""
}
