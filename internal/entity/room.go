package entity

// Room is a rendezvous point for exactly two participants. The relay keeps
// the last snapshot it saw pass through; peers never read it back.
type Room struct {
	Token    string     `json:"token"`
	Players  []string   `json:"players,omitempty"`
	Snapshot *GameState `json:"snapshot,omitempty"`
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= 2
}

func (that *Room) HasPlayer(playerID string) bool {
	for _, id := range that.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

// Opponent returns the other participant's id, if one is present.
func (that *Room) Opponent(playerID string) (string, bool) {
	for _, id := range that.Players {
		if id != playerID {
			return id, true
		}
	}
	return "", false
}
