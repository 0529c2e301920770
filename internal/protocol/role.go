package protocol

// Role decides how a peer treats local input and incoming messages. Exactly
// one Authority and one Follower exist per networked session; RoleLocal is a
// standalone hot-seat game with no channel at all.
type Role int

const (
	RoleLocal Role = iota
	RoleAuthority
	RoleFollower
)

func (that Role) String() string {
	switch that {
	case RoleAuthority:
		return "authority"
	case RoleFollower:
		return "follower"
	default:
		return "local"
	}
}
