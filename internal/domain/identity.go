package domain

import "time"

// Role is the authorization level carried inside an access token.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether the role satisfies the required minimum level.
// Unknown roles never satisfy anything.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRanks[r]
	if !ok {
		return false
	}
	minRank, ok := roleRanks[min]
	if !ok {
		return false
	}
	return rank >= minRank
}

// Identity is the decoded caller identity attached to a request after
// authentication succeeds.
type Identity struct {
	UserID    int64
	Role      Role
	ExpiresAt time.Time
}

// Session tracks a logged-in client's continuity independent of the access
// token's own validity window.
type Session struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
