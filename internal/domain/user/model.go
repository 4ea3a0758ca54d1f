package user

import "time"

// User is a participant profile. Identity and credentials live in the
// external account service; this record only carries display data and the
// push-notification device tokens registered by the clients.
type User struct {
	ID           string
	DisplayName  string
	Email        string
	Groups       []string
	DeviceTokens []string
	CreatedAt    time.Time
}

// Principal is the authenticated caller as resolved by the token verifier.
type Principal struct {
	UserID string
	Email  string
}

// PlaceholderName synthesizes a display name for a user whose profile record
// is missing, so leaderboards stay renderable with partial data.
func PlaceholderName(userID string) string {
	id := userID
	if len(id) > 8 {
		id = id[:8]
	}
	return "Usuario " + id + "..."
}
