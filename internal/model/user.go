package model

import (
	"fmt"

	"github.com/Veraticus/gastos/internal/common"
)

// UserID identifies one of the two user slots.
type UserID string

const (
	// User1 is the first household member.
	User1 UserID = "user1"
	// User2 is the second household member.
	User2 UserID = "user2"
)

// Users lists both slots in display order.
func Users() []UserID {
	return []UserID{User1, User2}
}

// ParseUserID validates a user identifier.
func ParseUserID(s string) (UserID, error) {
	switch UserID(s) {
	case User1, User2:
		return UserID(s), nil
	default:
		return "", fmt.Errorf("%w %q: expected %s or %s", common.ErrUnknownUser, s, User1, User2)
	}
}

// Label returns a display name such as "User 1".
func (u UserID) Label() string {
	switch u {
	case User1:
		return "User 1"
	case User2:
		return "User 2"
	default:
		return string(u)
	}
}
