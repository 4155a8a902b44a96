// Package models defines the persistence-level entities of ContactHub.
package models

import "time"

// Subscription tiers.
const (
	SubscriptionStarter  = "starter"
	SubscriptionPro      = "pro"
	SubscriptionBusiness = "business"
)

// ValidSubscription reports whether s is a known subscription tier.
func ValidSubscription(s string) bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// User is an account identity. Password holds only the bcrypt hash and is
// never serialized. Token is the single live session token; nil means no
// active session.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	Subscription string    `json:"subscription"`
	Token        *string   `json:"-"`
	AvatarURL    *string   `json:"avatarURL,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
