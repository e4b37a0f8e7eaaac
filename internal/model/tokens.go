package model

import "time"

// RefreshRecord : server-side marker that the session of an identity is still live.
// At most one record exists per identity, issuing again replaces it.
type RefreshRecord struct {
	Identity  string    `db:"identity" bson:"identity" json:"identity"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"created_at"`
}

// Session : outcome of sign up or login, a signed access token for the identity
type Session struct {
	Identity    string
	AccessToken string
	ExpiresAt   time.Time
}
