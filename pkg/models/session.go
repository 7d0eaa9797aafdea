package models

import "time"

// Session represents a signed-in user session.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"-"` // never serialized to the frontend
	ExpiresAt time.Time `json:"expiresAt"`
}
