// Package model defines domain entities for the application.
package model

import "time"

// User is a message author. Email is unique across users.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserWithMessages is a user together with every message it owns.
type UserWithMessages struct {
	User
	Messages []Message `json:"messages"`
}
