package model

import "time"

// Message is a piece of content owned by exactly one user.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageWithUser is a message together with its author.
type MessageWithUser struct {
	Message
	User User `json:"user"`
}
