package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type Deck struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type FavoriteLocation struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Radius    float64   `json:"radius"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatStatus string

const (
	ChatStatusPending  ChatStatus = "pending"
	ChatStatusAnswered ChatStatus = "answered"
	ChatStatusFailed   ChatStatus = "failed"
)

type ChatMessage struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Role      ChatRole   `json:"role"`
	Content   string     `json:"content"`
	Status    ChatStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}
