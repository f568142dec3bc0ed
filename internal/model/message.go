package model

import "time"

type MessageType string

const (
	MessageChat     MessageType = "chat"
	MessageTask     MessageType = "task"
	MessageCarpool  MessageType = "carpool"
	MessageResource MessageType = "resource"
)

type Message struct {
	ID               string      `json:"id"`
	TeamID           string      `json:"team_id"`
	UserID           string      `json:"user_id"`
	Content          string      `json:"content" validate:"required"`
	MessageType      MessageType `json:"message_type"`
	TaskID           *string     `json:"task_id,omitempty"`
	CarpoolID        *string     `json:"carpool_id,omitempty"`
	ResourceCategory *string     `json:"resource_category,omitempty"`
	IsPinned         bool        `json:"is_pinned"`
	CreatedAt        *time.Time  `json:"created_at,omitempty"`
}
