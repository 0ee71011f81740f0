package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one side of a question/answer exchange about a document.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:255;not null;index" json:"session_id"`
	Role      string    `gorm:"size:16;not null;index" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Mode      string    `gorm:"size:32" json:"mode,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
