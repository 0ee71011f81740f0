package model

import "time"

// UploadRecord is the durable audit entry written for each accepted upload.
type UploadRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionID     string    `gorm:"size:255;not null;index" json:"session_id"`
	Filename      string    `gorm:"size:255;not null" json:"filename"`
	Pages         int       `json:"pages"`
	Title         string    `gorm:"size:512" json:"title"`
	Author        string    `gorm:"size:255" json:"author"`
	ContentLength int       `json:"content_length"`
	ChunkCount    int       `json:"chunk_count"`
	CreatedAt     time.Time `json:"created_at"`
}
