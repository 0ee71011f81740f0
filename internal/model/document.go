package model

import "time"

// Document is the extracted state of one uploaded PDF, keyed by session id.
// It lives in the session store only; Path points at the backing upload.
type Document struct {
	SessionID  string    `json:"session_id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Content    string    `json:"content"`
	Chunks     []string  `json:"chunks"`
	Pages      int       `json:"pages"`
	Title      string    `json:"title,omitempty"`
	Author     string    `json:"author,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}
