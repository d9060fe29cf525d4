package generator

import "time"

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one exchanged text.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Turn is a transcript entry of a chat session.
type Turn struct {
	Message
	CreatedAt time.Time `json:"created_at"`
}

// Result is the final artifact of a one-shot task.
type Result struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
