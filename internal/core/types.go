package core

import "time"

const (
	SyllabotName      = "Syllabot"
	SyllabotUserAgent = "Syllabot/0.1"
	SyllabotVersion   = "0.1.0"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

func (i Importance) Valid() bool {
	switch i {
	case ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	}
	return false
}

// Identity is the caller resolved from a bearer credential.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type Syllabus struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Topic struct {
	ID          string     `json:"id"`
	SyllabusID  string     `json:"syllabus_id"`
	Title       string     `json:"title"`
	Importance  Importance `json:"importance"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TopicDraft is a topic as proposed by the model, before it is persisted.
type TopicDraft struct {
	Title       string     `json:"title"`
	Importance  Importance `json:"importance"`
	Description string     `json:"description"`
}
