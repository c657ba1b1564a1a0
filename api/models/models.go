// Package models contains the GORM persistence models for procboard.
package models

import "time"

// Process is a tracked unit of work: what to do, who owns it, and when it is due.
type Process struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	CategoryID  *string    `gorm:"type:uuid;index" json:"category_id"`
	CompanyID   *string    `gorm:"type:uuid;index" json:"company_id"`
	AssigneeID  *string    `gorm:"type:uuid;index" json:"assignee_id"`
	Priority    string     `gorm:"not null;default:normal" json:"priority"`
	Status      string     `gorm:"not null;default:open" json:"status"`
	DueAt       *time.Time `json:"due_at"`
	CreatedAt   time.Time  `json:"created_at"`
	ModifiedAt  time.Time  `json:"modified_at"`
}

// User is an account that can be assigned processes and participate in chat.
type User struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Role       string    `gorm:"not null;default:member" json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Category groups processes by kind of work.
type Category struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Company is a customer or location a process belongs to.
type Company struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Location string `json:"location"`
}

// Settings is the singleton application settings row.
type Settings struct {
	ID                int64  `gorm:"primaryKey" json:"-"`
	AppName           string `json:"app_name"`
	AllowRegistration bool   `json:"allow_registration"`
	RetentionDays     int    `json:"retention_days"`
}

// ChatMessage is one direct message between two users. Rows are append-only;
// the auto-increment ID doubles as the message ordering tiebreaker.
// ReadFlag is stored but never transitioned by the server.
type ChatMessage struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    string    `gorm:"index:idx_chat_pair;not null" json:"sender_id"`
	RecipientID string    `gorm:"index:idx_chat_pair;not null" json:"recipient_id"`
	Content     string    `gorm:"not null" json:"content"`
	Kind        string    `gorm:"not null;default:text" json:"kind"`
	ReadFlag    bool      `gorm:"not null;default:false" json:"read_flag"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// All returns every model for migration registration.
func All() []any {
	return []any{
		&Process{},
		&User{},
		&Category{},
		&Company{},
		&Settings{},
		&ChatMessage{},
	}
}
