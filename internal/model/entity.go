package model

import "time"

// User is an account in the identity store (GORM).
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"size:120;not null"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string { return "users" }

// Event is a scheduled live event owned by a user (GORM).
type Event struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string    `gorm:"size:255;not null"`
	OwnerID   string    `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Owner *User `gorm:"foreignKey:OwnerID"`
}

func (Event) TableName() string { return "events" }
