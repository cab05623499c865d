package models

import "time"

type User struct {
	UserID       uint      `json:"user_id" gorm:"column:user_id;primaryKey"`
	Username     string    `json:"username" gorm:"column:username;type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	Role         string    `json:"role" gorm:"column:role;type:varchar(16);not null;default:'user'"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }
