package models

import "time"

type Album struct {
	AlbumID   uint      `json:"album_id" gorm:"column:album_id;primaryKey"`
	UserID    uint      `json:"user_id" gorm:"column:user_id;not null;index"`
	Title     string    `json:"title" gorm:"column:title;type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`

	User User `json:"-" gorm:"foreignKey:UserID;references:UserID"`
}

func (Album) TableName() string { return "albums" }
