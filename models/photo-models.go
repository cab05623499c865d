package models

import (
	"time"

	"gorm.io/datatypes"
)

type Photo struct {
	PhotoID     uint            `json:"photo_id" gorm:"column:photo_id;primaryKey"`
	UserID      uint            `json:"user_id" gorm:"column:user_id;not null;index"`
	Filepath    string          `json:"filepath" gorm:"column:filepath;type:varchar(512);not null"`
	Title       string          `json:"title" gorm:"column:title;type:varchar(255);not null"`
	CaptureDate datatypes.Date  `json:"capture_date" gorm:"column:capture_date;type:date;not null"`
	CaptureTime *datatypes.Time `json:"capture_time" gorm:"column:capture_time;type:time"`
	Latitude    *float64        `json:"latitude" gorm:"column:latitude;type:decimal(9,6)"`
	Longitude   *float64        `json:"longitude" gorm:"column:longitude;type:decimal(9,6)"`
	CreatedAt   time.Time       `json:"created_at" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`

	// Relationship
	User User `json:"-" gorm:"foreignKey:UserID;references:UserID"`
}

func (Photo) TableName() string { return "photos" }
