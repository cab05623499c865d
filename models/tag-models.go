package models

import "time"

// Tag names are unique per owner. That rule is enforced by the conditional
// insert in the tag repository, not by an index.
type Tag struct {
	TagID     uint      `json:"tag_id" gorm:"column:tag_id;primaryKey"`
	UserID    uint      `json:"user_id" gorm:"column:user_id;not null;index"`
	Name      string    `json:"name" gorm:"column:name;type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`

	User User `json:"-" gorm:"foreignKey:UserID;references:UserID"`
}

func (Tag) TableName() string { return "tags" }
