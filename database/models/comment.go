package models

import "time"

type Comment struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CreatedDate time.Time `gorm:"not null" json:"created_date"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	ImageID     uint      `gorm:"index;not null" json:"image_id"`
}
