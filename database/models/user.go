package models

import (
	"time"
)

// User 账户，Username 全局唯一
type User struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password  string `gorm:"not null" json:"-"` // argon2id 编码后的哈希
	CreatedAt time.Time
	UpdatedAt time.Time

	Profile UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile"`
}

// UserProfile 展示用资料
type UserProfile struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID       uint   `gorm:"uniqueIndex;not null" json:"-"`
	FullName     string `gorm:"size:128" json:"full_name"`
	EmailAddress string `gorm:"size:255" json:"email_address"`
	MobileNumber string `gorm:"size:32" json:"mobile_number"`
}
