package models

import "time"

type Image struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	ImageFile   string `gorm:"type:text;not null" json:"image_file"` // base64 编码的原始字节

	// 上传时写入，之后不再变更
	UserID uint `gorm:"index:idx_user_date,priority:1;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user"`

	Date time.Time `gorm:"index:idx_user_date,priority:2;not null" json:"date"`

	// Tags 不由 GORM 自动维护，由图片仓库通过 image_tags 显式读写
	Tags     []*Tag    `gorm:"-" json:"tags"`
	Comments []Comment `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"comments"`
}

// ImageTag 图片与标签的关联，Position 保留提交时的标签顺序
type ImageTag struct {
	ImageID  uint `gorm:"primaryKey;autoIncrement:false"`
	TagID    uint `gorm:"primaryKey;autoIncrement:false;index"`
	Position int  `gorm:"not null;default:0"`
}

// TableName 固定关联表名
func (ImageTag) TableName() string {
	return "image_tags"
}
