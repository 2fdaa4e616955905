package models

// Tag 全站共享标签，Name 区分大小写且唯一
type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex:idx_tag_name;size:255;not null" json:"name"`
}
