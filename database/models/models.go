package models

// All 返回需要自动迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&Tag{},
		&Image{},
		&ImageTag{},
		&Comment{},
		&Session{},
	}
}
