package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/database/models"
	cryptopackage "github.com/anoixa/image-hoster/utils/crypto"
	"gorm.io/gorm"
)

// ErrUsernameTaken 用户名已存在
var ErrUsernameTaken = errors.New("username already taken")

// Repository 账户仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的账户仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// FindByCredentials 用户名与密码同时匹配时返回用户
// 用户不存在或密码不符返回 nil, nil，这是正常结果而非错误
func (r *Repository) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, err
	}

	match, err := cryptopackage.ComparePasswordAndHash(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password for user %d: %w", user.ID, err)
	}
	if !match {
		return nil, nil
	}
	return user, nil
}

// Create 在一个事务中写入用户及其资料
// user.Password 必须已经是 argon2id 哈希
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, user.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUsername 通过用户名获取用户
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID 通过ID获取用户
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UserExists 检查用户是否存在
func (r *Repository) UserExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
