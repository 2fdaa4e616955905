package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/image-hoster/database/models"
	"github.com/anoixa/image-hoster/database/repo/accounts"
	"github.com/anoixa/image-hoster/utils"
	cryptopackage "github.com/anoixa/image-hoster/utils/crypto"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated 没有有效会话
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidForm 注册表单字段不合法
	ErrInvalidForm = errors.New("invalid registration form")
)

var validate = validator.New()

// RegistrationForm 注册表单，与持久化的 models.User 分离
type RegistrationForm struct {
	Username     string `json:"username" validate:"required,max=64"`
	Password     string `json:"password"`
	FullName     string `json:"full_name" validate:"max=128"`
	EmailAddress string `json:"email_address" validate:"omitempty,email,max=255"`
	MobileNumber string `json:"mobile_number" validate:"max=32"`
}

// toUser 表单映射为实体，passwordHash 为已哈希的密码
func (f RegistrationForm) toUser(passwordHash string) *models.User {
	return &models.User{
		Username: f.Username,
		Password: passwordHash,
		Profile: models.UserProfile{
			FullName:     f.FullName,
			EmailAddress: f.EmailAddress,
			MobileNumber: f.MobileNumber,
		},
	}
}

// LoginResult 登录结果
type LoginResult struct {
	Identity  Identity
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// Service 注册、登录与会话服务
type Service struct {
	accountsRepo *accounts.Repository
	sessions     SessionStore
	jwtService   *JWTService
	hashParams   cryptopackage.Params
	now          func() time.Time
}

// NewService 创建新的认证服务
func NewService(accountsRepo *accounts.Repository, sessions SessionStore, jwtService *JWTService) *Service {
	return &Service{
		accountsRepo: accountsRepo,
		sessions:     sessions,
		jwtService:   jwtService,
		hashParams:   cryptopackage.DefaultParams,
		now:          time.Now,
	}
}

// SetHashParams 替换密码哈希参数
func (s *Service) SetHashParams(p cryptopackage.Params) {
	s.hashParams = p
}

// Register 注册新用户
// 密码策略不通过时返回 *PasswordPolicyError，此时不会写入任何数据
func (s *Service) Register(ctx context.Context, form RegistrationForm) (*models.User, error) {
	if err := CheckPasswordPolicy(form.Password); err != nil {
		var policyErr *PasswordPolicyError
		if errors.As(err, &policyErr) {
			policyErr.Form = form
			policyErr.Form.Password = ""
		}
		return nil, err
	}
	if err := validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}

	hash, err := cryptopackage.GenerateWithParams(form.Password, s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := form.toUser(hash)
	if err := s.accountsRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[Auth] Registered user %s (id=%d)", utils.SanitizeLogUsername(user.Username), user.ID)
	return user, nil
}

// Login 校验凭据并创建服务端会话
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.accountsRepo.FindByCredentials(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to validate credentials: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	identity := Identity{UserID: user.ID, Username: user.Username}
	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: now.Add(s.jwtService.TTL()),
		CreatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(session.ID, identity, now, session.ExpiresAt)
	if err != nil {
		_ = s.sessions.Remove(ctx, session.ID)
		return nil, err
	}

	return &LoginResult{
		Identity:  identity,
		Token:     token,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Authenticate 按会话令牌返回当前身份
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.jwtService.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	session, err := s.sessions.Load(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, ErrUnauthenticated
	}

	return &Identity{UserID: session.UserID, Username: session.Username}, nil
}

// Logout 结束令牌对应的会话
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ParseToken(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return s.sessions.Remove(ctx, claims.SessionID)
}
