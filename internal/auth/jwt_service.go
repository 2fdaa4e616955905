package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/image-hoster/utils"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken 令牌无法解析、签名不符或已过期
var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims 会话令牌声明
// 令牌只是服务端会话的引用，身份以会话存储中的记录为准
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService 签发和校验会话令牌
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService 创建新的 JWT 服务，secret 为空时生成进程内随机密钥
func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		generated, err := utils.GenerateRandomToken(48)
		if err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		log.Println("[JWT] No jwt_secret configured, using a random secret; sessions will not survive a restart")
		secret = generated
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long, got %d", len(secret))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid session TTL: %s", ttl)
	}
	return &JWTService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL 会话有效期
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken 为会话签发令牌
func (s *JWTService) GenerateToken(sessionID string, identity Identity, issuedAt, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		UserID:    identity.UserID,
		Username:  identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// ParseToken 解析和验证会话令牌
func (s *JWTService) ParseToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
