package auth

import (
	"errors"
	"strings"
)

// ErrPasswordPolicy 密码不满足复杂度要求
var ErrPasswordPolicy = errors.New("password policy violation")

// PasswordPolicyError 注册被密码策略拒绝
// Form 为提交的注册表单（密码已清空），用于重新渲染表单
type PasswordPolicyError struct {
	Form    RegistrationForm
	Missing []string
}

func (e *PasswordPolicyError) Error() string {
	return "password must contain at least 1 alphabet, 1 number and 1 special character (missing " +
		strings.Join(e.Missing, ", ") + ")"
}

func (e *PasswordPolicyError) Unwrap() error {
	return ErrPasswordPolicy
}

// CheckPasswordPolicy 密码必须同时包含字母、数字和其他字符
// 每个字符只归入一类：A-Z/a-z 为字母，0-9 为数字，其余全部为其他字符
func CheckPasswordPolicy(password string) error {
	var alpha, numeric, other int
	for _, r := range password {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			alpha++
		case r >= '0' && r <= '9':
			numeric++
		default:
			other++
		}
	}

	var missing []string
	if alpha == 0 {
		missing = append(missing, "alphabet")
	}
	if numeric == 0 {
		missing = append(missing, "number")
	}
	if other == 0 {
		missing = append(missing, "special character")
	}
	if len(missing) > 0 {
		return &PasswordPolicyError{Missing: missing}
	}
	return nil
}
