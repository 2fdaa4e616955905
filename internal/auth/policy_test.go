package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPasswordPolicy(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
		missing  []string
	}{
		{"abc123!", true, nil},
		{"A1 ", true, nil},
		{"pässw0rd", true, nil}, // ä 归入其他字符
		{"abcdef", false, []string{"number", "special character"}},
		{"123456", false, []string{"alphabet", "special character"}},
		{"!!!???", false, []string{"alphabet", "number"}},
		{"abc123", false, []string{"special character"}},
		{"", false, []string{"alphabet", "number", "special character"}},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := CheckPasswordPolicy(tt.password)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrPasswordPolicy))
			var policyErr *PasswordPolicyError
			if assert.True(t, errors.As(err, &policyErr)) {
				assert.Equal(t, tt.missing, policyErr.Missing)
			}
		})
	}
}
