package cryptopackage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试中使用低成本参数
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestGenerateFromPassword_Format(t *testing.T) {
	hash, err := GenerateFromPassword("abc123!")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.Contains(t, hash, "$m=65536,t=2,p=4$")
}

func TestGenerateWithParams_DifferentSalts(t *testing.T) {
	hash1, err := GenerateWithParams("samepassword123", testParams)
	require.NoError(t, err)
	hash2, err := GenerateWithParams("samepassword123", testParams)
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestComparePasswordAndHash_RoundTrip(t *testing.T) {
	passwords := []string{
		"abc123!",
		"medium length password 42",
		"密码测试1!",
		"🔐🔑🔒a1",
	}

	for _, password := range passwords {
		hash, err := GenerateWithParams(password, testParams)
		require.NoError(t, err, "password: %s", password)

		match, err := ComparePasswordAndHash(password, hash)
		require.NoError(t, err, "password: %s", password)
		assert.True(t, match, "password: %s", password)

		match, err = ComparePasswordAndHash(password+"wrong", hash)
		require.NoError(t, err, "password: %s", password)
		assert.False(t, match, "password: %s", password)
	}
}

func TestComparePasswordAndHash_InvalidFormat(t *testing.T) {
	invalidHashes := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=2,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=2,p=4$",
		"$argon2id$vx=19$m=65536,t=2,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=2,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$invalid$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=2,p=4$!!!$!!!",
		"$argon2id$v=19$m=65536,t=2,p=4$c2FsdA$",
	}

	for _, hash := range invalidHashes {
		match, err := ComparePasswordAndHash("password", hash)
		assert.True(t, errors.Is(err, ErrInvalidHash), "hash: %q err: %v", hash, err)
		assert.False(t, match, "hash: %q", hash)
	}
}

func TestDefaultParams(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultParams.Memory, uint32(65536), "memory should be at least 64MB")
	assert.GreaterOrEqual(t, DefaultParams.SaltLength, uint32(16))
	assert.GreaterOrEqual(t, DefaultParams.KeyLength, uint32(32))
}

func BenchmarkGenerateFromPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := GenerateFromPassword("benchmarkpassword123!"); err != nil {
			b.Fatal(err)
		}
	}
}
