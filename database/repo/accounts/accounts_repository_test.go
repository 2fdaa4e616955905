package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/anoixa/image-hoster/database/dbtest"
	"github.com/anoixa/image-hoster/database/models"
	cryptopackage "github.com/anoixa/image-hoster/utils/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheapParams = cryptopackage.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func newUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := cryptopackage.GenerateWithParams(password, cheapParams)
	require.NoError(t, err)
	return &models.User{
		Username: username,
		Password: hash,
		Profile: models.UserProfile{
			FullName:     "Test " + username,
			EmailAddress: username + "@example.com",
			MobileNumber: "5550100",
		},
	}
}

func TestRepository_CreatePersistsProfile(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	user := newUser(t, "alice", "abc123!")
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)
	assert.NotZero(t, user.Profile.ID)

	loaded, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "alice", loaded.Username)
	assert.Equal(t, "Test alice", loaded.Profile.FullName)
	assert.Equal(t, "alice@example.com", loaded.Profile.EmailAddress)
}

func TestRepository_CreateDuplicateUsername(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser(t, "bob", "abc123!")))

	err := repo.Create(ctx, newUser(t, "bob", "xyz789?"))
	assert.True(t, errors.Is(err, ErrUsernameTaken), "got %v", err)

	// 事务回滚后不应留下孤立的资料记录
	var profiles int64
	require.NoError(t, provider.DB().Model(&models.UserProfile{}).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)
}

func TestRepository_FindByCredentials(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser(t, "carol", "abc123!")))

	tests := []struct {
		name     string
		username string
		password string
		found    bool
	}{
		{"match", "carol", "abc123!", true},
		{"wrong password", "carol", "abc123?", false},
		{"unknown user", "dave", "abc123!", false},
		{"username is case sensitive", "Carol", "abc123!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindByCredentials(ctx, tt.username, tt.password)
			require.NoError(t, err)
			if tt.found {
				require.NotNil(t, user)
				assert.Equal(t, tt.username, user.Username)
			} else {
				assert.Nil(t, user)
			}
		})
	}
}

func TestRepository_FindByCredentials_CorruptHash(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	ctx := context.Background()

	require.NoError(t, provider.DB().Create(&models.User{Username: "eve", Password: "plaintext"}).Error)

	user, err := repo.FindByCredentials(ctx, "eve", "plaintext")
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, cryptopackage.ErrInvalidHash), "got %v", err)
}

func TestRepository_UserExists(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	exists, err := repo.UserExists(ctx, "frank")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, newUser(t, "frank", "abc123!")))

	exists, err = repo.UserExists(ctx, "frank")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_GetUserByUsername_Missing(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))

	user, err := repo.GetUserByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}
