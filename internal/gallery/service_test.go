package gallery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/database/dbtest"
	"github.com/anoixa/image-hoster/database/models"
	"github.com/anoixa/image-hoster/database/repo/images"
	"github.com/anoixa/image-hoster/database/repo/tags"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	provider database.Provider
	svc      *Service
	tagsRepo *tags.Repository
	alice    auth.Identity
	bob      auth.Identity
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	provider := dbtest.NewProvider(t)
	tagsRepo := tags.NewRepository(provider)

	f := &fixture{
		provider: provider,
		svc:      NewService(images.NewRepository(provider), tagsRepo),
		tagsRepo: tagsRepo,
		clock:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.clock }
	f.alice = f.user(t, "alice")
	f.bob = f.user(t, "bob")
	return f
}

func (f *fixture) user(t *testing.T, name string) auth.Identity {
	t.Helper()
	u := &models.User{Username: name, Password: "hash"}
	require.NoError(t, f.provider.DB().Create(u).Error)
	return auth.Identity{UserID: u.ID, Username: u.Username}
}

func (f *fixture) upload(t *testing.T, owner auth.Identity, title, tagList string, file []byte) *models.Image {
	t.Helper()
	image, err := f.svc.Upload(context.Background(), owner, UploadInput{Title: title, Tags: tagList, File: file})
	require.NoError(t, err)
	return image
}

func allBytes() []byte {
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i)
	}
	return raw
}

func TestService_UploadRoundTrip(t *testing.T) {
	f := newFixture(t)
	raw := allBytes()

	image := f.upload(t, f.alice, "bytes", "red, blue", raw)

	detail, err := f.svc.Detail(context.Background(), image.ID)
	require.NoError(t, err)
	decoded, err := DecodePayload(detail.Image)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
	assert.Equal(t, "red,blue", detail.Tags)
	assert.Equal(t, f.alice.UserID, detail.Image.UserID)
	assert.True(t, f.clock.Equal(detail.Image.Date))
	assert.NotNil(t, detail.Comments)
}

func TestService_UploadRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, auth.Identity{}, UploadInput{Title: "t", File: []byte{1}})
	assert.True(t, errors.Is(err, auth.ErrUnauthenticated))

	_, err = f.svc.Upload(ctx, f.alice, UploadInput{Title: "t"})
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)

	_, err = f.svc.Upload(ctx, f.alice, UploadInput{Title: "t", File: []byte{}})
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)

	_, err = f.svc.Upload(ctx, f.alice, UploadInput{File: []byte{1}})
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_UploadWithoutTags(t *testing.T) {
	f := newFixture(t)
	image := f.upload(t, f.alice, "plain", "", []byte("x"))

	detail, err := f.svc.Detail(context.Background(), image.ID)
	require.NoError(t, err)
	assert.Equal(t, "", detail.Tags)
}

func TestService_UpdateKeepsPayloadWhenNoneSupplied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	image := f.upload(t, f.alice, "v1", "a", []byte("original"))

	f.clock = f.clock.Add(time.Hour)
	_, err := f.svc.Update(ctx, f.alice, UpdateInput{ImageID: image.ID, Title: "v2", Tags: "b, c"})
	require.NoError(t, err)

	detail, err := f.svc.Detail(ctx, image.ID)
	require.NoError(t, err)
	decoded, err := DecodePayload(detail.Image)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), decoded)
	assert.Equal(t, "v2", detail.Image.Title)
	assert.Equal(t, "b,c", detail.Tags)
	assert.True(t, f.clock.Equal(detail.Image.Date))

	// 旧标签仍然存在
	tag, err := f.tagsRepo.FindByName(ctx, "a")
	require.NoError(t, err)
	assert.NotNil(t, tag)
}

func TestService_UpdateReplacesPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	image := f.upload(t, f.alice, "v1", "", []byte("original"))

	_, err := f.svc.Update(ctx, f.alice, UpdateInput{ImageID: image.ID, Title: "v1", File: []byte("replacement")})
	require.NoError(t, err)

	detail, err := f.svc.Detail(ctx, image.ID)
	require.NoError(t, err)
	decoded, err := DecodePayload(detail.Image)
	require.NoError(t, err)
	assert.Equal(t, []byte("replacement"), decoded)
}

func TestService_OwnerImmutableAcrossUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	image := f.upload(t, f.alice, "mine", "", []byte("x"))

	for i := 0; i < 3; i++ {
		_, err := f.svc.Update(ctx, f.alice, UpdateInput{ImageID: image.ID, Title: "again"})
		require.NoError(t, err)
		detail, err := f.svc.Detail(ctx, image.ID)
		require.NoError(t, err)
		assert.Equal(t, f.alice.UserID, detail.Image.UserID)
	}
}

func TestService_OwnershipGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	image := f.upload(t, f.alice, "guarded", "cat, dog", []byte("x"))

	tests := []struct {
		name string
		call func(identity auth.Identity) error
	}{
		{"edit form", func(id auth.Identity) error {
			_, err := f.svc.EditForm(ctx, id, image.ID)
			return err
		}},
		{"update", func(id auth.Identity) error {
			_, err := f.svc.Update(ctx, id, UpdateInput{ImageID: image.ID, Title: "hijacked", Tags: "evil"})
			return err
		}},
		{"delete", func(id auth.Identity) error {
			return f.svc.Delete(ctx, id, image.ID)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(f.bob)
			require.True(t, errors.Is(err, ErrOwnershipViolation), "got %v", err)

			var ownErr *OwnershipError
			require.True(t, errors.As(err, &ownErr))
			require.NotNil(t, ownErr.Detail)
			assert.Equal(t, image.ID, ownErr.Detail.Image.ID)
			assert.Equal(t, "guarded", ownErr.Detail.Image.Title)
			assert.Equal(t, "cat,dog", ownErr.Detail.Tags)
			assert.Contains(t, ownErr.Error(), "Only the owner of the image")

			detail, err := f.svc.Detail(ctx, image.ID)
			require.NoError(t, err)
			assert.Equal(t, "guarded", detail.Image.Title)
			assert.Equal(t, "cat,dog", detail.Tags)
		})
	}

	// 表单无效时，所有权与存在性仍优先判定
	t.Run("invalid update by non-owner", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.bob, UpdateInput{ImageID: image.ID, Title: ""})
		var ownErr *OwnershipError
		require.True(t, errors.As(err, &ownErr), "got %v", err)
		assert.Equal(t, "guarded", ownErr.Detail.Image.Title)
		assert.False(t, errors.Is(err, ErrInvalidInput))
	})
	t.Run("invalid update of missing image", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.bob, UpdateInput{ImageID: 9999, Title: ""})
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})
	t.Run("invalid update by owner", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.alice, UpdateInput{ImageID: image.ID, Title: ""})
		assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
	})

	// 未登录身份同样被拒绝
	_, err := f.svc.EditForm(ctx, auth.Identity{}, image.ID)
	assert.True(t, errors.Is(err, ErrOwnershipViolation))

	detail, err := f.svc.EditForm(ctx, f.alice, image.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat,dog", detail.Tags)

	// 被拒绝的更新不会创建标签
	tag, err := f.tagsRepo.FindByName(ctx, "evil")
	require.NoError(t, err)
	assert.Nil(t, tag)
}

func TestService_DeleteScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	x := f.upload(t, f.alice, "X", "cat, dog", []byte("x"))

	err := f.svc.Delete(ctx, f.bob, x.ID)
	require.True(t, errors.Is(err, ErrOwnershipViolation))

	detail, err := f.svc.Detail(ctx, x.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat,dog", detail.Tags)

	require.NoError(t, f.svc.Delete(ctx, f.alice, x.ID))

	_, err = f.svc.Detail(ctx, x.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"cat", "dog"} {
		tag, err := f.tagsRepo.FindByName(ctx, name)
		require.NoError(t, err)
		assert.NotNil(t, tag, name)
	}

	// deleted 是终态
	assert.True(t, errors.Is(f.svc.Delete(ctx, f.alice, x.ID), ErrNotFound))
	_, err = f.svc.EditForm(ctx, f.alice, x.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = f.svc.Update(ctx, f.alice, UpdateInput{ImageID: x.ID, Title: "back"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestService_ImagesByTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.upload(t, f.alice, "one", "sky", []byte("1"))
	f.upload(t, f.bob, "two", "sea", []byte("2"))
	third := f.upload(t, f.bob, "three", "sea, sky", []byte("3"))

	page, err := f.svc.ImagesByTag(ctx, "sky", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Images, 1)
	assert.Equal(t, first.ID, page.Images[0].ID)

	page, err = f.svc.ImagesByTag(ctx, "sky", 2, 1)
	require.NoError(t, err)
	require.Len(t, page.Images, 1)
	assert.Equal(t, third.ID, page.Images[0].ID)

	_, err = f.svc.ImagesByTag(ctx, "missing", 1, 10)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// failingImages 提交总是失败的图片仓库
type failingImages struct {
	images.RepositoryInterface
}

func (failingImages) Create(ctx context.Context, image *models.Image) error {
	return errors.New("commit failed")
}

func TestService_UploadTransactionFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewService(failingImages{images.NewRepository(f.provider)}, f.tagsRepo)

	_, err := svc.Upload(context.Background(), f.alice, UploadInput{Title: "t", File: []byte{1}})
	assert.True(t, errors.Is(err, ErrTransaction), "got %v", err)
}

func TestService_File(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	image := f.upload(t, f.alice, "raw", "", []byte("v1"))

	raw, err := f.svc.File(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), raw)

	_, err = f.svc.Update(ctx, f.alice, UpdateInput{ImageID: image.ID, Title: "raw", File: []byte("v2")})
	require.NoError(t, err)
	raw, err = f.svc.File(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), raw)

	require.NoError(t, f.svc.Delete(ctx, f.alice, image.ID))
	_, err = f.svc.File(ctx, image.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_FileCorruptPayload(t *testing.T) {
	f := newFixture(t)
	image := f.upload(t, f.alice, "broken", "", []byte("ok"))
	require.NoError(t, f.provider.DB().Model(&models.Image{}).Where("id = ?", image.ID).
		Update("image_file", "%%%not-base64").Error)

	_, err := f.svc.File(context.Background(), image.ID)
	assert.ErrorIs(t, err, ErrCorruptPayload)
}
