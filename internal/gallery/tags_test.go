package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/anoixa/image-hoster/database/dbtest"
	"github.com/anoixa/image-hoster/database/models"
	"github.com/anoixa/image-hoster/database/repo/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTagNames(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"cat, dog", []string{"cat", "dog"}},
		{"  solo  ", []string{"solo"}},
		{"", []string{}},
		{" , ,,", []string{}},
		{"cat,cat, cat", []string{"cat"}},
		{"b,a,b,c", []string{"b", "a", "c"}},
		{"Red,red", []string{"Red", "red"}},
		{"two words, x", []string{"two words", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTagNames(tt.raw))
		})
	}
}

func TestTagsToString(t *testing.T) {
	assert.Equal(t, "red,blue", TagsToString([]*models.Tag{{Name: "red"}, {Name: "blue"}}))
	assert.Equal(t, "solo", TagsToString([]*models.Tag{{Name: "solo"}}))
	assert.Equal(t, "", TagsToString(nil))
	assert.Equal(t, "", TagsToString([]*models.Tag{}))
}

func TestTagResolver_Idempotent(t *testing.T) {
	repo := tags.NewRepository(dbtest.NewProvider(t))
	resolver := NewTagResolver(repo)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "nature")
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, "nature")
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestTagResolver_OrderAndDuplicates(t *testing.T) {
	provider := dbtest.NewProvider(t)
	resolver := NewTagResolver(tags.NewRepository(provider))
	ctx := context.Background()

	existing, err := resolver.Resolve(ctx, "dog")
	require.NoError(t, err)

	got, err := resolver.Resolve(ctx, "cat, dog,cat , bird")
	require.NoError(t, err)
	assert.Equal(t, "cat,dog,bird", TagsToString(got))
	assert.Equal(t, existing[0].ID, got[1].ID)

	var count int64
	require.NoError(t, provider.DB().Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestTagResolver_EmptyInput(t *testing.T) {
	provider := dbtest.NewProvider(t)
	resolver := NewTagResolver(tags.NewRepository(provider))

	got, err := resolver.Resolve(context.Background(), " , ")
	require.NoError(t, err)
	assert.Empty(t, got)

	var count int64
	require.NoError(t, provider.DB().Model(&models.Tag{}).Count(&count).Error)
	assert.Zero(t, count)
}

// racingStore 模拟另一个写入方在查找与创建之间抢先创建了同名标签
type racingStore struct {
	winner  *models.Tag
	finds   int
	creates int
	err     error
}

func (s *racingStore) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	s.finds++
	if s.finds == 1 {
		return nil, nil
	}
	return s.winner, nil
}

func (s *racingStore) Create(ctx context.Context, name string) (*models.Tag, error) {
	s.creates++
	if s.err != nil {
		return nil, s.err
	}
	return nil, fmt.Errorf("%w: %q", tags.ErrConflict, name)
}

func TestTagResolver_ConflictReReadsWinner(t *testing.T) {
	store := &racingStore{winner: &models.Tag{ID: 42, Name: "sunset"}}
	resolver := NewTagResolver(store)

	got, err := resolver.Resolve(context.Background(), "sunset")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(42), got[0].ID)
	assert.Equal(t, 2, store.finds)
	assert.Equal(t, 1, store.creates)
}

func TestTagResolver_ConflictWithoutWinner(t *testing.T) {
	resolver := NewTagResolver(&racingStore{})

	_, err := resolver.Resolve(context.Background(), "ghost")
	assert.True(t, errors.Is(err, ErrTransaction), "got %v", err)
	assert.True(t, errors.Is(err, ErrConflict), "got %v", err)
}

func TestTagResolver_CreateFailure(t *testing.T) {
	resolver := NewTagResolver(&racingStore{err: errors.New("disk full")})

	_, err := resolver.Resolve(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrTransaction), "got %v", err)
}

func TestTagResolver_ConcurrentWriters(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := tags.NewRepository(provider)
	ctx := context.Background()

	// 每个解析器各自独立，模拟多个进程同时创建同名标签
	const writers = 8
	ids := make([]uint, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := NewTagResolver(repo).Resolve(ctx, "contested")
			errs[i] = err
			if err == nil && len(got) == 1 {
				ids[i] = got[0].ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.NotZero(t, ids[0])

	var count int64
	require.NoError(t, provider.DB().Model(&models.Tag{}).Where("name = ?", "contested").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTagResolver_SharedResolverCollapsesCalls(t *testing.T) {
	provider := dbtest.NewProvider(t)
	resolver := NewTagResolver(tags.NewRepository(provider))
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]*models.Tag, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := resolver.Resolve(ctx, "shared, other")
			if err == nil {
				results[i] = got
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Len(t, got, 2)
		assert.Equal(t, results[0][0].ID, got[0].ID)
		assert.Equal(t, results[0][1].ID, got[1].ID)
	}
}

func TestTagResolver_RejectsOverlongName(t *testing.T) {
	store := &racingStore{}
	resolver := NewTagResolver(store)

	long := strings.Repeat("猫", MaxTagNameLength+1)
	_, err := resolver.Resolve(context.Background(), "ok, "+long)
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
	assert.Zero(t, store.creates, "no tag may be written when any name is rejected")

	released := &blockingStore{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		tags:    map[string]*models.Tag{},
	}
	close(released.release)
	exact := strings.Repeat("猫", MaxTagNameLength)
	got, err := NewTagResolver(released).Resolve(context.Background(), exact)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, exact, got[0].Name)
}

// blockingStore 首次查找阻塞到 release 关闭，并像数据库驱动一样遵守上下文
type blockingStore struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu   sync.Mutex
	tags map[string]*models.Tag
}

func (s *blockingStore) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[name], nil
}

func (s *blockingStore) Create(ctx context.Context, name string) (*models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tag := &models.Tag{ID: uint(len(s.tags) + 1), Name: name}
	s.tags[name] = tag
	return tag, nil
}

func TestTagResolver_CancelledCallerDoesNotFailOthers(t *testing.T) {
	store := &blockingStore{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		tags:    map[string]*models.Tag{},
	}
	resolver := NewTagResolver(store)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := resolver.Resolve(ctxA, "sunset")
		errA <- err
	}()
	<-store.entered

	type outcome struct {
		tags []*models.Tag
		err  error
	}
	resB := make(chan outcome, 1)
	go func() {
		got, err := resolver.Resolve(context.Background(), "sunset")
		resB <- outcome{got, err}
	}()

	// A 断开后立即返回自己的取消错误
	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(store.release)
	b := <-resB
	require.NoError(t, b.err)
	require.Len(t, b.tags, 1)
	assert.Equal(t, "sunset", b.tags[0].Name)

	// 共享调用没有被 A 的取消打断，标签已创建
	tag, err := store.FindByName(context.Background(), "sunset")
	require.NoError(t, err)
	require.NotNil(t, tag)
}
