package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anoixa/image-hoster/database/models"
	"github.com/anoixa/image-hoster/database/repo/tags"
	"golang.org/x/sync/singleflight"
)

const (
	// MaxTagNameLength 与 tags.name 列宽一致，按字符计
	MaxTagNameLength = 255

	// 合并后的查找与创建不随任何一个调用方取消，只受该超时约束
	sharedResolveTimeout = 10 * time.Second
)

// tagStore 标签解析用到的标签仓库方法
type tagStore interface {
	FindByName(ctx context.Context, name string) (*models.Tag, error)
	Create(ctx context.Context, name string) (*models.Tag, error)
}

// TagResolver 把逗号分隔的标签串解析为标签实体，不存在的标签就地创建
// 同一进程内同名标签的并发解析通过 singleflight 合并，跨进程的竞争由唯一索引裁决
type TagResolver struct {
	store tagStore
	group singleflight.Group
}

// NewTagResolver 创建标签解析器
func NewTagResolver(store tagStore) *TagResolver {
	return &TagResolver{store: store}
}

// SplitTagNames 按逗号切分并去除首尾空白，跳过空项
// 重复出现的名称只保留第一次，顺序不变
func SplitTagNames(raw string) []string {
	names := make([]string, 0)
	seen := make(map[string]struct{})
	for _, token := range strings.Split(raw, ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Resolve 解析标签串，空串得到空列表
// 任一标签名超长时不写入任何标签，返回 ErrInvalidInput
func (r *TagResolver) Resolve(ctx context.Context, raw string) ([]*models.Tag, error) {
	names := SplitTagNames(raw)
	for _, name := range names {
		if utf8.RuneCountInString(name) > MaxTagNameLength {
			return nil, fmt.Errorf("%w: tag name longer than %d characters", ErrInvalidInput, MaxTagNameLength)
		}
	}

	result := make([]*models.Tag, 0, len(names))
	for _, name := range names {
		tag, err := r.resolveOne(ctx, name)
		if err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, nil
}

// resolveOne 同名请求共享一次查找或创建
// 共享调用使用脱离调用方的上下文，各调用方只因自己的取消而提前返回
func (r *TagResolver) resolveOne(ctx context.Context, name string) (*models.Tag, error) {
	ch := r.group.DoChan(name, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedResolveTimeout)
		defer cancel()
		return r.findOrCreate(shared, name)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Tag), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *TagResolver) findOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := r.store.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}
	if tag != nil {
		return tag, nil
	}

	tag, err = r.store.Create(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, tags.ErrConflict) {
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	// 另一个写入方先创建了同名标签，改用它的记录
	tag, err = r.store.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read tag %q: %w", name, err)
	}
	if tag == nil {
		return nil, fmt.Errorf("%w: tag %q missing after %w", ErrTransaction, name, ErrConflict)
	}
	return tag, nil
}

// TagsToString 按列表顺序用逗号连接标签名，空列表得到空串
func TagsToString(tagList []*models.Tag) string {
	names := make([]string, 0, len(tagList))
	for _, tag := range tagList {
		names = append(names, tag.Name)
	}
	return strings.Join(names, ",")
}
