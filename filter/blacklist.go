package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的电影标题。
type BlacklistFilter struct {
	titles map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(titles []string) *BlacklistFilter {
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[t] = struct{}{}
	}
	return &BlacklistFilter{titles: set}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

// Len 返回黑名单大小。
func (f *BlacklistFilter) Len() int {
	return len(f.titles)
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, hit := f.titles[item.ID]
	return hit, nil
}
