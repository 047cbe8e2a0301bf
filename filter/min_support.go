package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// MinSupportFilter 过滤掉评分人数不足的电影。
// 阈值优先取 rctx.MinRatings（非 nil 时），否则取 MinRatings。
// MinRatings 为 0 时不过滤，< 0 时取 core.DefaultMinRatings。
type MinSupportFilter struct {
	MinRatings int
}

// NewMinSupportFilter 创建最小支持度过滤器。
func NewMinSupportFilter(minRatings int) *MinSupportFilter {
	return &MinSupportFilter{MinRatings: minRatings}
}

func (f *MinSupportFilter) Name() string {
	return "filter.min_support"
}

// Threshold 返回本次请求实际使用的阈值。
func (f *MinSupportFilter) Threshold(rctx *core.RecommendContext) int {
	if rctx != nil && rctx.MinRatings != nil {
		return *rctx.MinRatings
	}
	if f.MinRatings < 0 {
		return core.DefaultMinRatings
	}
	return f.MinRatings
}

func (f *MinSupportFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return item.Support < f.Threshold(rctx), nil
}
