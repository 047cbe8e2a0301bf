package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// Source 表示一个可复用的召回源（i2i / u2i / hot）。
// 每个 Source 同时实现 pipeline.Node，可以直接放进 Pipeline。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

var (
	_ Source = (*ItemBasedCF)(nil)
	_ Source = (*UserPrediction)(nil)
	_ Source = (*Hot)(nil)
)
