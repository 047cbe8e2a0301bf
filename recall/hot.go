package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
)

// Hot 是热门召回源：输出全部电影，Score 为评分人数。
// 排序与截断交给后续的 rerank 节点。
// Hot 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用
type Hot struct {
	Data Ratings
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Hot) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if r.Data == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, "recall.hot: no rating data")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := r.Data.Summaries().All()
	out := make([]*core.Item, 0, len(all))
	for _, sum := range all {
		it := core.NewItem(sum.Title)
		it.Score = float64(sum.RatingCount)
		it.Support = sum.RatingCount
		it.MeanRating = sum.MeanRating
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
