package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/matrix"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
)

// UserPrediction 为单个用户预测未评分电影的得分（u2i）。
//
// 算法流程：
//  1. 候选集：用户没有评过分、且评分人数 >= MinSupport 的电影
//  2. 对每个候选，与用户评过分的每部电影计算 Pearson（共同评分用户 >= MinOverlap）
//  3. 只保留 |sim| > MinAbsSimilarity 的邻居
//  4. 预测分 = Σ sim·r / Σ|sim|，r 为用户对邻居电影的评分
//
// 没有任何邻居的候选被丢弃。结果按预测分降序、标题升序。
type UserPrediction struct {
	Data Ratings

	MinSupport       int
	MinOverlap       int
	MinAbsSimilarity float64
}

func (r *UserPrediction) Name() string        { return "recall.u2i" }
func (r *UserPrediction) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *UserPrediction) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口，使用 rctx.UserID 与 rctx.N。
func (r *UserPrediction) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "recall.u2i: nil context")
	}
	return r.Predict(ctx, rctx.UserID, rctx.N)
}

// Predict 返回用户得分最高的 n 部电影，n <= 0 表示不截断。
func (r *UserPrediction) Predict(ctx context.Context, userID int64, n int) ([]*core.Item, error) {
	if r.Data == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, "recall.u2i: no rating data")
	}
	m := r.Data.Matrix()
	if !m.HasUser(userID) {
		return nil, core.NewUnknownItemError("unknown user %d", userID)
	}
	summaries := r.Data.Summaries()

	minSupport := core.OrDefault(r.MinSupport, core.DefaultUserMinSupport)
	minOverlap := core.OrDefault(r.MinOverlap, core.DefaultUserMinOverlap)
	minAbs := r.MinAbsSimilarity
	if minAbs <= 0 {
		minAbs = core.DefaultUserMinAbsSimilarity
	}

	rated := m.Row(userID)
	seen := make(map[string]struct{}, len(rated))
	for _, e := range rated {
		seen[e.Title] = struct{}{}
	}

	out := make([]*core.Item, 0)
	for _, title := range m.Titles() {
		if _, ok := seen[title]; ok {
			continue
		}
		if summaries.Support(title) < minSupport {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		col := m.Column(title)
		var num, den float64
		neighbors := 0
		for _, e := range rated {
			xs, ys := matrix.CoRated(col, m.Column(e.Title))
			if len(xs) < minOverlap {
				continue
			}
			sim, ok := Pearson(xs, ys)
			if !ok || math.Abs(sim) <= minAbs {
				continue
			}
			num += sim * e.Rating
			den += math.Abs(sim)
			neighbors++
		}
		if neighbors == 0 || den == 0 {
			continue
		}

		sum := summaries[title]
		it := core.NewItem(title)
		it.Score = num / den
		it.Support = sum.RatingCount
		it.MeanRating = sum.MeanRating
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "u2i", Source: "recall"})
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
