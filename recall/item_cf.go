package recall

import (
	"context"
	"math"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/matrix"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
	"github.com/rushteam/movierec/stats"
)

// Ratings 是召回所需的只读数据视图，由 engine.Bundle 实现。
type Ratings interface {
	Matrix() *matrix.RatingMatrix
	Summaries() stats.Summaries
}

// ItemBasedCF 是基于物品的协同过滤召回源（Item-based Collaborative Filtering, i2i）。
//
// 核心思想："被同一批用户以相似方式打分的电影，相互相似"
//
// 算法流程：
//  1. 取目标电影的评分列
//  2. 与每一部其他电影的评分列做归并，只保留两者都评过分的用户（pairwise complete）
//  3. 在这些共同用户上计算 Pearson 相关系数
//
// 以下候选被排除（不是记为 0）：
//   - 共同评分用户少于 MinCommonUsers（至少 2）
//   - 任一向量方差为 0（分母为 0，相关系数无定义）
//   - 目标电影自身
//
// 输出不排序，排序交给 rerank。
type ItemBasedCF struct {
	Data Ratings

	// MinCommonUsers 两部电影至少需要多少个共同评分用户才计算相似度，<= 2 时取 2
	MinCommonUsers int
}

func (r *ItemBasedCF) Name() string {
	return "recall.i2i" // 工业标准命名：i2i (Item-to-Item)
}

func (r *ItemBasedCF) Kind() pipeline.Kind {
	return pipeline.KindRecall
}

// Process 实现 Node 接口，直接调用 Recall，忽略输入 items。
func (r *ItemBasedCF) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口：以 rctx.Title 为种子召回相似电影。
func (r *ItemBasedCF) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.Title == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "recall.i2i: empty movie title")
	}
	return r.Similar(ctx, rctx.Title)
}

// Similar 计算 target 与其他所有电影的相关系数。
// target 不在矩阵中时返回 UnknownItemError；没有任何可计算的候选时返回空切片。
func (r *ItemBasedCF) Similar(ctx context.Context, target string) ([]*core.Item, error) {
	if r.Data == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, "recall.i2i: no rating data")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := r.Data.Matrix()
	if !m.HasTitle(target) {
		return nil, core.NewUnknownItemError("unknown movie %q", target)
	}
	summaries := r.Data.Summaries()

	minCommon := r.MinCommonUsers
	if minCommon < core.DefaultMinCommonUsers {
		minCommon = core.DefaultMinCommonUsers
	}

	targetCol := m.Column(target)
	out := make([]*core.Item, 0)
	for _, title := range m.Titles() {
		if title == target {
			continue
		}
		xs, ys := matrix.CoRated(targetCol, m.Column(title))
		if len(xs) < minCommon {
			continue
		}
		sim, ok := Pearson(xs, ys)
		if !ok {
			continue
		}

		sum := summaries[title]
		it := core.NewItem(title)
		it.Score = sim
		it.Support = sum.RatingCount
		it.MeanRating = sum.MeanRating
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "i2i", Source: "recall"})
		it.PutLabel(utils.LabelMetric, utils.Label{Value: "pearson", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// Pearson 计算样本 Pearson 相关系数 cov(x,y) / (sd(x)·sd(y))。
// 样本少于 2、长度不一致、任一向量为常数时 ok 为 false。
func Pearson(x, y []float64) (r float64, ok bool) {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0, false
	}
	// 常数向量在输入上判断：求均值的舍入误差会让方差不为 0
	if constant(x) || constant(y) {
		return 0, false
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	// (n-1) 在分子分母中约掉
	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}

	r = cov / math.Sqrt(varX*varY)
	r = math.Max(-1, math.Min(1, r))
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}
