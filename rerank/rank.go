// Package rerank 负责候选的排序与截断。
package rerank

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/pipeline"
)

// Rank 对相似度候选做最小支持度过滤、排序与 Top-N 截断。
// minRatings 为 0 时不过滤，< 0 取 core.DefaultMinRatings；topN <= 0 取 core.DefaultTopN。
// 结果可能为空，空结果不是错误。
func Rank(ctx context.Context, candidates []*core.Item, minRatings, topN int) ([]*core.Item, error) {
	return run(ctx, candidates,
		filter.NewFilterNode("filter.min_support", filter.NewMinSupportFilter(minRatings)),
		&SortNode{},
		&TopNNode{N: topN},
	)
}

func run(ctx context.Context, candidates []*core.Item, nodes ...pipeline.Node) ([]*core.Item, error) {
	p := &pipeline.Pipeline{Name: "rank", Nodes: nodes}
	out, err := p.Run(ctx, &core.RecommendContext{}, candidates)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*core.Item{}
	}
	return out, nil
}
