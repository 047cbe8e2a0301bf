package rerank

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个物品。
// 通常在 SortNode 之后使用。
//
// 截断数量优先级：rctx.N > TopNNode.N > core.DefaultTopN。
// 物品数量不足 N 时原样返回，空列表也不是错误。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.ItemBasedCF{Data: bundle},
//	        filter.NewFilterNode("filter.min_support", filter.NewMinSupportFilter(100)),
//	        &rerank.SortNode{},
//	        &rerank.TopNNode{N: 10},
//	    },
//	}
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

// Limit 返回本次请求的截断数量。
func (n *TopNNode) Limit(rctx *core.RecommendContext) int {
	if rctx != nil && rctx.N > 0 {
		return rctx.N
	}
	return core.OrDefault(n.N, core.DefaultTopN)
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.Limit(rctx)
	if len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
