package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
)

// SortNode 按确定的全序对物品排序：
//  1. Score 降序（相关系数 / 热度）
//  2. Support 降序
//  3. 标题升序
//
// 同样的输入总是得到同样的输出顺序。
type SortNode struct{}

func (n *SortNode) Name() string {
	return "rerank.sort"
}

func (n *SortNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *SortNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	SortItems(out)
	for _, it := range out {
		it.PutLabel(utils.LabelRank, utils.Label{Value: "score_support_title", Source: "rerank"})
	}
	return out, nil
}

// SortItems 原地排序，规则同 SortNode。
func SortItems(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		return a.ID < b.ID
	})
}
