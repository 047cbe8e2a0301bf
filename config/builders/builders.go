// Package builders 在 init 中向 config 注册全部内置 Node。
package builders

import (
	"fmt"

	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/conv"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/rerank"
)

func init() {
	config.Register("recall.i2i", BuildItemCFNode)
	config.Register("recall.u2i", BuildUserPredictionNode)
	config.Register("recall.hot", BuildHotNode)
	config.Register("filter.min_support", BuildMinSupportNode)
	config.Register("filter.expr", BuildExprNode)
	config.Register("filter.blacklist", BuildBlacklistNode)
	config.Register("rerank.sort", BuildSortNode)
	config.Register("rerank.topn", BuildTopNNode)
}

func requireRatings(deps config.Deps, nodeType string) error {
	if deps.Ratings == nil {
		return fmt.Errorf("%s: rating data not provided", nodeType)
	}
	return nil
}

func BuildItemCFNode(deps config.Deps, cfg map[string]any) (pipeline.Node, error) {
	if err := requireRatings(deps, "recall.i2i"); err != nil {
		return nil, err
	}
	return &recall.ItemBasedCF{
		Data:           deps.Ratings,
		MinCommonUsers: int(conv.ConfigGetInt64(cfg, "min_common_users", 0)),
	}, nil
}

func BuildUserPredictionNode(deps config.Deps, cfg map[string]any) (pipeline.Node, error) {
	if err := requireRatings(deps, "recall.u2i"); err != nil {
		return nil, err
	}
	minAbs, _ := conv.ToFloat64(cfg["min_abs_similarity"])
	return &recall.UserPrediction{
		Data:             deps.Ratings,
		MinSupport:       int(conv.ConfigGetInt64(cfg, "min_support", 0)),
		MinOverlap:       int(conv.ConfigGetInt64(cfg, "min_overlap", 0)),
		MinAbsSimilarity: minAbs,
	}, nil
}

func BuildHotNode(deps config.Deps, _ map[string]any) (pipeline.Node, error) {
	if err := requireRatings(deps, "recall.hot"); err != nil {
		return nil, err
	}
	return &recall.Hot{Data: deps.Ratings}, nil
}

func BuildMinSupportNode(_ config.Deps, cfg map[string]any) (pipeline.Node, error) {
	// 未配置时取默认值，显式 0 表示不过滤
	minRatings := conv.ConfigGetInt64(cfg, "min_ratings", core.DefaultMinRatings)
	if minRatings < 0 {
		return nil, fmt.Errorf("filter.min_support: min_ratings must be >= 0, got %d", minRatings)
	}
	return filter.NewFilterNode("filter.min_support", filter.NewMinSupportFilter(int(minRatings))), nil
}

func BuildExprNode(_ config.Deps, cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("filter.expr: expr is required")
	}
	f, err := filter.NewExprFilter(expr, conv.ConfigGet(cfg, "invert", false))
	if err != nil {
		return nil, err
	}
	return filter.NewFilterNode("filter.expr", f), nil
}

func BuildBlacklistNode(_ config.Deps, cfg map[string]any) (pipeline.Node, error) {
	titles := conv.SliceAnyToString(cfg["titles"])
	if titles == nil {
		titles = []string{}
	}
	return filter.NewFilterNode("filter.blacklist", filter.NewBlacklistFilter(titles)), nil
}

func BuildSortNode(_ config.Deps, _ map[string]any) (pipeline.Node, error) {
	return &rerank.SortNode{}, nil
}

func BuildTopNNode(_ config.Deps, cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("rerank.topn: n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}
