package pipeline

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// Kind 用于标记 Node 所处阶段，方便日志打点与配置校验。
type Kind string

const (
	KindRecall Kind = "recall" // 召回阶段：生成候选集（相似电影、热门电影、用户预测）
	KindFilter Kind = "filter" // 过滤阶段：剔除支持度不足/黑名单/表达式不满足的候选
	KindReRank Kind = "rerank" // 重排阶段：确定性排序与 Top-N 截断
)

// Node 是 Pipeline 的最小可扩展单元，统一采用“输入 items -> 输出 items”的形态。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
