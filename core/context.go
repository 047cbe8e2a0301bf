package core

// RecommendContext 承载一次查询的请求参数，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// Title 是目标电影标题（i2i 召回的种子）
	Title string

	// UserID 用于用户级预测；0 表示匿名
	UserID int64

	// N 是最终返回的条数，<= 0 时由 TopN 节点使用自身默认值
	N int

	// MinRatings 是请求级最小支持度阈值，nil 时由过滤节点使用自身配置；0 表示不过滤
	MinRatings *int

	// Params 请求级扩展参数，供表达式过滤使用（rctx.params.xxx）
	Params map[string]any
}
