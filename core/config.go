package core

// 引擎默认值。节点与引擎在对应参数 <= 0 时回落到这里。
const (
	// DefaultMinRatings 是推荐结果的最小支持度（评分人数）
	DefaultMinRatings = 100

	// DefaultTopN 是推荐结果默认条数
	DefaultTopN = 10

	// DefaultMinCommonUsers 是计算 Pearson 所需的最少共同评分用户数。
	// 少于 2 个样本时相关系数无定义，因此这也是下限。
	DefaultMinCommonUsers = 2

	// DefaultPopularN 是热门列表默认条数
	DefaultPopularN = 30

	// DefaultTopRatedMinRatings 是高分榜的最小评分人数
	DefaultTopRatedMinRatings = 50

	// DefaultUserMinSupport 是用户级预测中候选电影的最小评分人数
	DefaultUserMinSupport = 50

	// DefaultUserMinOverlap 是用户级预测中两部电影的最少共同评分用户数
	DefaultUserMinOverlap = 3

	// DefaultUserMinAbsSimilarity 是用户级预测中参与加权的最小 |相关系数|
	DefaultUserMinAbsSimilarity = 0.3
)

// OrDefault 返回 v，若 v <= 0 则返回 def。
func OrDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
