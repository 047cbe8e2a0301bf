package core

import "github.com/rushteam/movierec/pkg/utils"

// Item 是推荐链路中的统一承载结构：电影标题、相似度分数、支持度、标签。
// ID 使用电影标题：数据合并之后系统一律按标题寻址。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID         string
	Score      float64 // 与目标电影的 Pearson 相关系数（或其他召回分数）
	Support    int     // 评分人数
	MeanRating float64 // 平均评分
	Labels     map[string]utils.Label
}

func NewItem(title string) *Item {
	return &Item{
		ID:     title,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Clone 返回 Item 的深拷贝，缓存命中的结果不与调用方共享 Labels。
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	out := *it
	out.Labels = make(map[string]utils.Label, len(it.Labels))
	for k, v := range it.Labels {
		out.Labels[k] = v
	}
	return &out
}
