package config

import "github.com/rushteam/movierec/pipeline"

// SimilarPipeline 是未配置 pipeline_path 时使用的默认相似电影链路：
// recall.i2i → filter.min_support → rerank.sort → rerank.topn。
func SimilarPipeline(minCommonUsers, minRatings, topN int) *pipeline.Config {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "similar"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "recall.i2i", Config: map[string]any{"min_common_users": minCommonUsers}},
		{Type: "filter.min_support", Config: map[string]any{"min_ratings": minRatings}},
		{Type: "rerank.sort"},
		{Type: "rerank.topn", Config: map[string]any{"n": topN}},
	}
	return cfg
}

// PopularPipeline 是热门榜链路：recall.hot → rerank.sort → rerank.topn。
func PopularPipeline(n int) *pipeline.Config {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "popular"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "recall.hot"},
		{Type: "rerank.sort"},
		{Type: "rerank.topn", Config: map[string]any{"n": n}},
	}
	return cfg
}
