// Package movierec 是基于物品协同过滤的电影推荐引擎。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑由 Node 串联（Recall → Filter → ReRank）
// - Labels-first: 召回来源与过滤原因以 label 透传，便于 explain 与观测
// - 数据只加载一次: engine.Loader 以 singleflight 合并并发的首次加载
package movierec

import (
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/engine"
	"github.com/rushteam/movierec/pipeline"
)

// 轻量 facade：便于直接 import "movierec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind
type Item = core.Item
type Engine = engine.Engine

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)
