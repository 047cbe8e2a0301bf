// Package engine 把数据加载、pipeline 与结果缓存组合成对外的查询接口。
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/movierec/config"
	_ "github.com/rushteam/movierec/config/builders"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/rerank"
	"github.com/rushteam/movierec/stats"
)

// Options 是引擎参数，零值字段取 core 中的默认值。
type Options struct {
	MinRatings         int
	TopN               int
	MinCommonUsers     int
	PopularN           int
	TopRatedMinRatings int
	UserMinSupport     int

	// Pipeline 为 nil 时使用 config.SimilarPipeline
	Pipeline *pipeline.Config

	// Blacklist 中的标题不会出现在默认 pipeline 的结果里
	Blacklist []string

	// Cache 为 nil 时不缓存
	Cache    core.Store
	CacheTTL time.Duration
}

func (o Options) withDefaults() Options {
	o.MinRatings = core.OrDefault(o.MinRatings, core.DefaultMinRatings)
	o.TopN = core.OrDefault(o.TopN, core.DefaultTopN)
	o.MinCommonUsers = core.OrDefault(o.MinCommonUsers, core.DefaultMinCommonUsers)
	o.PopularN = core.OrDefault(o.PopularN, core.DefaultPopularN)
	o.TopRatedMinRatings = core.OrDefault(o.TopRatedMinRatings, core.DefaultTopRatedMinRatings)
	o.UserMinSupport = core.OrDefault(o.UserMinSupport, core.DefaultUserMinSupport)
	return o
}

// Engine 是推荐引擎。所有查询都经过 Loader，首次查询触发加载。
type Engine struct {
	loader *Loader
	opts   Options

	mu    sync.Mutex
	built *pipelines
}

// pipelines 是绑定到某个 Bundle 的 pipeline 集合。
type pipelines struct {
	bundle  *Bundle
	similar *pipeline.Pipeline
	popular *pipeline.Pipeline
	user    *pipeline.Pipeline
}

// New 创建引擎。opts.Pipeline 中的 node 类型会立即校验。
func New(loader *Loader, opts Options) (*Engine, error) {
	if loader == nil {
		return nil, fmt.Errorf("engine: nil loader")
	}
	opts = opts.withDefaults()
	if opts.Pipeline != nil {
		if err := config.ValidatePipelineConfig(opts.Pipeline); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}
	return &Engine{loader: loader, opts: opts}, nil
}

// Loader 返回引擎使用的 Loader。
func (e *Engine) Loader() *Loader {
	return e.loader
}

// Options 返回补全默认值后的参数。
func (e *Engine) Options() Options {
	return e.opts
}

// Warmup 触发加载并返回结果，服务启动时调用。
func (e *Engine) Warmup(ctx context.Context) error {
	_, err := e.pipelines(ctx)
	return err
}

func (e *Engine) pipelines(ctx context.Context) (*pipelines, error) {
	b, err := e.loader.Get(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.built != nil && e.built.bundle == b {
		return e.built, nil
	}

	factory := config.DefaultFactory(config.Deps{Ratings: b})
	similarCfg := e.opts.Pipeline
	if similarCfg == nil {
		similarCfg = config.SimilarPipeline(e.opts.MinCommonUsers, e.opts.MinRatings, e.opts.TopN)
		if len(e.opts.Blacklist) > 0 {
			withBlacklist(similarCfg, e.opts.Blacklist)
		}
	}
	similar, err := similarCfg.BuildPipeline(factory)
	if err != nil {
		return nil, fmt.Errorf("build similar pipeline: %w", err)
	}
	popular, err := config.PopularPipeline(e.opts.PopularN).BuildPipeline(factory)
	if err != nil {
		return nil, fmt.Errorf("build popular pipeline: %w", err)
	}
	userNode, err := factory.Build("recall.u2i", map[string]any{"min_support": e.opts.UserMinSupport})
	if err != nil {
		return nil, fmt.Errorf("build user pipeline: %w", err)
	}

	e.built = &pipelines{
		bundle:  b,
		similar: similar,
		popular: popular,
		user:    &pipeline.Pipeline{Name: "user", Nodes: []pipeline.Node{userNode}},
	}
	return e.built, nil
}

// withBlacklist 在召回节点之后插入 filter.blacklist。
func withBlacklist(cfg *pipeline.Config, titles []string) {
	nodes := make([]pipeline.NodeConfig, 0, len(cfg.Pipeline.Nodes)+1)
	nodes = append(nodes, cfg.Pipeline.Nodes[0])
	nodes = append(nodes, pipeline.NodeConfig{Type: "filter.blacklist", Config: map[string]any{"titles": titles}})
	nodes = append(nodes, cfg.Pipeline.Nodes[1:]...)
	cfg.Pipeline.Nodes = nodes
}

// Recommend 返回与 title 最相似的 n 部电影（n <= 0 时由 pipeline 的 rerank.topn 决定）。
// title 不存在时返回 UnknownItemError；没有满足支持度的候选时返回空切片。
// 结果按 rec:{title}:{n}:{minRatings} 缓存，缓存故障只记录日志。
func (e *Engine) Recommend(ctx context.Context, title string, n int) ([]*core.Item, error) {
	if n < 0 {
		n = 0
	}
	key := cacheKey(title, n, e.opts.MinRatings)
	if items, ok := e.cacheGet(ctx, key); ok {
		return items, nil
	}

	items, err := e.RecommendWith(ctx, &core.RecommendContext{Title: title, N: n})
	if err != nil {
		return nil, err
	}
	e.cacheSet(ctx, key, items)
	return items, nil
}

// RecommendWith 以调用方给定的上下文运行相似电影 pipeline，不经过缓存。
// rctx.N 为 0、rctx.MinRatings 为 nil 时使用 pipeline 中节点自身的配置。
func (e *Engine) RecommendWith(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.Title == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "movie title is required")
	}
	start := time.Now()
	p, err := e.pipelines(ctx)
	if err != nil {
		return nil, err
	}

	items, err := p.similar.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*core.Item{}
	}
	metrics.RecordQuery("recommend", time.Since(start), len(items))
	return items, nil
}

// SimilarMovies 返回满足支持度的全部相似电影（不截断）。
// minRatings 为 0 时不过滤，< 0 取 Options.MinRatings。
func (e *Engine) SimilarMovies(ctx context.Context, title string, minRatings int) ([]*core.Item, error) {
	start := time.Now()
	b, err := e.loader.Get(ctx)
	if err != nil {
		return nil, err
	}
	p := &pipeline.Pipeline{
		Name: "similar_all",
		Nodes: []pipeline.Node{
			&recall.ItemBasedCF{Data: b, MinCommonUsers: e.opts.MinCommonUsers},
			filter.NewFilterNode("filter.min_support", filter.NewMinSupportFilter(e.similarThreshold(minRatings))),
			&rerank.SortNode{},
		},
	}
	items, err := p.Run(ctx, &core.RecommendContext{Title: title}, nil)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*core.Item{}
	}
	metrics.RecordQuery("similar_all", time.Since(start), len(items))
	return items, nil
}

func (e *Engine) similarThreshold(minRatings int) int {
	if minRatings < 0 {
		return e.opts.MinRatings
	}
	return minRatings
}

// Popular 返回评分人数最多的 n 部电影（n <= 0 取 PopularN），Score 为评分人数。
func (e *Engine) Popular(ctx context.Context, n int) ([]*core.Item, error) {
	start := time.Now()
	p, err := e.pipelines(ctx)
	if err != nil {
		return nil, err
	}
	items, err := p.popular.Run(ctx, &core.RecommendContext{N: core.OrDefault(n, e.opts.PopularN)}, nil)
	if err != nil {
		return nil, err
	}
	metrics.RecordQuery("popular", time.Since(start), len(items))
	return items, nil
}

// TopRated 返回评分人数不少于 TopRatedMinRatings 的电影中平均分最高的 n 部。
func (e *Engine) TopRated(ctx context.Context, n int) ([]stats.Summary, error) {
	b, err := e.loader.Get(ctx)
	if err != nil {
		return nil, err
	}
	return b.Summaries().TopRated(core.OrDefault(n, e.opts.PopularN), e.opts.TopRatedMinRatings), nil
}

// Titles 返回按字母序排列的全部电影标题。
func (e *Engine) Titles(ctx context.Context) ([]string, error) {
	b, err := e.loader.Get(ctx)
	if err != nil {
		return nil, err
	}
	return b.Summaries().Titles(), nil
}

// Browse 返回按标题排序的全部电影汇总。
func (e *Engine) Browse(ctx context.Context) ([]stats.Summary, error) {
	b, err := e.loader.Get(ctx)
	if err != nil {
		return nil, err
	}
	return b.Summaries().All(), nil
}

// Report 返回数据集分析报告。
func (e *Engine) Report(ctx context.Context) (stats.Report, error) {
	b, err := e.loader.Get(ctx)
	if err != nil {
		return stats.Report{}, err
	}
	return b.Report(), nil
}

// RecommendForUser 为用户预测未评分电影的得分，返回前 n 部（n <= 0 取 TopN）。
// 用户不存在时返回 UnknownItemError。
func (e *Engine) RecommendForUser(ctx context.Context, userID int64, n int) ([]*core.Item, error) {
	start := time.Now()
	p, err := e.pipelines(ctx)
	if err != nil {
		return nil, err
	}
	items, err := p.user.Run(ctx, &core.RecommendContext{UserID: userID, N: core.OrDefault(n, e.opts.TopN)}, nil)
	if err != nil {
		return nil, err
	}
	metrics.RecordQuery("user", time.Since(start), len(items))
	return items, nil
}

func cacheKey(title string, n, minRatings int) string {
	return fmt.Sprintf("rec:%s:%d:%d", title, n, minRatings)
}

func (e *Engine) cacheGet(ctx context.Context, key string) ([]*core.Item, bool) {
	if e.opts.Cache == nil {
		return nil, false
	}
	backend := e.opts.Cache.Name()
	data, err := e.opts.Cache.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			metrics.CacheRequests.WithLabelValues(backend, "miss").Inc()
		} else {
			metrics.CacheRequests.WithLabelValues(backend, "error").Inc()
			logging.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return nil, false
	}
	var items []*core.Item
	if err := json.Unmarshal(data, &items); err != nil {
		metrics.CacheRequests.WithLabelValues(backend, "error").Inc()
		logging.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return nil, false
	}
	metrics.CacheRequests.WithLabelValues(backend, "hit").Inc()
	return items, true
}

func (e *Engine) cacheSet(ctx context.Context, key string, items []*core.Item) {
	if e.opts.Cache == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := e.opts.Cache.Set(ctx, key, data, int(e.opts.CacheTTL/time.Second)); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}
