package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/dataset"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
)

// LoadFunc 产出一个 Bundle。
type LoadFunc func(ctx context.Context) (*Bundle, error)

// FileLoadFunc 从两份数据文件加载。
func FileLoadFunc(ratingsPath, titlesPath string) LoadFunc {
	return func(ctx context.Context) (*Bundle, error) {
		events, err := dataset.Load(ctx, ratingsPath, titlesPath)
		if err != nil {
			return nil, err
		}
		return Build(events)
	}
}

// Loader 保证 LoadFunc 只执行一次。
//
// 并发的首次调用合并为同一次加载（singleflight）。成功与失败都会被缓存：
// 失败之后的调用直接返回同一个 UNAVAILABLE 错误，不会再次读盘。
type Loader struct {
	load  LoadFunc
	group singleflight.Group

	mu     sync.RWMutex
	done   bool
	bundle *Bundle
	err    error
}

// NewLoader 创建 Loader，此时不触发加载。
func NewLoader(load LoadFunc) *Loader {
	return &Loader{load: load}
}

// Get 返回已加载的 Bundle，必要时触发加载。
// ctx 只控制等待；加载本身不会因为某个调用方取消而中断。
func (l *Loader) Get(ctx context.Context) (*Bundle, error) {
	if b, ok, err := l.cached(); ok {
		return b, err
	}

	ch := l.group.DoChan("load", func() (any, error) {
		if b, ok, err := l.cached(); ok {
			return b, err
		}
		b, err := l.run(context.WithoutCancel(ctx))

		l.mu.Lock()
		l.done, l.bundle, l.err = true, b, err
		l.mu.Unlock()
		return b, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Bundle), nil
	}
}

// Status 报告加载状态，不触发加载。
func (l *Loader) Status() (loaded bool, err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.done && l.err == nil, l.err
}

func (l *Loader) cached() (*Bundle, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bundle, l.done, l.err
}

func (l *Loader) run(ctx context.Context) (*Bundle, error) {
	log := logging.Component("engine")
	log.Info().Msg("loading rating data")

	start := time.Now()
	b, err := l.load(ctx)
	took := time.Since(start)
	metrics.RecordLoad(took, err)

	if err != nil {
		log.Error().Err(err).Dur("took", took).Msg("load rating data failed")
		return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, err, "rating data unavailable")
	}

	r := b.Report()
	metrics.RecordDataSize(r.TotalRatings, r.UniqueTitles, r.UniqueUsers)
	log.Info().
		Int("ratings", r.TotalRatings).
		Int("titles", r.UniqueTitles).
		Int("users", r.UniqueUsers).
		Dur("took", took).
		Msg("rating data loaded")
	return b, nil
}
