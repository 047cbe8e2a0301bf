package engine

import (
	"time"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/dataset"
	"github.com/rushteam/movierec/matrix"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/stats"
)

// Bundle 是一次加载得到的只读数据：汇总、评分矩阵与分析报告。
// 构建完成后不再修改，可被任意多个 goroutine 同时读取。
type Bundle struct {
	summaries stats.Summaries
	matrix    *matrix.RatingMatrix
	report    stats.Report
	loadedAt  time.Time
}

var _ recall.Ratings = (*Bundle)(nil)

// Build 从合并事件一次性构建 Summaries、Matrix 与 Report。
// 没有任何事件时返回 DATA_FORMAT 错误。
func Build(events []dataset.MergedEvent) (*Bundle, error) {
	if len(events) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeDataFormat, "no rating events after merging titles")
	}
	summaries := stats.Summarize(events)
	return &Bundle{
		summaries: summaries,
		matrix:    matrix.Pivot(events),
		report:    stats.Analyze(events, summaries),
		loadedAt:  time.Now(),
	}, nil
}

func (b *Bundle) Matrix() *matrix.RatingMatrix { return b.matrix }
func (b *Bundle) Summaries() stats.Summaries   { return b.summaries }
func (b *Bundle) Report() stats.Report         { return b.report }
func (b *Bundle) LoadedAt() time.Time          { return b.loadedAt }
