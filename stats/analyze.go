package stats

import (
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/rushteam/movierec/dataset"
)

// meanRatingBinWidth 是平均分直方图的桶宽。
const meanRatingBinWidth = 0.5

// Report 是数据集的分析报告，用数字代替探索性分析中的图表。
type Report struct {
	TotalRatings int `json:"total_ratings"`
	UniqueUsers  int `json:"unique_users"`
	UniqueTitles int `json:"unique_titles"`

	// RatingCounts 是"每部电影评分人数"的分布
	RatingCounts Distribution `json:"rating_counts"`

	// MeanRatings 是"每部电影平均分"的直方图
	MeanRatings []Bin `json:"mean_ratings"`
}

// Distribution 是一组正整数的分位数摘要。
type Distribution struct {
	Min  int64   `json:"min"`
	P50  int64   `json:"p50"`
	P90  int64   `json:"p90"`
	P99  int64   `json:"p99"`
	Max  int64   `json:"max"`
	Mean float64 `json:"mean"`
}

// Bin 是直方图的一个桶，区间为 [Lower, Upper)，最后一个桶包含上界。
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Analyze 统计评分总数、去重用户数、电影数、评分人数分布与平均分直方图。
func Analyze(events []dataset.MergedEvent, summaries Summaries) Report {
	users := make(map[int64]struct{})
	for _, ev := range events {
		users[ev.UserID] = struct{}{}
	}

	return Report{
		TotalRatings: len(events),
		UniqueUsers:  len(users),
		UniqueTitles: len(summaries),
		RatingCounts: countDistribution(summaries, int64(len(events))),
		MeanRatings:  meanRatingHistogram(summaries),
	}
}

func countDistribution(summaries Summaries, highest int64) Distribution {
	if len(summaries) == 0 {
		return Distribution{}
	}
	if highest < 2 {
		highest = 2
	}
	h := hdrhistogram.New(1, highest, 3)
	for _, s := range summaries {
		// 计数不会超出 [1, len(events)]，RecordValue 不会越界
		_ = h.RecordValue(int64(s.RatingCount))
	}
	return Distribution{
		Min:  h.Min(),
		P50:  h.ValueAtQuantile(50),
		P90:  h.ValueAtQuantile(90),
		P99:  h.ValueAtQuantile(99),
		Max:  h.Max(),
		Mean: h.Mean(),
	}
}

func meanRatingHistogram(summaries Summaries) []Bin {
	if len(summaries) == 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range summaries {
		lo = math.Min(lo, s.MeanRating)
		hi = math.Max(hi, s.MeanRating)
	}
	start := math.Floor(lo/meanRatingBinWidth) * meanRatingBinWidth
	n := int(math.Floor((hi-start)/meanRatingBinWidth)) + 1

	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = start + float64(i)*meanRatingBinWidth
		bins[i].Upper = bins[i].Lower + meanRatingBinWidth
	}
	for _, s := range summaries {
		idx := int(math.Floor((s.MeanRating - start) / meanRatingBinWidth))
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}
	return bins
}
