// Package stats 从合并事件表派生每部电影的汇总统计（平均分、评分人数），
// 并提供热门榜、高分榜与数据集分析报告。
package stats

import (
	"sort"

	"github.com/rushteam/movierec/dataset"
)

// Summary 是单部电影的汇总。
type Summary struct {
	Title       string
	MeanRating  float64
	RatingCount int
}

// Summaries 以标题为 key。每次加载整体重算，不做增量更新。
type Summaries map[string]Summary

// Summarize 按标题分组求平均分与评分条数。
// 重复的 (user, title) 行各自计数，RatingCount 等于该标题的 MergedEvent 行数。
func Summarize(events []dataset.MergedEvent) Summaries {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string]*acc)
	for _, ev := range events {
		a := groups[ev.Title]
		if a == nil {
			a = &acc{}
			groups[ev.Title] = a
		}
		a.sum += ev.Rating
		a.count++
	}

	out := make(Summaries, len(groups))
	for title, a := range groups {
		out[title] = Summary{
			Title:       title,
			MeanRating:  a.sum / float64(a.count),
			RatingCount: a.count,
		}
	}
	return out
}

// Support 返回标题的评分人数，未知标题返回 0。
func (s Summaries) Support(title string) int {
	return s[title].RatingCount
}

// Titles 返回按字母序排列的全部标题。
func (s Summaries) Titles() []string {
	titles := make([]string, 0, len(s))
	for t := range s {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// All 返回按标题排序的全部汇总。
func (s Summaries) All() []Summary {
	out := make([]Summary, 0, len(s))
	for _, t := range s.Titles() {
		out = append(out, s[t])
	}
	return out
}

// TopRated 返回评分人数不少于 minRatings 的电影中平均分最高的 n 部。
// 排序：平均分降序、人数降序、标题升序。
func (s Summaries) TopRated(n, minRatings int) []Summary {
	out := make([]Summary, 0, len(s))
	for _, sum := range s.All() {
		if sum.RatingCount >= minRatings {
			out = append(out, sum)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MeanRating != out[j].MeanRating {
			return out[i].MeanRating > out[j].MeanRating
		}
		return out[i].RatingCount > out[j].RatingCount
	})
	return truncate(out, n)
}

func truncate(s []Summary, n int) []Summary {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
