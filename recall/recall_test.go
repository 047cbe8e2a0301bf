package recall

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/dataset"
	"github.com/rushteam/movierec/matrix"
	"github.com/rushteam/movierec/stats"
)

type testRatings struct {
	m *matrix.RatingMatrix
	s stats.Summaries
}

func (t *testRatings) Matrix() *matrix.RatingMatrix { return t.m }
func (t *testRatings) Summaries() stats.Summaries   { return t.s }

func newTestRatings(events []dataset.MergedEvent) *testRatings {
	return &testRatings{m: matrix.Pivot(events), s: stats.Summarize(events)}
}

func ev(user int64, title string, rating float64) dataset.MergedEvent {
	return dataset.MergedEvent{UserID: user, Title: title, Rating: rating}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name   string
		x, y   []float64
		want   float64
		wantOK bool
	}{
		{"perfect positive", []float64{1, 2, 3}, []float64{2, 4, 6}, 1, true},
		{"perfect negative", []float64{1, 2, 3}, []float64{3, 2, 1}, -1, true},
		{"partial", []float64{1, 2, 3, 4}, []float64{1, 3, 2, 4}, 0.8, true},
		{"constant x", []float64{5, 5, 5}, []float64{1, 2, 3}, 0, false},
		{"both constant", []float64{4, 4}, []float64{4, 4}, 0, false},
		{"constant fractional x", []float64{0.1, 0.1, 0.1}, []float64{1, 2, 3}, 0, false},
		{"constant fractional y", []float64{1, 2, 3}, []float64{3.7, 3.7, 3.7}, 0, false},
		{"single point", []float64{1}, []float64{2}, 0, false},
		{"length mismatch", []float64{1, 2}, []float64{1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Pearson(tt.x, tt.y)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Pearson = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestItemBasedCF_Similar(t *testing.T) {
	data := newTestRatings([]dataset.MergedEvent{
		ev(1, "A", 5), ev(2, "A", 3), ev(3, "A", 1),
		ev(1, "B", 4), ev(2, "B", 3), ev(3, "B", 2), // 与 A 正相关
		ev(1, "C", 1), ev(2, "C", 3), ev(3, "C", 5), // 与 A 负相关
		ev(1, "D", 4), // 只有一个共同用户
		ev(1, "E", 3), ev(2, "E", 3), ev(3, "E", 3), // 方差为 0
		ev(9, "F", 2), ev(8, "F", 4), // 没有共同用户
	})
	cf := &ItemBasedCF{Data: data}

	items, err := cf.Similar(context.Background(), "A")
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	got := map[string]*core.Item{}
	for _, it := range items {
		got[it.ID] = it
	}
	if len(got) != 2 {
		t.Fatalf("got %d items (%v), want B and C", len(got), keys(got))
	}
	if _, ok := got["A"]; ok {
		t.Error("target returned in its own results")
	}
	if b := got["B"]; b == nil || math.Abs(b.Score-1) > 1e-9 {
		t.Errorf("B = %+v, want score 1", b)
	}
	if c := got["C"]; c == nil || math.Abs(c.Score+1) > 1e-9 {
		t.Errorf("C = %+v, want score -1", c)
	}
	if b := got["B"]; b != nil {
		if b.Support != 3 || b.MeanRating != 3 {
			t.Errorf("B support/mean = %d/%v, want 3/3", b.Support, b.MeanRating)
		}
		if lbl, ok := b.Labels["recall_source"]; !ok || lbl.Value != "i2i" {
			t.Errorf("B recall_source = %+v", lbl)
		}
	}
	for _, it := range items {
		if math.IsNaN(it.Score) {
			t.Errorf("%s has NaN score", it.ID)
		}
	}
}

func TestItemBasedCF_IdenticalConstantVectorsExcluded(t *testing.T) {
	data := newTestRatings([]dataset.MergedEvent{
		ev(1, "A", 4), ev(2, "A", 4), ev(3, "A", 4),
		ev(1, "B", 4), ev(2, "B", 4), ev(3, "B", 4),
	})
	items, err := (&ItemBasedCF{Data: data}).Similar(context.Background(), "A")
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want none", len(items))
	}
}

func TestItemBasedCF_FractionalConstantExcluded(t *testing.T) {
	// B 的每个格子都是重复评分 (3, 4) 的均值 3.5
	data := newTestRatings([]dataset.MergedEvent{
		ev(1, "A", 5), ev(2, "A", 3), ev(3, "A", 1),
		ev(1, "B", 3), ev(1, "B", 4), ev(2, "B", 3), ev(2, "B", 4), ev(3, "B", 3), ev(3, "B", 4),
		ev(1, "C", 3.7), ev(2, "C", 3.7), ev(3, "C", 3.7),
	})
	items, err := (&ItemBasedCF{Data: data}).Similar(context.Background(), "A")
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %v, want no candidates", items)
	}
}

func TestItemBasedCF_MinCommonUsers(t *testing.T) {
	data := newTestRatings([]dataset.MergedEvent{
		ev(1, "A", 5), ev(2, "A", 3), ev(3, "A", 1),
		ev(1, "B", 4), ev(2, "B", 2), ev(4, "B", 5),
	})
	tests := []struct {
		minCommon int
		want      int
	}{
		{0, 1}, // 取默认值 2
		{1, 1}, // 不能低于 2
		{2, 1},
		{3, 0},
	}
	for _, tt := range tests {
		items, err := (&ItemBasedCF{Data: data, MinCommonUsers: tt.minCommon}).Similar(context.Background(), "A")
		if err != nil {
			t.Fatalf("Similar: %v", err)
		}
		if len(items) != tt.want {
			t.Errorf("MinCommonUsers=%d: got %d items, want %d", tt.minCommon, len(items), tt.want)
		}
	}
}

func TestItemBasedCF_UnknownTitle(t *testing.T) {
	data := newTestRatings([]dataset.MergedEvent{ev(1, "A", 5)})
	cf := &ItemBasedCF{Data: data}

	_, err := cf.Similar(context.Background(), "Nope (1999)")
	if !core.IsUnknownItem(err) {
		t.Fatalf("err = %v, want unknown item", err)
	}

	_, err = cf.Process(context.Background(), &core.RecommendContext{}, nil)
	if !core.IsInvalidInput(err) {
		t.Errorf("empty title err = %v, want invalid input", err)
	}
}

func TestItemBasedCF_Deterministic(t *testing.T) {
	data := newTestRatings([]dataset.MergedEvent{
		ev(1, "A", 0.1), ev(2, "A", 0.7), ev(3, "A", 0.3), ev(4, "A", 0.9),
		ev(1, "B", 0.2), ev(2, "B", 0.6), ev(3, "B", 0.4), ev(4, "B", 0.8),
		ev(1, "C", 0.9), ev(2, "C", 0.1), ev(3, "C", 0.5), ev(4, "C", 0.3),
	})
	cf := &ItemBasedCF{Data: data}
	first, _ := cf.Similar(context.Background(), "A")
	second, _ := cf.Similar(context.Background(), "A")
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Score != second[i].Score {
			t.Errorf("[%d] %s=%v vs %s=%v", i, first[i].ID, first[i].Score, second[i].ID, second[i].Score)
		}
	}
}

func TestUserPrediction_Predict(t *testing.T) {
	var events []dataset.MergedEvent
	// 用户 1..4 对 A、B 的打分完全同向，C 与之反向
	for u, r := range map[int64]float64{1: 5, 2: 4, 3: 2, 4: 1} {
		events = append(events, ev(u, "A", r), ev(u, "B", r), ev(u, "C", 6-r))
	}
	// 用户 9 只看过 A
	events = append(events, ev(9, "A", 5))

	p := &UserPrediction{Data: newTestRatings(events), MinSupport: 4, MinOverlap: 3}
	items, err := p.Predict(context.Background(), 9, 10)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	// B: sim(A,B)=1 → 5；C: sim(A,C)=-1 → -5
	if items[0].ID != "B" || math.Abs(items[0].Score-5) > 1e-9 {
		t.Errorf("items[0] = %s %v, want B 5", items[0].ID, items[0].Score)
	}
	if items[1].ID != "C" || math.Abs(items[1].Score+5) > 1e-9 {
		t.Errorf("items[1] = %s %v, want C -5", items[1].ID, items[1].Score)
	}

	top1, _ := p.Predict(context.Background(), 9, 1)
	if len(top1) != 1 || top1[0].ID != "B" {
		t.Errorf("n=1 → %v", top1)
	}
}

func TestUserPrediction_Filters(t *testing.T) {
	var events []dataset.MergedEvent
	for u, r := range map[int64]float64{1: 5, 2: 4, 3: 2, 4: 1} {
		events = append(events, ev(u, "A", r), ev(u, "B", r))
	}
	events = append(events, ev(9, "A", 5))
	data := newTestRatings(events)

	// B 只有 4 人评分，低于默认支持度 50
	items, err := (&UserPrediction{Data: data}).Predict(context.Background(), 9, 10)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %v, want none under default support", items)
	}

	// 共同评分用户 4 < 5
	items, _ = (&UserPrediction{Data: data, MinSupport: 1, MinOverlap: 5}).Predict(context.Background(), 9, 10)
	if len(items) != 0 {
		t.Errorf("got %v, want none under overlap 5", items)
	}

	_, err = (&UserPrediction{Data: data}).Predict(context.Background(), 12345, 10)
	if !core.IsUnknownItem(err) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestHot_Recall(t *testing.T) {
	data := newTestRatings([]dataset.MergedEvent{
		ev(1, "A", 5), ev(2, "A", 3), ev(1, "B", 4),
	})
	items, err := (&Hot{Data: data}).Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(items) != 2 || items[0].ID != "A" || items[0].Score != 2 || items[1].Score != 1 {
		t.Errorf("items = %+v %+v", items[0], items[1])
	}
	if items[0].MeanRating != 4 {
		t.Errorf("A mean = %v, want 4", items[0].MeanRating)
	}

	if _, err := (&Hot{}).Recall(context.Background(), nil); !core.IsUnavailable(err) {
		t.Errorf("nil data err = %v, want unavailable", err)
	}
}

func keys(m map[string]*core.Item) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
