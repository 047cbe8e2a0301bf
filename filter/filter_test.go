package filter

import (
	"context"
	"testing"

	"github.com/rushteam/movierec/core"
)

func item(title string, score float64, support int, mean float64) *core.Item {
	it := core.NewItem(title)
	it.Score = score
	it.Support = support
	it.MeanRating = mean
	return it
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMinSupportFilter(t *testing.T) {
	items := func() []*core.Item {
		return []*core.Item{
			item("A", 0.9, 50, 3),
			item("B", 0.8, 100, 3),
			item("C", 0.7, 250, 3),
		}
	}
	tests := []struct {
		name string
		f    *MinSupportFilter
		rctx *core.RecommendContext
		want []string
	}{
		{"default 100", NewMinSupportFilter(-1), nil, []string{"B", "C"}},
		{"zero keeps all", NewMinSupportFilter(0), nil, []string{"A", "B", "C"}},
		{"configured", NewMinSupportFilter(200), &core.RecommendContext{}, []string{"C"}},
		{"request overrides", NewMinSupportFilter(200), &core.RecommendContext{MinRatings: intPtr(10)}, []string{"A", "B", "C"}},
		{"request zero overrides", NewMinSupportFilter(200), &core.RecommendContext{MinRatings: intPtr(0)}, []string{"A", "B", "C"}},
		{"nothing passes", NewMinSupportFilter(1000), nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := NewFilterNode("filter.min_support", tt.f)
			got, err := node.Process(context.Background(), tt.rctx, items())
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if !equal(ids(got), tt.want) {
				t.Errorf("got %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestMinSupportFilter_Monotonic(t *testing.T) {
	var items []*core.Item
	for i := 0; i < 20; i++ {
		items = append(items, item(string(rune('a'+i)), 0, i*17%120, 0))
	}
	prev := len(items) + 1
	for _, threshold := range []int{0, 1, 10, 50, 100, 119, 200} {
		node := NewFilterNode("", &MinSupportFilter{})
		got, _ := node.Process(context.Background(), &core.RecommendContext{MinRatings: intPtr(threshold)}, items)
		for _, it := range got {
			if it.Support < threshold {
				t.Errorf("threshold %d kept %s with support %d", threshold, it.ID, it.Support)
			}
		}
		if threshold == 0 && len(got) != len(items) {
			t.Errorf("threshold 0 returned %d of %d items", len(got), len(items))
		}
		if len(got) > prev {
			t.Errorf("threshold %d returned %d items, more than previous %d", threshold, len(got), prev)
		}
		prev = len(got)
	}
}

func TestBlacklistFilter(t *testing.T) {
	f := NewBlacklistFilter([]string{"B", "Z"})
	node := NewFilterNode("filter.blacklist", f)
	in := []*core.Item{item("A", 0, 0, 0), item("B", 0, 0, 0), nil, item("C", 0, 0, 0)}
	got, err := node.Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !equal(ids(got), []string{"A", "C"}) {
		t.Errorf("got %v", ids(got))
	}
	if lbl, ok := in[1].Labels["filtered"]; !ok || lbl.Source != "filter.blacklist" {
		t.Errorf("filtered label = %+v", lbl)
	}
	if f.Len() != 2 {
		t.Errorf("Len = %d", f.Len())
	}
}

func TestExprFilter(t *testing.T) {
	keep, err := NewExprFilter(`item.mean >= 3.5`, false)
	if err != nil {
		t.Fatalf("NewExprFilter: %v", err)
	}
	drop, err := NewExprFilter(`item.title.contains("1995")`, true)
	if err != nil {
		t.Fatalf("NewExprFilter: %v", err)
	}
	in := []*core.Item{
		item("Toy Story (1995)", 0.5, 400, 3.9),
		item("Fargo (1996)", 0.4, 500, 4.1),
		item("Jaws 3-D (1983)", 0.3, 120, 2.1),
	}
	got, err := NewFilterNode("filter.expr", keep, drop).Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !equal(ids(got), []string{"Fargo (1996)"}) {
		t.Errorf("got %v", ids(got))
	}
}

func TestExprFilter_InvalidExpr(t *testing.T) {
	_, err := NewExprFilter(`item.support >`, false)
	if !core.IsInvalidInput(err) {
		t.Errorf("err = %v, want invalid input", err)
	}
}

func TestFilterNode_ErrorKeepsItem(t *testing.T) {
	f, err := NewExprFilter(`label.missing == "x"`, false)
	if err != nil {
		t.Fatalf("NewExprFilter: %v", err)
	}
	got, err := NewFilterNode("", f).Process(context.Background(), nil, []*core.Item{item("A", 0, 0, 0)})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %v, want item kept on eval error", ids(got))
	}
}

func intPtr(v int) *int { return &v }
