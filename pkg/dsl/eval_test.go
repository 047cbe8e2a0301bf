package dsl

import (
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
)

func TestProgram_Evaluate(t *testing.T) {
	item := core.NewItem("Empire Strikes Back, The (1980)")
	item.Score = 0.75
	item.Support = 345
	item.MeanRating = 4.2
	item.PutLabel(utils.LabelRecallSource, utils.Label{Value: "i2i", Source: "recall"})

	minRatings := 100
	rctx := &core.RecommendContext{Title: "Star Wars (1977)", N: 10, MinRatings: &minRatings}

	tests := []struct {
		expr string
		want bool
	}{
		{`item.support >= 100`, true},
		{`item.support >= rctx.min_ratings && item.score > 0.8`, false},
		{`item.mean >= 4.0`, true},
		{`item.title.contains("Empire")`, true},
		{`item.title != rctx.title`, true},
		{`label.recall_source == "i2i"`, true},
		{`"missing" in label`, false},
		{`item.labels.recall_source.source == "recall"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got, err := p.Evaluate(item, rctx)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{`item.support >=`, `1 + 2`, `"text"`} {
		if _, err := Compile(expr); err == nil {
			t.Errorf("Compile(%q) succeeded, want error", expr)
		}
	}
}

func TestEvaluate_EmptyExpr(t *testing.T) {
	ok, err := Evaluate("", nil, nil)
	if err != nil || !ok {
		t.Errorf("Evaluate(\"\") = %v, %v; want true, nil", ok, err)
	}
}

func TestProgram_MissingLabel(t *testing.T) {
	p, err := Compile(`label.rank_policy == "x"`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := p.Evaluate(core.NewItem("A"), nil); err == nil {
		t.Error("missing label should be an eval error")
	}
}
