package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/dsl"
)

// ExprFilter 使用 CEL 表达式过滤：表达式为 true 的电影保留，false 的被过滤。
// 例如 `item.mean >= 3.5 && !item.title.contains("(1995)")`。
// 表达式在创建时编译一次。
type ExprFilter struct {
	prg *dsl.Program

	// Invert 为 true 时反转语义：表达式为 true 的电影被过滤
	Invert bool
}

// NewExprFilter 编译表达式，编译失败返回错误。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, err, "filter.expr: %q", expr)
	}
	return &ExprFilter{prg: prg, Invert: invert}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回原始表达式。
func (f *ExprFilter) Expr() string {
	return f.prg.String()
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	keep, err := f.prg.Evaluate(item, rctx)
	if err != nil {
		return false, err
	}
	if f.Invert {
		return keep, nil
	}
	return !keep, nil
}
