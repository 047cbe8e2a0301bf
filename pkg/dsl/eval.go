// Package dsl 是基于 CEL (Common Expression Language) 的 Label DSL 解释器，
// 用于在 Pipeline 中按表达式过滤电影。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/movierec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译好的表达式，编译一次，可并发多次求值。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.support >= 200 / item.score > 0.5 / item.mean >= 3.5
//   - 字符串：item.title.contains("Star Wars") / item.title != rctx.title
//   - 标签：label.recall_source == "i2i"
//   - 请求参数：item.support >= rctx.min_ratings
//   - 逻辑：item.score > 0.3 && item.mean >= 4.0
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式并检查返回类型为 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %s", t)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Evaluate 对单个电影求值。
// 访问不存在的 label 会返回错误，可以用 `"key" in label` 判断存在性。
func (p *Program) Evaluate(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// Evaluate 编译并执行一次表达式。空表达式恒为 true。
// 需要反复执行同一表达式时使用 Compile。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Evaluate(item, rctx)
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	labelAccessor := make(map[string]any)
	itemMap := map[string]any{}
	if item != nil {
		for k, v := range item.Labels {
			labels[k] = map[string]any{
				"value":  v.Value,
				"source": v.Source,
			}
			// label.recall_source 直接返回 value
			labelAccessor[k] = v.Value
		}
		itemMap = map[string]any{
			"title":   item.ID,
			"score":   item.Score,
			"support": int64(item.Support),
			"mean":    item.MeanRating,
			"labels":  labels,
		}
	}

	rctxMap := map[string]any{
		"title":       "",
		"user_id":     int64(0),
		"n":           int64(0),
		"min_ratings": int64(0),
		"params":      map[string]any{},
	}
	if rctx != nil {
		rctxMap["title"] = rctx.Title
		rctxMap["user_id"] = rctx.UserID
		rctxMap["n"] = int64(rctx.N)
		if rctx.MinRatings != nil {
			rctxMap["min_ratings"] = int64(*rctx.MinRatings)
		}
		if rctx.Params != nil {
			rctxMap["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  itemMap,
		"label": labelAccessor,
		"rctx":  rctxMap,
	}
}
