package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("product", cel.DynType),
			cel.Variable("score", cel.DoubleType),
			cel.Variable("reason", cel.StringType),
		)
	})
	return celEnv, celEnvErr
}

// RuleFilter 是运营排除规则过滤器，使用 CEL (Common Expression Language) 表达式
// 对已补全的候选求值，命中即剔除。
//
// 表达式可用变量：
//   - product: {id, name, price, stock, category} 的 map
//   - score / reason: 候选的当前分数与理由
//
// 示例：
//   - `product.price > 10000.0` → 剔除高价商品
//   - `product.category == "c_clearance" && score < 4.0` → 清仓类目低分不推
//
// 规则编译一次缓存复用；编译失败的规则在构造时报错，
// 求值失败的规则按"不剔除"处理，规则问题不能误杀候选。
type RuleFilter struct {
	programs []cel.Program
	exprs    []string
}

// NewRuleFilter 编译规则表达式。空规则集返回可用但恒不过滤的过滤器。
func NewRuleFilter(rules []string) (*RuleFilter, error) {
	f := &RuleFilter{}
	if len(rules) == 0 {
		return f, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	for _, expr := range rules {
		if expr == "" {
			continue
		}
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", expr, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %q: %w", expr, err)
		}
		f.programs = append(f.programs, prg)
		f.exprs = append(f.exprs, expr)
	}
	return f, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.RecommendedProduct,
) (bool, error) {
	if len(f.programs) == 0 || item == nil || item.Product == nil {
		return false, nil
	}

	input := map[string]any{
		"product": map[string]any{
			"id":       item.Product.ID,
			"name":     item.Product.Name,
			"price":    item.Product.Price,
			"stock":    item.Product.Stock,
			"category": item.Product.Category.CategoryID(),
		},
		"score":  item.Score,
		"reason": item.Reason,
	}

	for _, prg := range f.programs {
		out, _, err := prg.Eval(input)
		if err != nil {
			continue
		}
		if hit, ok := out.Value().(bool); ok && hit {
			return true, nil
		}
	}
	return false, nil
}

var _ Filter = (*RuleFilter)(nil)
