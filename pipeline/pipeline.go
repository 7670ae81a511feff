// Package pipeline 把推荐链路的后半段（过滤 → 补全 → 兜底）拆成可组合的 Stage 链。
package pipeline

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Kind 用于标记 Stage 类型，方便观测/治理/编排。
type Kind string

const (
	KindRecall   Kind = "recall"   // 召回：生成候选集
	KindFilter   Kind = "filter"   // 过滤：剔除不符合约束的候选
	KindEnrich   Kind = "enrich"   // 补全：批量装载商品与变体，按有效库存过滤
	KindBackfill Kind = "backfill" // 兜底：个性化不足时按配额补齐
)

// Stage 是 Pipeline 的最小可扩展单元。
// 统一采用"输入候选 -> 输出候选"的形态，过滤截断、补全挂载、兜底追加都是同一形状。
type Stage interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.RecommendedProduct,
	) ([]*core.RecommendedProduct, error)
}

// Pipeline 按顺序执行 Stage 链。
type Pipeline struct {
	Stages []Stage
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.RecommendedProduct,
) ([]*core.RecommendedProduct, error) {
	cur := items
	for _, stage := range p.Stages {
		next, err := stage.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
