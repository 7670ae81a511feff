// Package enrich 负责候选的批量补全与有效库存过滤。
package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/groupby"
)

// Enricher 对候选集做三次批量查询（商品、变体维度、变体取值），
// 在内存中建 外键 -> 子表 的分组映射，然后：
//   - 软删除商品直接丢弃（查询层已保证不返回）
//   - 有变体的商品：任一取值有库存才保留
//   - 无变体的商品：自身库存 > 0 才保留
//
// 存活候选挂载 Product 与 OptionTypes 视图供下游展示。
// 查询按候选集整体批量发起，禁止 per-candidate 往返。
type Enricher struct {
	Products core.ProductStore
	Options  core.OptionStore
}

func (e *Enricher) Name() string        { return "enrich.availability" }
func (e *Enricher) Kind() pipeline.Kind { return pipeline.KindEnrich }

// Process 实现 pipeline.Stage。
func (e *Enricher) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.RecommendedProduct,
) ([]*core.RecommendedProduct, error) {
	return e.Enrich(ctx, items)
}

// Enrich 补全并过滤候选，保持输入顺序。
func (e *Enricher) Enrich(ctx context.Context, items []*core.RecommendedProduct) ([]*core.RecommendedProduct, error) {
	if len(items) == 0 {
		return items, nil
	}

	ids := groupby.Keys(items, func(rp *core.RecommendedProduct) string { return rp.ProductID })

	var (
		products    []*core.Product
		optionTypes []*core.OptionType
		optionVals  []*core.OptionValue
	)

	// 商品查询与 变体维度 -> 变体取值 两条链路之间无数据依赖，并行发起
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		products, err = e.Products.FindProducts(egCtx, core.ProductFilter{IDs: ids}, core.ProductSortNone, 0)
		return err
	})
	eg.Go(func() error {
		var err error
		optionTypes, err = e.Options.FindOptionTypesByProducts(egCtx, ids)
		if err != nil || len(optionTypes) == 0 {
			return err
		}
		typeIDs := groupby.Keys(optionTypes, func(ot *core.OptionType) string { return ot.ID })
		optionVals, err = e.Options.FindOptionValuesByOptionTypes(egCtx, typeIDs)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	productByID := make(map[string]*core.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	typesByProduct := groupby.ByKey(optionTypes, func(ot *core.OptionType) string { return ot.ProductID })
	valuesByType := groupby.ByKey(optionVals, func(v *core.OptionValue) string { return v.OptionTypeID })

	out := make([]*core.RecommendedProduct, 0, len(items))
	for _, rp := range items {
		p, ok := productByID[rp.ProductID]
		if !ok || !p.Recommendable() {
			continue
		}
		rp.Product = p
		rp.OptionTypes = buildOptionViews(typesByProduct[p.ID], valuesByType)
		if !rp.Available() {
			continue
		}
		out = append(out, rp)
	}
	return out, nil
}

// EnrichProducts 是面向公开列表策略的便捷入口：把商品列表包成候选再补全。
// 返回的候选不带理由与分数。
func (e *Enricher) EnrichProducts(ctx context.Context, products []*core.Product) ([]*core.RecommendedProduct, error) {
	items := make([]*core.RecommendedProduct, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		items = append(items, &core.RecommendedProduct{ProductID: p.ID})
	}
	return e.Enrich(ctx, items)
}

// EnrichIDs 把商品 ID 列表包成候选再补全。
func (e *Enricher) EnrichIDs(ctx context.Context, ids []string) ([]*core.RecommendedProduct, error) {
	items := make([]*core.RecommendedProduct, 0, len(ids))
	for _, id := range ids {
		items = append(items, &core.RecommendedProduct{ProductID: id})
	}
	return e.Enrich(ctx, items)
}

// buildOptionViews 把变体维度与取值组装成展示视图。
// 取值原样挂载，零库存的取值也保留（前端要展示售罄态）。
func buildOptionViews(types []*core.OptionType, valuesByType map[string][]*core.OptionValue) []*core.OptionTypeView {
	if len(types) == 0 {
		return nil
	}
	views := make([]*core.OptionTypeView, 0, len(types))
	for _, ot := range types {
		if ot.DeletedAt != nil {
			continue
		}
		views = append(views, &core.OptionTypeView{
			ID:     ot.ID,
			Name:   ot.Name,
			Values: valuesByType[ot.ID],
		})
	}
	return views
}

var _ pipeline.Stage = (*Enricher)(nil)
