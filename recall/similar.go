package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/enrich"
)

// Similar 是相似商品策略：同类目、价格相近、有库存的商品。
// priceMargin = 锚点价 × PriceMargin，价格带 [anchor - margin, anchor + margin]。
type Similar struct {
	Products core.ProductStore
	Enricher *enrich.Enricher

	// PriceMargin 是价格容差比例，零值取默认 0.3
	PriceMargin float64
}

func (r *Similar) Name() string { return "recall.similar" }

// ListFor 返回与锚点商品相似的候选；锚点不存在或已删除时返回空列表。
func (r *Similar) ListFor(ctx context.Context, anchorID string, limit int) ([]*core.RecommendedProduct, error) {
	if limit <= 0 || anchorID == "" || r.Products == nil || r.Enricher == nil {
		return nil, nil
	}

	anchors, err := r.Products.FindProducts(ctx, core.ProductFilter{IDs: []string{anchorID}}, core.ProductSortNone, 1)
	if err != nil {
		return nil, err
	}
	if len(anchors) == 0 {
		return nil, nil
	}
	anchor := anchors[0]

	marginRatio := r.PriceMargin
	if marginRatio == 0 {
		marginRatio = 0.3
	}
	margin := anchor.Price * marginRatio
	min := anchor.Price - margin
	if min < 0 {
		min = 0
	}
	max := anchor.Price + margin

	filter := core.ProductFilter{
		ExcludeIDs: []string{anchor.ID},
		PriceMin:   &min,
		PriceMax:   &max,
		InStock:    true,
	}
	if catID := anchor.Category.CategoryID(); catID != "" {
		filter.CategoryIDs = []string{catID}
	}

	products, err := r.Products.FindProducts(ctx, filter, core.ProductSortNone, limit)
	if err != nil {
		return nil, err
	}
	return r.Enricher.EnrichProducts(ctx, products)
}
