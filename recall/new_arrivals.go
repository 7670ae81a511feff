package recall

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/enrich"
)

// NewArrivals 是新品列表策略：按创建时间降序取未删除商品，
// 超量拉取后交给补全阶段做有效库存过滤（不做评分过滤）。
type NewArrivals struct {
	Products core.ProductStore
	Enricher *enrich.Enricher

	// FetchMultiplier 是超量拉取倍数，<= 0 时取默认值 2
	FetchMultiplier int
}

func (r *NewArrivals) Name() string { return "recall.new_arrivals" }

func (r *NewArrivals) List(ctx context.Context, limit int, exclude map[string]bool) ([]*core.RecommendedProduct, error) {
	if limit <= 0 || r.Products == nil || r.Enricher == nil {
		return nil, nil
	}

	multiplier := r.FetchMultiplier
	if multiplier <= 0 {
		multiplier = 2
	}

	excludeIDs := make([]string, 0, len(exclude))
	for id := range exclude {
		excludeIDs = append(excludeIDs, id)
	}
	sort.Strings(excludeIDs)

	products, err := r.Products.FindProducts(ctx,
		core.ProductFilter{ExcludeIDs: excludeIDs},
		core.ProductSortNewest,
		limit*multiplier,
	)
	if err != nil {
		return nil, err
	}

	items, err := r.Enricher.EnrichProducts(ctx, products)
	if err != nil {
		return nil, err
	}
	return capCandidates(items, limit), nil
}

var _ Lister = (*NewArrivals)(nil)
