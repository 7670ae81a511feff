package recall

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/enrich"
)

// Popular 是热门榜列表策略：按有效订单聚合销量取 TopN。
//
// 榜单 ID 优先从 RankCache（有序集合）读取；未命中时走订单聚合并把
// 结果写回缓存。聚合为空时退化为"任意未删除、未排除的商品"。
// 存活候选额外按平均评分过滤：有评分且 <= MinAvgRating 的剔除，
// 无评分的保留。
type Popular struct {
	Orders   core.OrderStore
	Feedback core.FeedbackStore
	Products core.ProductStore
	Enricher *enrich.Enricher

	// Cache 为 nil 时直接走订单聚合
	Cache RankCache

	// CacheKey 为空时取 "rank:popular"
	CacheKey string

	// CacheTTLSeconds <= 0 时取默认值 300
	CacheTTLSeconds int

	// FetchMultiplier 是超量拉取倍数，<= 0 时取默认值 3
	FetchMultiplier int

	// MinAvgRating 零值取默认 4（平均分 <= 4 的商品被剔除）
	MinAvgRating float64

	// Window 是销量统计窗口，0 表示全量（趋势榜设为 30 天）
	Window time.Duration

	// Now 是可注入的时钟，nil 时取 time.Now
	Now func() time.Time
}

func (r *Popular) Name() string { return "recall.popular" }

func (r *Popular) List(ctx context.Context, limit int, exclude map[string]bool) ([]*core.RecommendedProduct, error) {
	if limit <= 0 || r.Orders == nil || r.Products == nil || r.Enricher == nil {
		return nil, nil
	}

	multiplier := r.FetchMultiplier
	if multiplier <= 0 {
		multiplier = 3
	}
	fetch := limit * multiplier

	ids, err := r.rankedIDs(ctx, fetch+len(exclude))
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		// 聚合为空（还没有任何有效订单）：退化为任意可售商品
		return r.fallback(ctx, limit, exclude)
	}

	picked := make([]string, 0, fetch)
	for _, id := range ids {
		if exclude[id] {
			continue
		}
		picked = append(picked, id)
		if len(picked) >= fetch {
			break
		}
	}

	items, err := r.Enricher.EnrichIDs(ctx, picked)
	if err != nil {
		return nil, err
	}

	items, err = r.filterByRating(ctx, items)
	if err != nil {
		return nil, err
	}

	return capCandidates(items, limit), nil
}

// rankedIDs 返回按销量降序的商品 ID：缓存命中直接用，未命中聚合后写回。
func (r *Popular) rankedIDs(ctx context.Context, n int) ([]string, error) {
	key := r.CacheKey
	if key == "" {
		key = "rank:popular"
	}

	if r.Cache != nil {
		ids, err := r.Cache.GetRanking(ctx, key, n)
		if err == nil && len(ids) > 0 {
			return ids, nil
		}
		// 缓存读取失败等同未命中
	}

	var since *time.Time
	if r.Window > 0 {
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		t := now().Add(-r.Window)
		since = &t
	}

	rows, err := r.Orders.AggregateOrderLinesByProduct(ctx, core.SalesCountedStatuses(), since)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalQuantity > rows[j].TotalQuantity
	})

	if r.Cache != nil && len(rows) > 0 {
		ttl := r.CacheTTLSeconds
		if ttl <= 0 {
			ttl = 300
		}
		// 写回失败不影响本次结果
		_ = r.Cache.SetRanking(ctx, key, rows, ttl)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
		if n > 0 && len(ids) >= n {
			break
		}
	}
	return ids, nil
}

// filterByRating 剔除平均分过低的商品；没有评分聚合结果的商品保留。
func (r *Popular) filterByRating(ctx context.Context, items []*core.RecommendedProduct) ([]*core.RecommendedProduct, error) {
	if r.Feedback == nil || len(items) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(items))
	for _, rp := range items {
		ids = append(ids, rp.ProductID)
	}
	ratings, err := r.Feedback.AggregateAverageRatingByProduct(ctx, ids)
	if err != nil {
		return nil, err
	}

	minAvg := r.MinAvgRating
	if minAvg == 0 {
		minAvg = 4
	}
	avgByID := make(map[string]float64, len(ratings))
	for _, row := range ratings {
		avgByID[row.ProductID] = row.AvgRating
	}

	out := make([]*core.RecommendedProduct, 0, len(items))
	for _, rp := range items {
		if avg, ok := avgByID[rp.ProductID]; ok && avg <= minAvg {
			continue
		}
		out = append(out, rp)
	}
	return out, nil
}

func (r *Popular) fallback(ctx context.Context, limit int, exclude map[string]bool) ([]*core.RecommendedProduct, error) {
	excludeIDs := make([]string, 0, len(exclude))
	for id := range exclude {
		excludeIDs = append(excludeIDs, id)
	}
	sort.Strings(excludeIDs)

	products, err := r.Products.FindProducts(ctx, core.ProductFilter{ExcludeIDs: excludeIDs}, core.ProductSortNone, limit)
	if err != nil {
		return nil, err
	}
	items, err := r.Enricher.EnrichProducts(ctx, products)
	if err != nil {
		return nil, err
	}
	return capCandidates(items, limit), nil
}

// Trending 是趋势榜：与热门榜同构，但销量统计窗口限定在最近 30 天。
type Trending struct {
	Popular
}

func (r *Trending) Name() string { return "recall.trending" }

var (
	_ Lister = (*Popular)(nil)
	_ Lister = (*Trending)(nil)
)
