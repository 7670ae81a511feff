// Package engine 是推荐引擎的对外入口。
//
// 错误策略是"降级不上抛"：每个策略边界各自吞掉数据访问错误并退化为空列表，
// 任一策略失败不影响其他策略产出；入口方法从不返回错误——推荐栏空着
// 总好过拖垮整个页面渲染。空结果不是错误，只是"暂无推荐"。
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/backfill"
	"github.com/rushteam/shoprec/combine"
	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/enrich"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/preference"
	"github.com/rushteam/shoprec/recall"
)

// Engine 组合全部策略：个性化路径走 偏好提取 → 双路召回（并行）→ 合并 →
// 过滤/补全 → 兜底；公开路径直接走列表策略 + 补全。
//
// 所有依赖通过字段注入；Config / Logger / Cache 可空（取默认 / nop / 直连聚合）。
type Engine struct {
	Products  core.ProductStore
	Orders    core.OrderStore
	Feedback  core.FeedbackStore
	Wishlists core.WishlistStore
	Carts     core.CartStore
	Options   core.OptionStore

	Config *config.Config
	Cache  recall.RankCache
	Logger *zap.Logger

	initOnce sync.Once

	extractor     *preference.Extractor
	collaborative *recall.CollaborativeFiltering
	contentBased  *recall.ContentBased
	combiner      *combine.Combiner
	enricher      *enrich.Enricher
	popular       *recall.Popular
	trending      *recall.Trending
	newArrivals   *recall.NewArrivals
	similar       *recall.Similar
	stages        *pipeline.Pipeline
	backfiller    *backfill.Backfill
}

// init 按配置装配各策略组件，只执行一次。
func (e *Engine) init() {
	e.initOnce.Do(func() {
		if e.Config == nil {
			e.Config = config.Default()
		}
		if e.Logger == nil {
			e.Logger = zap.NewNop()
		}
		cfg := e.Config

		e.extractor = &preference.Extractor{
			Feedback:       e.Feedback,
			Wishlist:       e.Wishlists,
			LikedThreshold: cfg.Scoring.LikedRatingThreshold,
		}
		e.enricher = &enrich.Enricher{Products: e.Products, Options: e.Options}
		e.collaborative = &recall.CollaborativeFiltering{
			Orders:          e.Orders,
			Feedback:        e.Feedback,
			MaxCandidates:   cfg.Limits.MaxCandidates,
			FrequencyWeight: cfg.Scoring.CoPurchaseFrequencyWeight,
			QuantityWeight:  cfg.Scoring.CoPurchaseQuantityWeight,
			TopSimilarUsers: cfg.Limits.SimilarTasteTopUsers,
			MinSupport:      cfg.Limits.SimilarTasteMinSupport,
			LikedThreshold:  cfg.Scoring.LikedRatingThreshold,
		}
		e.contentBased = &recall.ContentBased{
			Products:       e.Products,
			MaxCandidates:  cfg.Limits.MaxCandidates,
			Base:           cfg.Scoring.ContentBase,
			LikedBonus:     cfg.Scoring.ContentLikedBonus,
			WishlistBonus:  cfg.Scoring.ContentWishlistBonus,
			PriceBonusMax:  cfg.Scoring.ContentPriceBonusMax,
			PriceBandWiden: cfg.Scoring.PriceBandWiden,
		}
		e.combiner = &combine.Combiner{CollaborativeBoost: cfg.Scoring.CollaborativeBoost}

		e.popular = &recall.Popular{
			Orders:          e.Orders,
			Feedback:        e.Feedback,
			Products:        e.Products,
			Enricher:        e.enricher,
			Cache:           e.Cache,
			CacheKey:        "rank:popular",
			CacheTTLSeconds: cfg.Limits.RankCacheTTLSeconds,
			FetchMultiplier: cfg.Limits.PopularFetchMultiplier,
			MinAvgRating:    cfg.Scoring.PopularMinAvgRating,
		}
		e.trending = &recall.Trending{Popular: recall.Popular{
			Orders:          e.Orders,
			Feedback:        e.Feedback,
			Products:        e.Products,
			Enricher:        e.enricher,
			Cache:           e.Cache,
			CacheKey:        "rank:trending",
			CacheTTLSeconds: cfg.Limits.RankCacheTTLSeconds,
			FetchMultiplier: cfg.Limits.PopularFetchMultiplier,
			MinAvgRating:    cfg.Scoring.PopularMinAvgRating,
			Window:          time.Duration(cfg.Limits.TrendingWindowDays) * 24 * time.Hour,
		}}
		e.newArrivals = &recall.NewArrivals{
			Products:        e.Products,
			Enricher:        e.enricher,
			FetchMultiplier: cfg.Limits.NewArrivalsFetchMultiplier,
		}
		e.similar = &recall.Similar{
			Products:    e.Products,
			Enricher:    e.enricher,
			PriceMargin: cfg.Scoring.SimilarPriceMargin,
		}

		// 运营规则在补全之后求值（需要商品载荷）；规则编译失败只丢弃规则
		postFilters := make([]filter.Filter, 0, 1)
		if rule, err := filter.NewRuleFilter(cfg.Rules); err != nil {
			e.Logger.Warn("rule filter disabled", zap.Error(err))
		} else {
			postFilters = append(postFilters, rule)
		}

		e.stages = &pipeline.Pipeline{Stages: []pipeline.Stage{
			&filter.Node{Filters: []filter.Filter{&filter.CartFilter{}}},
			e.enricher,
			&filter.Node{Filters: postFilters},
		}}
		e.backfiller = &backfill.Backfill{
			Popular:         e.popular,
			Trending:        e.trending,
			NewArrivals:     e.newArrivals,
			FetchMultiplier: cfg.Limits.BackfillFetchMultiplier,
			PopularScore:    cfg.Scoring.BackfillPopularScore,
			TrendingScore:   cfg.Scoring.BackfillTrendingScore,
			NewArrivalScore: cfg.Scoring.BackfillNewArrivalScore,
		}
	})
}

// GetPersonalizedRecommendations 返回顾客的个性化推荐列表。
// limit 的合法区间 [1,50] 由调用层校验；这里只防御非正值。
func (e *Engine) GetPersonalizedRecommendations(ctx context.Context, customerID string, limit int) []*core.RecommendedProduct {
	e.init()
	if limit <= 0 {
		return nil
	}

	rctx := &core.RecommendContext{
		CustomerID: customerID,
		Limit:      limit,
	}

	if e.Carts != nil {
		cart, err := e.Carts.FindCartByCustomer(ctx, customerID)
		switch {
		case err == nil:
			rctx.Cart = cart
		case core.IsNotFound(err):
			// 没有购物车不是故障
		default:
			e.Logger.Warn("cart lookup degraded", zap.String("customer", customerID), zap.Error(err))
		}
	}

	prefs, err := e.extractor.Extract(ctx, customerID)
	if err != nil {
		e.Logger.Warn("preference extraction degraded", zap.String("customer", customerID), zap.Error(err))
		prefs = core.NewUserPreferences()
	}
	rctx.Prefs = prefs

	// 双路召回并行；单路失败按空结果处理，不中断另一路
	var collaborative, contentBased []*core.RecommendedProduct
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		collaborative = e.recallFrom(egCtx, e.collaborative, rctx)
		return nil
	})
	eg.Go(func() error {
		contentBased = e.recallFrom(egCtx, e.contentBased, rctx)
		return nil
	})
	_ = eg.Wait()

	merged := e.combiner.Merge(collaborative, contentBased)

	out, err := e.stages.Run(ctx, rctx, merged)
	if err != nil {
		e.Logger.Warn("pipeline degraded", zap.String("customer", customerID), zap.Error(err))
		out = nil
	}
	if len(out) > limit {
		out = out[:limit]
	}

	personalized := len(out)
	out, _ = e.backfiller.Process(ctx, rctx, out)

	e.Logger.Debug("personalized recommendations",
		zap.String("customer", customerID),
		zap.Int("personalized", personalized),
		zap.Int("backfilled", len(out)-personalized),
	)
	return out
}

// recallFrom 执行单个召回源并把错误降级为空结果。
func (e *Engine) recallFrom(ctx context.Context, src recall.Source, rctx *core.RecommendContext) []*core.RecommendedProduct {
	items, err := src.Recall(ctx, rctx)
	if err != nil {
		e.Logger.Warn("recall source degraded",
			zap.String("source", src.Name()),
			zap.Error(err),
		)
		return nil
	}
	return items
}

// GetPopular 返回热门商品列表（公开路径，无个性化）。
func (e *Engine) GetPopular(ctx context.Context, limit int) []*core.RecommendedProduct {
	e.init()
	return e.listFrom(ctx, e.popular, limit)
}

// GetTrending 返回最近 30 天的趋势商品列表。
func (e *Engine) GetTrending(ctx context.Context, limit int) []*core.RecommendedProduct {
	e.init()
	return e.listFrom(ctx, e.trending, limit)
}

// GetNewArrivals 返回新品列表。
func (e *Engine) GetNewArrivals(ctx context.Context, limit int) []*core.RecommendedProduct {
	e.init()
	return e.listFrom(ctx, e.newArrivals, limit)
}

// GetSimilar 返回与锚点商品同类目、价格相近的商品列表。
func (e *Engine) GetSimilar(ctx context.Context, productID string, limit int) []*core.RecommendedProduct {
	e.init()
	items, err := e.similar.ListFor(ctx, productID, limit)
	if err != nil {
		e.Logger.Warn("similar listing degraded", zap.String("anchor", productID), zap.Error(err))
		return nil
	}
	return items
}

func (e *Engine) listFrom(ctx context.Context, lister recall.Lister, limit int) []*core.RecommendedProduct {
	if limit <= 0 {
		return nil
	}
	items, err := lister.List(ctx, limit, nil)
	if err != nil {
		e.Logger.Warn("listing degraded", zap.String("lister", lister.Name()), zap.Error(err))
		return nil
	}
	return items
}
