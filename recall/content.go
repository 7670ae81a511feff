package recall

import (
	"context"
	"math"

	"github.com/rushteam/shoprec/core"
)

// ContentBased 是基于内容的召回源：按类目与价格亲和给目录商品打分。
//
// 候选池：未删除、排除已喜欢/已心愿单的商品，限定在偏好类目并集内
// （并集非空时），价格带在偏好区间两端各放宽 PriceBandWiden。
//
// 打分：基分 ContentBase；类目命中喜欢类目 +LikedBonus，否则命中心愿单
// 类目 +WishlistBonus（喜欢优先）；再加价格贴近度
// max(0, PriceBonusMax - |price - midpoint| / midpoint)。
//
// 顾客没有喜欢或心愿单商品时返回空列表，不是错误。
type ContentBased struct {
	Products core.ProductStore

	// MaxCandidates 是候选池上限，<= 0 时取默认值 20
	MaxCandidates int

	// Base / LikedBonus / WishlistBonus / PriceBonusMax 零值取默认 5 / 3 / 2 / 2
	Base          float64
	LikedBonus    float64
	WishlistBonus float64
	PriceBonusMax float64

	// PriceBandWiden 是价格带放宽比例，零值取默认 0.3
	PriceBandWiden float64
}

func (r *ContentBased) Name() string { return "recall.content" }

func (r *ContentBased) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.RecommendedProduct, error) {
	if r.Products == nil || rctx == nil {
		return nil, nil
	}
	prefs := rctx.Prefs
	if !prefs.HasSignal() {
		return nil, nil
	}

	widen := r.PriceBandWiden
	if widen == 0 {
		widen = 0.3
	}

	filter := core.ProductFilter{
		ExcludeIDs:  append(append([]string{}, prefs.LikedProductIDs...), prefs.WishlistedProductIDs...),
		CategoryIDs: prefs.CategoryIDs(),
	}
	if !math.IsInf(prefs.PriceMax, 1) {
		min := prefs.PriceMin * (1 - widen)
		max := prefs.PriceMax * (1 + widen)
		if min < 0 {
			min = 0
		}
		filter.PriceMin = &min
		filter.PriceMax = &max
	}

	candidates, err := r.Products.FindProducts(ctx, filter, core.ProductSortNone, r.maxCandidates())
	if err != nil {
		return nil, err
	}

	base := r.Base
	if base == 0 {
		base = 5
	}
	likedBonus := r.LikedBonus
	if likedBonus == 0 {
		likedBonus = 3
	}
	wishBonus := r.WishlistBonus
	if wishBonus == 0 {
		wishBonus = 2
	}
	priceBonusMax := r.PriceBonusMax
	if priceBonusMax == 0 {
		priceBonusMax = 2
	}
	midpoint, hasMidpoint := prefs.PriceMidpoint()

	out := make([]*core.RecommendedProduct, 0, len(candidates))
	for _, p := range candidates {
		score := base
		catID := p.Category.CategoryID()
		likedHit := catID != "" && prefs.LikedCategoryIDs[catID]
		wishHit := catID != "" && prefs.WishlistedCategoryIDs[catID]

		// 喜欢类目优先于心愿单类目，只加一项
		switch {
		case likedHit:
			score += likedBonus
		case wishHit:
			score += wishBonus
		}

		if hasMidpoint && midpoint > 0 {
			bonus := priceBonusMax - math.Abs(p.Price-midpoint)/midpoint
			if bonus > 0 {
				score += bonus
			}
		}

		out = append(out, core.NewRecommendedProduct(p.ID, score, contentReason(likedHit, wishHit)))
	}

	sortByScore(out)
	return out, nil
}

// contentReason 按命中的信号选择理由文案：双命中 > 仅喜欢 > 仅心愿单 > 通用。
func contentReason(likedHit, wishHit bool) string {
	switch {
	case likedHit && wishHit:
		return core.ReasonLikedAndWishlisted
	case likedHit:
		return core.ReasonLiked
	case wishHit:
		return core.ReasonWishlisted
	default:
		return core.ReasonBasedOnInterests
	}
}

func (r *ContentBased) maxCandidates() int {
	if r.MaxCandidates <= 0 {
		return 20
	}
	return r.MaxCandidates
}

var _ Source = (*ContentBased)(nil)
