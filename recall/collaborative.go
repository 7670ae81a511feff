package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/shoprec/core"
)

// CollaborativeFiltering 是协同过滤召回源，内含两个互斥子策略，按序尝试：
//
// (a) 购物车共购（cart co-purchase）
//   - 锚点 = 购物车最近加入的商品（"当前意图"）
//   - 在其他顾客的有效订单（completed/shipped/processing）里挖掘共现商品
//   - score = (orderFreq / totalOrders) * FrequencyWeight + ln(qty+1) * QuantityWeight
//   - "我买了这个，别人还一起买了什么"
//
// (b) 口味相似兜底（feedback similarity）
//   - 购物车为空或锚点没有共购订单时启用
//   - 共同评分商品上的相似度 = 1 - |ratingDiff| / 4，按顾客累积后取 TopK
//   - 聚合相似顾客的高分评价，要求 >= MinSupport 个不同顾客支持
//   - score = avgRating * (1 + ln(supportCount))
//
// 顾客没有任何评价历史时两个子策略都无从谈起，返回空列表，不是错误。
type CollaborativeFiltering struct {
	Orders   core.OrderStore
	Feedback core.FeedbackStore

	// MaxCandidates 是候选上限，<= 0 时取默认值 20
	MaxCandidates int

	// FrequencyWeight / QuantityWeight 是共购打分权重，零值取默认 10 / 0.5
	FrequencyWeight float64
	QuantityWeight  float64

	// TopSimilarUsers 是口味相似召回考虑的相似顾客数，<= 0 时取默认值 10
	TopSimilarUsers int

	// MinSupport 是候选需要的最少支持顾客数，<= 0 时取默认值 2
	MinSupport int

	// LikedThreshold 是"喜欢"的评分下限，<= 0 时取默认值 4
	LikedThreshold int
}

func (r *CollaborativeFiltering) Name() string { return "recall.collaborative" }

func (r *CollaborativeFiltering) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.RecommendedProduct, error) {
	if r.Orders == nil || r.Feedback == nil || rctx == nil || rctx.CustomerID == "" {
		return nil, nil
	}

	anchor, ok := rctx.Cart.LastItem()
	if ok {
		items, found, err := r.coPurchase(ctx, rctx, anchor.ProductID)
		if err != nil {
			return nil, err
		}
		if found {
			return items, nil
		}
	}

	return r.feedbackSimilarity(ctx, rctx)
}

// coPurchase 挖掘锚点商品的共购商品。
// found=false 表示锚点没有任何有效共购订单，调用方应转入口味相似兜底。
func (r *CollaborativeFiltering) coPurchase(
	ctx context.Context,
	rctx *core.RecommendContext,
	anchorID string,
) ([]*core.RecommendedProduct, bool, error) {
	orders, err := r.Orders.FindOrdersContainingProduct(ctx, anchorID, rctx.CustomerID, core.SalesCountedStatuses())
	if err != nil {
		return nil, false, err
	}
	if len(orders) == 0 {
		return nil, false, nil
	}

	cartSet := rctx.CartProductIDs()
	freq := make(map[string]int)     // 出现该商品的订单数
	quantity := make(map[string]int) // 累计销量
	discovered := make([]string, 0)  // 发现顺序，保证同分时排序稳定

	for _, order := range orders {
		seen := make(map[string]bool, len(order.Items))
		for _, line := range order.Items {
			if line.ProductID == anchorID || cartSet[line.ProductID] {
				continue
			}
			if _, ok := quantity[line.ProductID]; !ok {
				discovered = append(discovered, line.ProductID)
			}
			quantity[line.ProductID] += line.Quantity
			if !seen[line.ProductID] {
				seen[line.ProductID] = true
				freq[line.ProductID]++
			}
		}
	}

	freqWeight := r.FrequencyWeight
	if freqWeight == 0 {
		freqWeight = 10
	}
	qtyWeight := r.QuantityWeight
	if qtyWeight == 0 {
		qtyWeight = 0.5
	}

	total := float64(len(orders))
	out := make([]*core.RecommendedProduct, 0, len(freq))
	for _, productID := range discovered {
		score := float64(freq[productID])/total*freqWeight +
			math.Log(float64(quantity[productID])+1)*qtyWeight
		out = append(out, core.NewRecommendedProduct(productID, score, core.ReasonFrequentlyBoughtTogether))
	}

	sortByScore(out)
	return capCandidates(out, r.maxCandidates()), true, nil
}

// feedbackSimilarity 按口味最接近的顾客聚合高分商品。
func (r *CollaborativeFiltering) feedbackSimilarity(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.RecommendedProduct, error) {
	mine, err := r.Feedback.FindFeedbackByCustomer(ctx, rctx.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(mine) == 0 {
		return nil, nil
	}

	myRating := make(map[string]int, len(mine))
	ratedIDs := make([]string, 0, len(mine))
	for _, fb := range mine {
		id := fb.Product.ProductID()
		if id == "" {
			continue
		}
		if _, ok := myRating[id]; !ok {
			ratedIDs = append(ratedIDs, id)
		}
		myRating[id] = fb.Rating
	}

	others, err := r.Feedback.FindFeedbackByProducts(ctx, ratedIDs, rctx.CustomerID)
	if err != nil {
		return nil, err
	}

	// 共同商品上的评分差换算相似度并按顾客累积
	similarity := make(map[string]float64)
	customerOrder := make([]string, 0)
	for _, fb := range others {
		my, ok := myRating[fb.Product.ProductID()]
		if !ok {
			continue
		}
		if _, ok := similarity[fb.CustomerID]; !ok {
			customerOrder = append(customerOrder, fb.CustomerID)
		}
		diff := math.Abs(float64(fb.Rating - my))
		similarity[fb.CustomerID] += 1 - diff/4
	}
	if len(similarity) == 0 {
		return nil, nil
	}

	type rankedCustomer struct {
		customerID string
		similarity float64
	}
	ranked := make([]rankedCustomer, 0, len(similarity))
	for _, id := range customerOrder {
		ranked = append(ranked, rankedCustomer{customerID: id, similarity: similarity[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})

	topUsers := r.TopSimilarUsers
	if topUsers <= 0 {
		topUsers = 10
	}
	if len(ranked) > topUsers {
		ranked = ranked[:topUsers]
	}
	topIDs := make([]string, 0, len(ranked))
	for _, rc := range ranked {
		topIDs = append(topIDs, rc.customerID)
	}

	theirs, err := r.Feedback.FindFeedbackByCustomers(ctx, topIDs)
	if err != nil {
		return nil, err
	}

	liked := r.LikedThreshold
	if liked <= 0 {
		liked = 4
	}
	minSupport := r.MinSupport
	if minSupport <= 0 {
		minSupport = 2
	}

	type support struct {
		ratingSum int
		raters    map[string]bool
	}
	supports := make(map[string]*support)
	discovered := make([]string, 0)

	for _, fb := range theirs {
		productID := fb.Product.ProductID()
		if productID == "" || fb.Rating < liked {
			continue
		}
		// 只推荐请求者自己没评过的商品
		if _, rated := myRating[productID]; rated {
			continue
		}
		s, ok := supports[productID]
		if !ok {
			s = &support{raters: make(map[string]bool)}
			supports[productID] = s
			discovered = append(discovered, productID)
		}
		if !s.raters[fb.CustomerID] {
			s.raters[fb.CustomerID] = true
			s.ratingSum += fb.Rating
		}
	}

	out := make([]*core.RecommendedProduct, 0, len(supports))
	for _, productID := range discovered {
		s := supports[productID]
		count := len(s.raters)
		if count < minSupport {
			continue
		}
		avg := float64(s.ratingSum) / float64(count)
		score := avg * (1 + math.Log(float64(count)))
		out = append(out, core.NewRecommendedProduct(productID, score, core.ReasonSimilarTaste))
	}

	sortByScore(out)
	return capCandidates(out, r.maxCandidates()), nil
}

func (r *CollaborativeFiltering) maxCandidates() int {
	if r.MaxCandidates <= 0 {
		return 20
	}
	return r.MaxCandidates
}

// sortByScore 按分数降序稳定排序（同分保持发现顺序）。
func sortByScore(items []*core.RecommendedProduct) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

func capCandidates(items []*core.RecommendedProduct, max int) []*core.RecommendedProduct {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}

var _ Source = (*CollaborativeFiltering)(nil)
