package core

import "math"

// 推荐理由是面向用户展示的固定文案，只做解释，不参与排序。
const (
	ReasonFrequentlyBoughtTogether = "Frequently bought together"
	ReasonSimilarTaste             = "Users with similar taste liked this"
	ReasonHighlyRecommended        = "Highly recommended"
	ReasonLikedAndWishlisted       = "Similar to items you liked and wishlisted"
	ReasonLiked                    = "Similar to items you liked"
	ReasonWishlisted               = "Similar to items in your wishlist"
	ReasonBasedOnInterests         = "Based on your interests"
	ReasonPopular                  = "Popular choice"
	ReasonTrending                 = "Trending now"
	ReasonNewArrival               = "New arrival"
)

// OptionTypeView 是补全阶段挂到候选上的变体视图（含每个取值的库存）。
type OptionTypeView struct {
	ID     string
	Name   string
	Values []*OptionValue
}

// RecommendedProduct 是打分后的候选，单次请求内创建与丢弃。
// Score 在合并前是策略相对值；Reason 仅用于解释。
// Product / OptionTypes 由补全阶段挂载，召回阶段只有 ProductID 与分数。
type RecommendedProduct struct {
	ProductID   string
	Score       float64
	Reason      string
	Product     *Product
	OptionTypes []*OptionTypeView
}

// NewRecommendedProduct 创建一个候选。
func NewRecommendedProduct(productID string, score float64, reason string) *RecommendedProduct {
	return &RecommendedProduct{ProductID: productID, Score: score, Reason: reason}
}

// Available 按"有效库存"判定可售：
// 有选项时任一 OptionValue.Stock > 0 即可售；无选项时看商品自身库存。
// 仅在补全阶段挂载 Product / OptionTypes 之后才有意义。
func (rp *RecommendedProduct) Available() bool {
	if rp == nil || rp.Product == nil {
		return false
	}
	if len(rp.OptionTypes) > 0 {
		for _, ot := range rp.OptionTypes {
			for _, v := range ot.Values {
				if v.Stock > 0 {
					return true
				}
			}
		}
		return false
	}
	return rp.Product.Stock > 0
}

// UserPreferences 是单次请求内派生的偏好快照，从不落盘。
type UserPreferences struct {
	LikedProductIDs       []string
	WishlistedProductIDs  []string
	LikedCategoryIDs      map[string]bool
	WishlistedCategoryIDs map[string]bool
	AvgRating             float64
	PriceMin              float64
	PriceMax              float64 // 无价格信号时为 +Inf
	HasFeedback           bool
	HasWishlist           bool
}

// NewUserPreferences 返回中性的空偏好：价格区间 [0, +Inf)，无任何信号。
func NewUserPreferences() *UserPreferences {
	return &UserPreferences{
		LikedCategoryIDs:      make(map[string]bool),
		WishlistedCategoryIDs: make(map[string]bool),
		PriceMin:              0,
		PriceMax:              math.Inf(1),
	}
}

// HasSignal 判断是否存在任何可用于个性化的信号。
func (p *UserPreferences) HasSignal() bool {
	if p == nil {
		return false
	}
	return len(p.LikedProductIDs) > 0 || len(p.WishlistedProductIDs) > 0
}

// CategoryIDs 返回喜欢与心愿单类目的并集。
func (p *UserPreferences) CategoryIDs() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.LikedCategoryIDs)+len(p.WishlistedCategoryIDs))
	for id := range p.LikedCategoryIDs {
		out = append(out, id)
	}
	for id := range p.WishlistedCategoryIDs {
		if !p.LikedCategoryIDs[id] {
			out = append(out, id)
		}
	}
	return out
}

// PriceMidpoint 返回偏好价格区间的中点；区间无上界时返回 (0, false)。
func (p *UserPreferences) PriceMidpoint() (float64, bool) {
	if p == nil || math.IsInf(p.PriceMax, 1) {
		return 0, false
	}
	return (p.PriceMin + p.PriceMax) / 2, true
}
