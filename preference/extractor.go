// Package preference 从评价与心愿单历史派生顾客的偏好快照。
package preference

import (
	"context"
	"math"

	"github.com/rushteam/shoprec/core"
)

// Extractor 构建 UserPreferences：喜欢集合、类目亲和、价格区间与信号标记。
// 零历史的顾客得到中性空快照，不是错误。
type Extractor struct {
	Feedback core.FeedbackStore
	Wishlist core.WishlistStore

	// LikedThreshold 是"喜欢"的评分下限，<= 0 时取默认值 4。
	LikedThreshold int
}

// Extract 读取顾客的评价与心愿单，派生偏好快照。
// 偏好是请求级的临时产物，从不落盘。
func (e *Extractor) Extract(ctx context.Context, customerID string) (*core.UserPreferences, error) {
	prefs := core.NewUserPreferences()
	if customerID == "" {
		return prefs, nil
	}

	threshold := e.LikedThreshold
	if threshold <= 0 {
		threshold = 4
	}

	feedback, err := e.Feedback.FindFeedbackByCustomer(ctx, customerID)
	if err != nil {
		// 没有记录不是故障，偏好保持中性
		if !core.IsNotFound(err) {
			return nil, err
		}
		feedback = nil
	}

	var (
		ratingSum   int
		priceMin    = math.Inf(1)
		priceMax    = math.Inf(-1)
		havePrice   bool
	)

	for _, fb := range feedback {
		if fb == nil || fb.Product.IsZero() {
			continue
		}
		prefs.HasFeedback = true
		ratingSum += fb.Rating

		if fb.Rating < threshold {
			continue
		}
		prefs.LikedProductIDs = append(prefs.LikedProductIDs, fb.Product.ProductID())

		// 关联字段可能是填充对象也可能是裸 ID；类目与价格只有填充后才可用
		p := fb.Product.Product()
		if p == nil {
			continue
		}
		if catID := p.Category.CategoryID(); catID != "" {
			prefs.LikedCategoryIDs[catID] = true
		}
		priceMin = math.Min(priceMin, p.Price)
		priceMax = math.Max(priceMax, p.Price)
		havePrice = true
	}
	if prefs.HasFeedback && len(feedback) > 0 {
		prefs.AvgRating = float64(ratingSum) / float64(len(feedback))
	}

	wishlist, err := e.Wishlist.FindWishlistByCustomer(ctx, customerID)
	if err != nil {
		if !core.IsNotFound(err) {
			return nil, err
		}
		wishlist = nil
	}
	if wishlist != nil && len(wishlist.Items) > 0 {
		prefs.HasWishlist = true
		for _, ref := range wishlist.Items {
			if ref.IsZero() {
				continue
			}
			prefs.WishlistedProductIDs = append(prefs.WishlistedProductIDs, ref.ProductID())

			p := ref.Product()
			if p == nil {
				continue
			}
			if catID := p.Category.CategoryID(); catID != "" {
				prefs.WishlistedCategoryIDs[catID] = true
			}
			priceMin = math.Min(priceMin, p.Price)
			priceMax = math.Max(priceMax, p.Price)
			havePrice = true
		}
	}

	// 无价格信号时保持中性区间 [0, +Inf)
	if havePrice {
		prefs.PriceMin = priceMin
		prefs.PriceMax = priceMax
	}

	return prefs, nil
}
