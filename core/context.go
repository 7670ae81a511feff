package core

// RecommendContext 承载单次推荐请求的上下文，贯穿召回、过滤、补全、兜底各阶段透传。
// 请求级快照（购物车、偏好）在入口处取一次，后续阶段不再回源。
type RecommendContext struct {
	CustomerID string
	Limit      int

	// Cart 是顾客当前购物车；匿名请求或读取失败时为 nil。
	Cart *Cart

	// Prefs 是本次请求派生的偏好快照；匿名请求时为中性空偏好。
	Prefs *UserPreferences

	// Exclude 是额外排除的商品 ID（兜底阶段用它排除已选中的候选）。
	Exclude map[string]bool
}

// CartProductIDs 返回购物车商品 ID 集合（nil 购物车返回 nil）。
func (rctx *RecommendContext) CartProductIDs() map[string]bool {
	if rctx == nil {
		return nil
	}
	return rctx.Cart.ProductIDSet()
}

// Excluded 判断商品是否被本次请求排除（购物车或显式排除集）。
func (rctx *RecommendContext) Excluded(productID string) bool {
	if rctx == nil {
		return false
	}
	if rctx.Exclude != nil && rctx.Exclude[productID] {
		return true
	}
	set := rctx.CartProductIDs()
	return set != nil && set[productID]
}
