package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// CartFilter 剔除已在顾客购物车里的候选：已经打算买的东西不用再推。
type CartFilter struct{}

func (f *CartFilter) Name() string { return "filter.cart" }

func (f *CartFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.RecommendedProduct,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	set := rctx.CartProductIDs()
	return set != nil && set[item.ProductID], nil
}

var _ Filter = (*CartFilter)(nil)
