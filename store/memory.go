// Package store 包含存储端口的实现。接口定义在 core 包。
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/shoprec/core"
)

// Memory 是内存实现的文档存储，用于测试/开发/原型。
// 实现全部读取端口；写入方法仅用于构造数据集，进程重启后数据丢失。
type Memory struct {
	mu          sync.RWMutex
	products    []*core.Product
	optionTypes []*core.OptionType
	optionVals  []*core.OptionValue
	feedback    []*core.Feedback
	wishlists   map[string]*core.Wishlist
	carts       map[string]*core.Cart
	orders      []*core.Order
}

func NewMemory() *Memory {
	return &Memory{
		wishlists: make(map[string]*core.Wishlist),
		carts:     make(map[string]*core.Cart),
	}
}

// 数据集构造方法（非端口）

func (m *Memory) AddProduct(p *core.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, p)
}

func (m *Memory) AddOptionType(ot *core.OptionType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optionTypes = append(m.optionTypes, ot)
}

func (m *Memory) AddOptionValue(v *core.OptionValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optionVals = append(m.optionVals, v)
}

func (m *Memory) AddFeedback(fb *core.Feedback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, fb)
}

func (m *Memory) SetWishlist(w *core.Wishlist) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wishlists[w.CustomerID] = w
}

func (m *Memory) SetCart(c *core.Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.CustomerID] = c
}

func (m *Memory) AddOrder(o *core.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
}

// ProductStore

func (m *Memory) FindProducts(_ context.Context, filter core.ProductFilter, sortBy core.ProductSort, limit int) ([]*core.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idSet := toSet(filter.IDs)
	excludeSet := toSet(filter.ExcludeIDs)
	categorySet := toSet(filter.CategoryIDs)

	out := make([]*core.Product, 0)
	for _, p := range m.products {
		if !p.Recommendable() {
			continue
		}
		if idSet != nil && !idSet[p.ID] {
			continue
		}
		if excludeSet[p.ID] {
			continue
		}
		if categorySet != nil && !categorySet[p.Category.CategoryID()] {
			continue
		}
		if filter.PriceMin != nil && p.Price < *filter.PriceMin {
			continue
		}
		if filter.PriceMax != nil && p.Price > *filter.PriceMax {
			continue
		}
		if filter.InStock && p.Stock <= 0 {
			continue
		}
		out = append(out, p)
	}

	if sortBy == core.ProductSortNewest {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// OrderStore

func (m *Memory) FindOrdersContainingProduct(_ context.Context, productID, excludeCustomerID string, statuses []core.OrderStatus) ([]*core.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statusSet := make(map[core.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		statusSet[s] = true
	}

	out := make([]*core.Order, 0)
	for _, o := range m.orders {
		if o.CustomerID == excludeCustomerID {
			continue
		}
		if len(statusSet) > 0 && !statusSet[o.Status] {
			continue
		}
		if !o.Contains(productID) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *Memory) AggregateOrderLinesByProduct(_ context.Context, statuses []core.OrderStatus, since *time.Time) ([]core.ProductQuantity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statusSet := make(map[core.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		statusSet[s] = true
	}

	totals := make(map[string]int)
	order := make([]string, 0)
	for _, o := range m.orders {
		if len(statusSet) > 0 && !statusSet[o.Status] {
			continue
		}
		if since != nil && o.CreatedAt.Before(*since) {
			continue
		}
		for _, line := range o.Items {
			if _, ok := totals[line.ProductID]; !ok {
				order = append(order, line.ProductID)
			}
			totals[line.ProductID] += line.Quantity
		}
	}

	out := make([]core.ProductQuantity, 0, len(totals))
	for _, id := range order {
		out = append(out, core.ProductQuantity{ProductID: id, TotalQuantity: totals[id]})
	}
	return out, nil
}

// FeedbackStore

func (m *Memory) FindFeedbackByCustomer(_ context.Context, customerID string) ([]*core.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*core.Feedback, 0)
	for _, fb := range m.feedback {
		if fb.CustomerID == customerID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (m *Memory) FindFeedbackByProducts(_ context.Context, productIDs []string, excludeCustomerID string) ([]*core.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idSet := toSet(productIDs)
	out := make([]*core.Feedback, 0)
	for _, fb := range m.feedback {
		if fb.CustomerID == excludeCustomerID {
			continue
		}
		if idSet != nil && !idSet[fb.Product.ProductID()] {
			continue
		}
		out = append(out, fb)
	}
	return out, nil
}

func (m *Memory) FindFeedbackByCustomers(_ context.Context, customerIDs []string) ([]*core.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idSet := toSet(customerIDs)
	out := make([]*core.Feedback, 0)
	for _, fb := range m.feedback {
		if idSet != nil && !idSet[fb.CustomerID] {
			continue
		}
		out = append(out, fb)
	}
	return out, nil
}

func (m *Memory) AggregateAverageRatingByProduct(_ context.Context, productIDs []string) ([]core.ProductRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idSet := toSet(productIDs)
	sums := make(map[string]int)
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, fb := range m.feedback {
		id := fb.Product.ProductID()
		if idSet != nil && !idSet[id] {
			continue
		}
		if _, ok := counts[id]; !ok {
			order = append(order, id)
		}
		sums[id] += fb.Rating
		counts[id]++
	}

	out := make([]core.ProductRating, 0, len(counts))
	for _, id := range order {
		out = append(out, core.ProductRating{
			ProductID: id,
			AvgRating: float64(sums[id]) / float64(counts[id]),
		})
	}
	return out, nil
}

// WishlistStore / CartStore

func (m *Memory) FindWishlistByCustomer(_ context.Context, customerID string) (*core.Wishlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wishlists[customerID], nil
}

func (m *Memory) FindCartByCustomer(_ context.Context, customerID string) (*core.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.carts[customerID], nil
}

// OptionStore

func (m *Memory) FindOptionTypesByProducts(_ context.Context, productIDs []string) ([]*core.OptionType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idSet := toSet(productIDs)
	out := make([]*core.OptionType, 0)
	for _, ot := range m.optionTypes {
		if ot.DeletedAt != nil {
			continue
		}
		if idSet != nil && !idSet[ot.ProductID] {
			continue
		}
		out = append(out, ot)
	}
	return out, nil
}

func (m *Memory) FindOptionValuesByOptionTypes(_ context.Context, optionTypeIDs []string) ([]*core.OptionValue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idSet := toSet(optionTypeIDs)
	out := make([]*core.OptionValue, 0)
	for _, v := range m.optionVals {
		if idSet != nil && !idSet[v.OptionTypeID] {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// 确保 Memory 实现全部读取端口
var (
	_ core.ProductStore  = (*Memory)(nil)
	_ core.OrderStore    = (*Memory)(nil)
	_ core.FeedbackStore = (*Memory)(nil)
	_ core.WishlistStore = (*Memory)(nil)
	_ core.CartStore     = (*Memory)(nil)
	_ core.OptionStore   = (*Memory)(nil)
)
