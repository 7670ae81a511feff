package core

import (
	"context"
	"time"
)

// 存储端口定义在领域层（core），由基础设施层（store）实现。
//
// 设计原则：
//   - 遵循依赖倒置：领域层定义接口，基础设施层实现接口
//   - 所有跨实体读取都是批量一次查询，禁止 per-candidate 往返
//   - 端口只读：推荐引擎是纯派生计算，不产生任何写入
//
// 实现：
//   - store.Memory 实现全部端口（测试 / 原型）
//   - 真实部署由外围应用适配其文档型存储

// ProductSort 是商品查询的排序方式。
type ProductSort int

const (
	ProductSortNone   ProductSort = iota
	ProductSortNewest             // 按创建时间降序（新品）
)

// ProductFilter 是商品查询条件，各字段之间为 AND 关系。
// 软删除商品一律不返回，无需在过滤条件中表达。
type ProductFilter struct {
	IDs         []string // id ∈ 集合（空表示不限制）
	ExcludeIDs  []string // id ∉ 集合
	CategoryIDs []string // 类目 ∈ 集合（空表示不限制）
	PriceMin    *float64
	PriceMax    *float64
	InStock     bool // 仅返回自身库存 > 0 的商品（相似推荐用）
}

// ProductStore 是商品目录读取端口。
type ProductStore interface {
	// FindProducts 按条件查询未删除商品。limit <= 0 表示不限制。
	FindProducts(ctx context.Context, filter ProductFilter, sort ProductSort, limit int) ([]*Product, error)
}

// ProductQuantity 是订单行聚合结果：商品与累计销量。
type ProductQuantity struct {
	ProductID     string
	TotalQuantity int
}

// OrderStore 是订单读取端口。
type OrderStore interface {
	// FindOrdersContainingProduct 查询包含指定商品、状态在集合内、
	// 且不属于 excludeCustomerID 的订单（共购挖掘）。
	FindOrdersContainingProduct(ctx context.Context, productID, excludeCustomerID string, statuses []OrderStatus) ([]*Order, error)

	// AggregateOrderLinesByProduct 按商品聚合订单行销量。
	// since 非 nil 时只统计该时刻之后创建的订单（趋势窗口）。
	AggregateOrderLinesByProduct(ctx context.Context, statuses []OrderStatus, since *time.Time) ([]ProductQuantity, error)
}

// ProductRating 是评价聚合结果：商品与平均评分。
type ProductRating struct {
	ProductID string
	AvgRating float64
}

// FeedbackStore 是评价读取端口。
type FeedbackStore interface {
	// FindFeedbackByCustomer 查询某顾客的全部评价（商品字段尽量填充类目）。
	FindFeedbackByCustomer(ctx context.Context, customerID string) ([]*Feedback, error)

	// FindFeedbackByProducts 查询其他顾客对指定商品集合的评价（口味相似度）。
	FindFeedbackByProducts(ctx context.Context, productIDs []string, excludeCustomerID string) ([]*Feedback, error)

	// FindFeedbackByCustomers 查询指定顾客集合的全部评价（相似顾客的喜好聚合）。
	FindFeedbackByCustomers(ctx context.Context, customerIDs []string) ([]*Feedback, error)

	// AggregateAverageRatingByProduct 按商品聚合平均评分；无评价的商品不出现在结果中。
	AggregateAverageRatingByProduct(ctx context.Context, productIDs []string) ([]ProductRating, error)
}

// WishlistStore 是心愿单读取端口。
type WishlistStore interface {
	// FindWishlistByCustomer 返回顾客心愿单；不存在时返回 (nil, nil)，不是错误。
	FindWishlistByCustomer(ctx context.Context, customerID string) (*Wishlist, error)
}

// CartStore 是购物车读取端口。
type CartStore interface {
	// FindCartByCustomer 返回顾客购物车；不存在时返回 (nil, nil)，不是错误。
	FindCartByCustomer(ctx context.Context, customerID string) (*Cart, error)
}

// OptionStore 是商品变体读取端口。
type OptionStore interface {
	// FindOptionTypesByProducts 批量查询商品集合的未删除变体维度。
	FindOptionTypesByProducts(ctx context.Context, productIDs []string) ([]*OptionType, error)

	// FindOptionValuesByOptionTypes 批量查询变体维度集合的全部取值。
	FindOptionValuesByOptionTypes(ctx context.Context, optionTypeIDs []string) ([]*OptionValue, error)
}
