package core

import "time"

// ProductRef 是商品关联字段的和类型，与 CategoryRef 同构：
// 既兼容填充后的商品对象，也兼容裸 ID。
type ProductRef struct {
	id      string
	product *Product
}

// ProductIDRef 构造未填充的商品引用。
func ProductIDRef(id string) ProductRef {
	return ProductRef{id: id}
}

// PopulatedProductRef 构造已填充的商品引用。
func PopulatedProductRef(p *Product) ProductRef {
	if p == nil {
		return ProductRef{}
	}
	return ProductRef{id: p.ID, product: p}
}

// ProductID 归一化入口：无论填充与否都返回商品 ID。
func (r ProductRef) ProductID() string {
	if r.product != nil {
		return r.product.ID
	}
	return r.id
}

// Product 返回填充后的商品对象，未填充时返回 nil。
func (r ProductRef) Product() *Product { return r.product }

// IsZero 判断引用是否为空。
func (r ProductRef) IsZero() bool { return r.id == "" && r.product == nil }

// Feedback 是顾客对商品的评价。Rating 取值 [1,5]，>= 4 视为"喜欢"。
// Product 可能被填充（含类目），也可能只有裸 ID。
type Feedback struct {
	ID         string
	CustomerID string
	Product    ProductRef
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// Wishlist 是顾客的心愿单，每个顾客至多一份。
// 不存在心愿单表示偏好信号为空，不是错误。
type Wishlist struct {
	CustomerID string
	Items      []ProductRef // 保持加入顺序
}

// CartItem 是购物车中的一行。
type CartItem struct {
	ProductID string
	Quantity  int
}

// Cart 是顾客的购物车，每个顾客至多一份。
// 最后追加的一行是共购挖掘的"当前意图"锚点。
type Cart struct {
	CustomerID string
	Items      []CartItem
}

// LastItem 返回最近加入购物车的一行。
func (c *Cart) LastItem() (CartItem, bool) {
	if c == nil || len(c.Items) == 0 {
		return CartItem{}, false
	}
	return c.Items[len(c.Items)-1], true
}

// ProductIDSet 返回购物车内商品 ID 的集合。
func (c *Cart) ProductIDSet() map[string]bool {
	if c == nil || len(c.Items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.Items))
	for _, it := range c.Items {
		set[it.ProductID] = true
	}
	return set
}

// OrderStatus 是订单状态。
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// SalesCountedStatuses 返回计入热度/共购信号的状态集合：
// 只有 completed / shipped / processing 的订单算作有效销售。
func SalesCountedStatuses() []OrderStatus {
	return []OrderStatus{OrderCompleted, OrderShipped, OrderProcessing}
}

// OrderItem 是订单中的一行。
type OrderItem struct {
	ProductID string
	Quantity  int
}

// Order 是历史订单。
type Order struct {
	ID         string
	CustomerID string
	Items      []OrderItem
	Status     OrderStatus
	CreatedAt  time.Time
}

// Contains 判断订单是否包含指定商品。
func (o *Order) Contains(productID string) bool {
	if o == nil {
		return false
	}
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
