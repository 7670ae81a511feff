package core

import "time"

// Category 是商品类目。
type Category struct {
	ID   string
	Name string
}

// CategoryRef 是"已填充对象或裸 ID"的和类型。
// 文档型存储的关联字段既可能是填充后的对象，也可能是原始 ID；
// 所有打分/过滤代码只通过 CategoryID() 取值，不直接碰内部表示。
type CategoryRef struct {
	id       string
	category *Category
}

// CategoryIDRef 构造未填充的类目引用。
func CategoryIDRef(id string) CategoryRef {
	return CategoryRef{id: id}
}

// PopulatedCategoryRef 构造已填充的类目引用。
func PopulatedCategoryRef(c *Category) CategoryRef {
	if c == nil {
		return CategoryRef{}
	}
	return CategoryRef{id: c.ID, category: c}
}

// CategoryID 是唯一的归一化入口：无论填充与否都返回类目 ID。
// 空引用返回 ""。
func (r CategoryRef) CategoryID() string {
	if r.category != nil {
		return r.category.ID
	}
	return r.id
}

// Category 返回填充后的类目对象，未填充时返回 nil。
func (r CategoryRef) Category() *Category { return r.category }

// IsZero 判断引用是否为空（既无 ID 也无对象）。
func (r CategoryRef) IsZero() bool { return r.id == "" && r.category == nil }

// Product 是目录商品。
// DeletedAt 非 nil 表示软删除，软删除商品永远不可被推荐。
type Product struct {
	ID        string
	Name      string
	Price     float64 // >= 0
	Stock     int     // >= 0
	Category  CategoryRef
	Image     string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Recommendable 判断商品是否可进入推荐候选（未被软删除）。
func (p *Product) Recommendable() bool {
	return p != nil && p.DeletedAt == nil
}

// OptionType 是商品的变体维度（如颜色、尺寸）。
// 商品"有选项" 当且仅当存在 >= 1 个未删除的 OptionType。
type OptionType struct {
	ID        string
	ProductID string
	Name      string
	DeletedAt *time.Time
}

// OptionValue 是变体维度下的一个取值，带自己的库存与价格增量。
type OptionValue struct {
	ID           string
	OptionTypeID string
	Value        string
	Image        string
	PriceDelta   float64
	Stock        int
}
