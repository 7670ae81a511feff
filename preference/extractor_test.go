package preference_test

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/preference"
	"github.com/rushteam/shoprec/store"
)

func newProduct(id, categoryID string, price float64) *core.Product {
	return &core.Product{
		ID:       id,
		Name:     "product " + id,
		Price:    price,
		Stock:    10,
		Category: populatedCategory(categoryID),
	}
}

func populatedCategory(id string) core.CategoryRef {
	return core.PopulatedCategoryRef(&core.Category{ID: id, Name: "category " + id})
}

func TestExtractorNoHistory(t *testing.T) {
	mem := store.NewMemory()
	ex := &preference.Extractor{Feedback: mem, Wishlist: mem}

	prefs, err := ex.Extract(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if prefs.HasSignal() {
		t.Error("expected no signal for customer without history")
	}
	if prefs.HasFeedback || prefs.HasWishlist {
		t.Error("expected both flags false")
	}
	if prefs.PriceMin != 0 || !math.IsInf(prefs.PriceMax, 1) {
		t.Errorf("expected neutral price band [0, +Inf), got [%v, %v]", prefs.PriceMin, prefs.PriceMax)
	}
}

func TestExtractorEmptyCustomerID(t *testing.T) {
	mem := store.NewMemory()
	ex := &preference.Extractor{Feedback: mem, Wishlist: mem}

	prefs, err := ex.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if prefs.HasSignal() {
		t.Error("anonymous request must get neutral preferences")
	}
}

func TestExtractorLikedThreshold(t *testing.T) {
	mem := store.NewMemory()
	mem.AddFeedback(&core.Feedback{
		ID: "f1", CustomerID: "c1", Rating: 5,
		Product: core.PopulatedProductRef(newProduct("p1", "cat_a", 100)),
	})
	mem.AddFeedback(&core.Feedback{
		ID: "f2", CustomerID: "c1", Rating: 3,
		Product: core.PopulatedProductRef(newProduct("p2", "cat_b", 50)),
	})
	ex := &preference.Extractor{Feedback: mem, Wishlist: mem}

	prefs, err := ex.Extract(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := prefs.LikedProductIDs; len(got) != 1 || got[0] != "p1" {
		t.Errorf("liked products = %v, want [p1]", got)
	}
	if !prefs.LikedCategoryIDs["cat_a"] {
		t.Error("cat_a should be a liked category")
	}
	if prefs.LikedCategoryIDs["cat_b"] {
		t.Error("rating 3 must not contribute a liked category")
	}
	if !prefs.HasFeedback {
		t.Error("HasFeedback should be true")
	}
	if want := float64(5+3) / 2; prefs.AvgRating != want {
		t.Errorf("AvgRating = %v, want %v", prefs.AvgRating, want)
	}
}

func TestExtractorUnpopulatedRef(t *testing.T) {
	mem := store.NewMemory()
	mem.AddFeedback(&core.Feedback{
		ID: "f1", CustomerID: "c1", Rating: 5,
		Product: core.ProductIDRef("p1"),
	})
	ex := &preference.Extractor{Feedback: mem, Wishlist: mem}

	prefs, err := ex.Extract(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := prefs.LikedProductIDs; len(got) != 1 || got[0] != "p1" {
		t.Errorf("liked products = %v, want [p1]", got)
	}
	// 未填充的引用拿不到类目与价格，但 ID 维度的信号仍然有效
	if len(prefs.LikedCategoryIDs) != 0 {
		t.Errorf("category set should stay empty, got %v", prefs.LikedCategoryIDs)
	}
	if !math.IsInf(prefs.PriceMax, 1) {
		t.Error("price band must stay neutral without populated products")
	}
}

// notFoundFeedback 模拟把"无记录"报告成 NOT_FOUND 错误的存储实现。
type notFoundFeedback struct {
	*store.Memory
}

func (notFoundFeedback) FindFeedbackByCustomer(context.Context, string) ([]*core.Feedback, error) {
	return nil, core.ErrStoreNotFound
}

func TestExtractorTreatsNotFoundAsEmpty(t *testing.T) {
	mem := store.NewMemory()
	ex := &preference.Extractor{Feedback: notFoundFeedback{Memory: mem}, Wishlist: mem}

	prefs, err := ex.Extract(context.Background(), "c1")
	if err != nil {
		t.Fatalf("NOT_FOUND must not surface as an error, got %v", err)
	}
	if prefs.HasSignal() || prefs.HasFeedback {
		t.Errorf("NOT_FOUND should read as zero history, got %+v", prefs)
	}
}

func TestExtractorPriceBand(t *testing.T) {
	mem := store.NewMemory()
	mem.AddFeedback(&core.Feedback{
		ID: "f1", CustomerID: "c1", Rating: 4,
		Product: core.PopulatedProductRef(newProduct("p1", "cat_a", 80)),
	})
	mem.SetWishlist(&core.Wishlist{
		CustomerID: "c1",
		Items: []core.ProductRef{
			core.PopulatedProductRef(newProduct("p2", "cat_b", 120)),
		},
	})
	ex := &preference.Extractor{Feedback: mem, Wishlist: mem}

	prefs, err := ex.Extract(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if prefs.PriceMin != 80 || prefs.PriceMax != 120 {
		t.Errorf("price band = [%v, %v], want [80, 120]", prefs.PriceMin, prefs.PriceMax)
	}
	if !prefs.HasWishlist {
		t.Error("HasWishlist should be true")
	}
	if !prefs.WishlistedCategoryIDs["cat_b"] {
		t.Error("cat_b should be a wishlisted category")
	}
	mid, ok := prefs.PriceMidpoint()
	if !ok || mid != 100 {
		t.Errorf("midpoint = %v (%v), want 100", mid, ok)
	}
}
