package enrich_test

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/enrich"
	"github.com/rushteam/shoprec/store"
)

func seedProduct(mem *store.Memory, id string, stock int) {
	mem.AddProduct(&core.Product{
		ID:       id,
		Name:     "product " + id,
		Price:    10,
		Stock:    stock,
		Category: core.CategoryIDRef("cat_a"),
	})
}

func TestEnrichAvailability(t *testing.T) {
	mem := store.NewMemory()
	seedProduct(mem, "p_plain", 3)
	seedProduct(mem, "p_out", 0)

	// p_opt 自身库存 0，但有一个取值有库存 → 可售
	seedProduct(mem, "p_opt", 0)
	mem.AddOptionType(&core.OptionType{ID: "ot1", ProductID: "p_opt", Name: "Size"})
	mem.AddOptionValue(&core.OptionValue{ID: "ov1", OptionTypeID: "ot1", Value: "S", Stock: 0})
	mem.AddOptionValue(&core.OptionValue{ID: "ov2", OptionTypeID: "ot1", Value: "M", Stock: 3})

	// p_opt_out 所有取值都售罄 → 不可售（即使自身库存 > 0）
	seedProduct(mem, "p_opt_out", 9)
	mem.AddOptionType(&core.OptionType{ID: "ot2", ProductID: "p_opt_out", Name: "Size"})
	mem.AddOptionValue(&core.OptionValue{ID: "ov3", OptionTypeID: "ot2", Value: "S", Stock: 0})

	deleted := time.Now()
	mem.AddProduct(&core.Product{ID: "p_deleted", Stock: 5, DeletedAt: &deleted})

	e := &enrich.Enricher{Products: mem, Options: mem}
	items, err := e.EnrichIDs(context.Background(), []string{"p_plain", "p_out", "p_opt", "p_opt_out", "p_deleted", "p_missing"})
	if err != nil {
		t.Fatalf("EnrichIDs: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("got %d survivors, want 2: %+v", len(items), items)
	}
	if items[0].ProductID != "p_plain" || items[1].ProductID != "p_opt" {
		t.Errorf("survivors = [%s, %s], want [p_plain, p_opt]", items[0].ProductID, items[1].ProductID)
	}

	opt := items[1]
	if opt.Product == nil {
		t.Fatal("survivor must carry the product payload")
	}
	if len(opt.OptionTypes) != 1 {
		t.Fatalf("got %d option types, want 1", len(opt.OptionTypes))
	}
	// 售罄取值也保留在视图里，前端要展示售罄态
	if got := len(opt.OptionTypes[0].Values); got != 2 {
		t.Errorf("got %d option values, want 2 (sold-out values stay visible)", got)
	}
}

func TestEnrichSkipsDeletedOptionTypes(t *testing.T) {
	mem := store.NewMemory()
	seedProduct(mem, "p1", 5)
	deleted := time.Now()
	mem.AddOptionType(&core.OptionType{ID: "ot1", ProductID: "p1", Name: "Legacy", DeletedAt: &deleted})

	e := &enrich.Enricher{Products: mem, Options: mem}
	items, err := e.EnrichIDs(context.Background(), []string{"p1"})
	if err != nil {
		t.Fatalf("EnrichIDs: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d survivors, want 1", len(items))
	}
	// 删除的维度不进视图；商品退回"无选项"语义，按自身库存判定
	if len(items[0].OptionTypes) != 0 {
		t.Errorf("deleted option types must not appear, got %+v", items[0].OptionTypes)
	}
}

func TestEnrichEmptyInput(t *testing.T) {
	e := &enrich.Enricher{Products: store.NewMemory(), Options: store.NewMemory()}
	items, err := e.Enrich(context.Background(), nil)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("empty input must stay empty, got %+v", items)
	}
}
