package backfill

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/shoprec/core"
)

// fakeLister 按固定顺序返回候选，遵守排除集。
type fakeLister struct {
	name string
	ids  []string
	err  error
}

func (f *fakeLister) Name() string { return f.name }

func (f *fakeLister) List(_ context.Context, limit int, exclude map[string]bool) ([]*core.RecommendedProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*core.RecommendedProduct, 0, limit)
	for _, id := range f.ids {
		if exclude[id] {
			continue
		}
		out = append(out, &core.RecommendedProduct{ProductID: id})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func TestBackfillQuota(t *testing.T) {
	b := &Backfill{
		Popular:     &fakeLister{name: "popular", ids: []string{"pop1", "pop2", "pop3", "pop4"}},
		Trending:    &fakeLister{name: "trending", ids: []string{"tr1", "tr2", "tr3", "tr4"}},
		NewArrivals: &fakeLister{name: "new", ids: []string{"na1", "na2", "na3", "na4"}},
	}
	rctx := &core.RecommendContext{CustomerID: "c1", Limit: 9}

	out, err := b.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 9 {
		t.Fatalf("got %d items, want 9", len(out))
	}

	// 配额 ceil(9/3) = 3：热门 3、趋势 3、新品 3
	want := []struct {
		id     string
		reason string
		score  float64
	}{
		{"pop1", core.ReasonPopular, 3}, {"pop2", core.ReasonPopular, 3}, {"pop3", core.ReasonPopular, 3},
		{"tr1", core.ReasonTrending, 2}, {"tr2", core.ReasonTrending, 2}, {"tr3", core.ReasonTrending, 2},
		{"na1", core.ReasonNewArrival, 1}, {"na2", core.ReasonNewArrival, 1}, {"na3", core.ReasonNewArrival, 1},
	}
	for i, w := range want {
		if out[i].ProductID != w.id || out[i].Reason != w.reason || out[i].Score != w.score {
			t.Errorf("out[%d] = {%s %q %v}, want {%s %q %v}",
				i, out[i].ProductID, out[i].Reason, out[i].Score, w.id, w.reason, w.score)
		}
	}
}

func TestBackfillSkipsWhenFull(t *testing.T) {
	b := &Backfill{
		Popular: &fakeLister{name: "popular", ids: []string{"pop1"}},
	}
	items := []*core.RecommendedProduct{
		{ProductID: "p1", Score: 9, Reason: core.ReasonLiked},
		{ProductID: "p2", Score: 8, Reason: core.ReasonLiked},
	}
	rctx := &core.RecommendContext{CustomerID: "c1", Limit: 2}

	out, err := b.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("full list must stay untouched, got %d items", len(out))
	}
	// 个性化候选从不被兜底改写
	if out[0].Reason != core.ReasonLiked || out[0].Score != 9 {
		t.Errorf("personalized item rewritten: %+v", out[0])
	}
}

func TestBackfillDedupesAgainstItems(t *testing.T) {
	b := &Backfill{
		Popular:     &fakeLister{name: "popular", ids: []string{"p1", "pop1"}},
		Trending:    &fakeLister{name: "trending", ids: []string{"pop1", "tr1"}},
		NewArrivals: &fakeLister{name: "new", ids: []string{"tr1", "na1"}},
	}
	items := []*core.RecommendedProduct{{ProductID: "p1", Score: 9, Reason: core.ReasonLiked}}
	rctx := &core.RecommendContext{CustomerID: "c1", Limit: 4}

	out, err := b.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	seen := make(map[string]int, len(out))
	for _, rp := range out {
		seen[rp.ProductID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("%s appears %d times", id, n)
		}
	}
	if len(out) != 4 {
		t.Errorf("got %d items, want 4: %+v", len(out), out)
	}
}

func TestBackfillSourceFailure(t *testing.T) {
	b := &Backfill{
		Popular:     &fakeLister{name: "popular", err: errors.New("store down")},
		Trending:    &fakeLister{name: "trending", ids: []string{"tr1", "tr2", "tr3"}},
		NewArrivals: &fakeLister{name: "new", ids: []string{"na1", "na2", "na3"}},
	}
	rctx := &core.RecommendContext{CustomerID: "c1", Limit: 3}

	out, err := b.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	// 热门失败按空处理，趋势与新品补满
	if len(out) != 3 {
		t.Fatalf("got %d items, want 3: %+v", len(out), out)
	}
	for _, rp := range out {
		if rp.Reason == core.ReasonPopular {
			t.Errorf("failed source must not contribute: %+v", rp)
		}
	}
}

func TestBackfillExcludesCart(t *testing.T) {
	b := &Backfill{
		Popular: &fakeLister{name: "popular", ids: []string{"p_cart", "pop1"}},
	}
	rctx := &core.RecommendContext{
		CustomerID: "c1",
		Limit:      1,
		Cart: &core.Cart{CustomerID: "c1", Items: []core.CartItem{
			{ProductID: "p_cart", Quantity: 1},
		}},
	}

	out, err := b.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 || out[0].ProductID != "pop1" {
		t.Fatalf("cart items must be excluded, got %+v", out)
	}
}
