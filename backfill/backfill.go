// Package backfill 在个性化候选不足时按配额补齐列表。
package backfill

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/recall"
)

// Backfill 是兜底 Stage：
//   - needed = limit - 当前候选数，不足才触发
//   - 并发向热门 / 趋势 / 新品各取 needed*2（都排除购物车与已选中 ID）
//   - 配额分配：热门先占 ceil(needed/3) 个，趋势补剩余，新品再补剩余，
//     凑满 needed 或来源耗尽为止
//   - 兜底候选只追加在个性化候选之后，个性化层从不被兜底分数重排
//
// 单个来源失败只意味着该来源为空，不中断其他来源。
type Backfill struct {
	Popular     recall.Lister
	Trending    recall.Lister
	NewArrivals recall.Lister

	// FetchMultiplier 是每个来源的超量拉取倍数，<= 0 时取默认值 2
	FetchMultiplier int

	// 三个来源的象征性分数，零值取默认 3 / 2 / 1
	PopularScore    float64
	TrendingScore   float64
	NewArrivalScore float64
}

func (b *Backfill) Name() string        { return "backfill.quota" }
func (b *Backfill) Kind() pipeline.Kind { return pipeline.KindBackfill }

func (b *Backfill) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.RecommendedProduct,
) ([]*core.RecommendedProduct, error) {
	if rctx == nil || rctx.Limit <= 0 {
		return items, nil
	}
	needed := rctx.Limit - len(items)
	if needed <= 0 {
		return items, nil
	}

	// 排除集：购物车 + 已选中的个性化候选 + 请求级排除
	exclude := make(map[string]bool, len(items))
	for id := range rctx.CartProductIDs() {
		exclude[id] = true
	}
	for id := range rctx.Exclude {
		exclude[id] = true
	}
	for _, rp := range items {
		exclude[rp.ProductID] = true
	}

	multiplier := b.FetchMultiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	fetch := needed * multiplier

	type sourceResult struct {
		items []*core.RecommendedProduct
	}
	var (
		mu      sync.Mutex
		results = make(map[string]sourceResult, 3)
	)

	listers := []struct {
		name   string
		lister recall.Lister
	}{
		{name: "popular", lister: b.Popular},
		{name: "trending", lister: b.Trending},
		{name: "new_arrivals", lister: b.NewArrivals},
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, src := range listers {
		src := src
		if src.lister == nil {
			continue
		}
		eg.Go(func() error {
			got, err := src.lister.List(egCtx, fetch, exclude)
			if err != nil {
				// 来源失败时按空结果处理，不中断其他来源
				return nil
			}
			mu.Lock()
			results[src.name] = sourceResult{items: got}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return items, nil
	}

	popularScore := b.PopularScore
	if popularScore == 0 {
		popularScore = 3
	}
	trendingScore := b.TrendingScore
	if trendingScore == 0 {
		trendingScore = 2
	}
	newArrivalScore := b.NewArrivalScore
	if newArrivalScore == 0 {
		newArrivalScore = 1
	}

	// 热门优先占 ceil(needed/3) 个配额，剩余依次由趋势、新品补齐
	perStrategy := (needed + 2) / 3
	out := items

	taken := 0
	taken += appendBackfill(&out, results["popular"].items, exclude, min(perStrategy, needed), core.ReasonPopular, popularScore)
	taken += appendBackfill(&out, results["trending"].items, exclude, needed-taken, core.ReasonTrending, trendingScore)
	appendBackfill(&out, results["new_arrivals"].items, exclude, needed-taken, core.ReasonNewArrival, newArrivalScore)

	return out, nil
}

// appendBackfill 从来源结果中取最多 quota 个未重复候选追加到 out，
// 标注该来源的理由与象征性分数，返回实际取到的个数。
func appendBackfill(
	out *[]*core.RecommendedProduct,
	source []*core.RecommendedProduct,
	exclude map[string]bool,
	quota int,
	reason string,
	score float64,
) int {
	if quota <= 0 {
		return 0
	}
	taken := 0
	for _, rp := range source {
		if rp == nil || exclude[rp.ProductID] {
			continue
		}
		exclude[rp.ProductID] = true
		rp.Reason = reason
		rp.Score = score
		*out = append(*out, rp)
		taken++
		if taken >= quota {
			break
		}
	}
	return taken
}

var _ pipeline.Stage = (*Backfill)(nil)
