// Package combine 把协同过滤与内容召回的候选合并为一份排序列表。
package combine

import (
	"sort"

	"github.com/rushteam/shoprec/core"
)

// Combiner 按商品 ID 合并两路候选：
//   - 协同分数先乘 CollaborativeBoost（协同信号更受信任）
//   - 两路同时命中的商品分数相加，理由覆盖为固定的 "Highly recommended"
//   - 合并结果按分数降序稳定排序（同分保持发现顺序：先协同、后内容）
type Combiner struct {
	// CollaborativeBoost 零值取默认 1.5
	CollaborativeBoost float64
}

// Merge 合并并排序。输入切片不会被修改，输出是新建的候选。
func (c *Combiner) Merge(collaborative, contentBased []*core.RecommendedProduct) []*core.RecommendedProduct {
	boost := c.CollaborativeBoost
	if boost == 0 {
		boost = 1.5
	}

	merged := make(map[string]*core.RecommendedProduct, len(collaborative)+len(contentBased))
	order := make([]string, 0, len(collaborative)+len(contentBased))

	for _, rp := range collaborative {
		if rp == nil {
			continue
		}
		merged[rp.ProductID] = core.NewRecommendedProduct(rp.ProductID, rp.Score*boost, rp.Reason)
		order = append(order, rp.ProductID)
	}

	for _, rp := range contentBased {
		if rp == nil {
			continue
		}
		if exist, ok := merged[rp.ProductID]; ok {
			exist.Score += rp.Score
			exist.Reason = core.ReasonHighlyRecommended
			continue
		}
		merged[rp.ProductID] = core.NewRecommendedProduct(rp.ProductID, rp.Score, rp.Reason)
		order = append(order, rp.ProductID)
	}

	out := make([]*core.RecommendedProduct, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
