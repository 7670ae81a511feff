package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Node 是过滤 Stage，可以组合多个过滤器。
// 任何一个过滤器返回 true，该候选就会被移除；
// 过滤器自身出错时跳过该过滤器，不中断流程、不误杀候选。
type Node struct {
	Filters []Filter
}

func (n *Node) Name() string        { return "filter.node" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.RecommendedProduct,
) ([]*core.RecommendedProduct, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.RecommendedProduct, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		dropped := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				continue
			}
			if ok {
				dropped = true
				break
			}
		}
		if dropped {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

var _ pipeline.Stage = (*Node)(nil)
