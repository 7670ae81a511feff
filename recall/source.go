package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Source 表示一个个性化召回源（协同过滤 / 内容）。
// 你可以把它理解为"可并发 fan-out 的策略单元"：
// 单个源失败或为空只意味着更薄的结果，不中断其他源。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.RecommendedProduct, error)
}

// Lister 表示一个非个性化列表策略（热门 / 趋势 / 新品）。
// exclude 是调用方的排除集（购物车、已选中的候选）；返回的候选已完成
// 补全与有效库存过滤，不带理由与分数，由调用方按场景标注。
type Lister interface {
	Name() string
	List(ctx context.Context, limit int, exclude map[string]bool) ([]*core.RecommendedProduct, error)
}

// RankCache 是热门/趋势榜的可选缓存端口（有序集合语义）。
// 实现见 store.RedisRankCache；为 nil 时策略直接走订单聚合。
type RankCache interface {
	// GetRanking 按分数降序取榜单前 n 个商品 ID；缓存未命中返回空。
	GetRanking(ctx context.Context, key string, n int) ([]string, error)

	// SetRanking 写回榜单，ttlSeconds <= 0 表示不过期。
	SetRanking(ctx context.Context, key string, ranking []core.ProductQuantity, ttlSeconds int) error
}
