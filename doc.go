// Package shoprec 是一个混合商品推荐引擎（Hybrid Product Recommendation Engine）。
//
// 设计要点：
// - 双路召回：协同过滤（购物车共购 / 口味相似）+ 基于内容（类目与价格亲和）
// - 合并加权：协同信号 ×1.5 加权合并，双命中覆盖为固定理由
// - 补全过滤：批量装载变体并按"有效库存"过滤，购物车内商品一律剔除
// - 分层兜底：个性化不足时按热门 / 趋势 / 新品配额补齐，个性化层从不被重排
// - 降级不上抛：任一策略失败只产出更薄的结果，绝不让推荐拖垮页面
package shoprec

import "github.com/rushteam/shoprec/engine"

// 轻量 facade：便于用户直接 import "shoprec" 使用引擎入口。
type Engine = engine.Engine
