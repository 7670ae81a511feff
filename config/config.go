// Package config 定义引擎的可调参数（支持 YAML）。
//
// 打分公式里的常量（共购频率权重 ×10、内容基分 5 / +3 / +2、协同加权 ×1.5 等）
// 是经验值，没有推导依据；这里作为可调参数暴露，默认值保持线上行为不变。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scoring 是各策略的打分权重。
type Scoring struct {
	// CollaborativeBoost 是合并时协同过滤分数的加权倍数（协同信号更受信任）。
	CollaborativeBoost float64 `yaml:"collaborative_boost"`

	// CoPurchaseFrequencyWeight / CoPurchaseQuantityWeight 对应共购打分：
	// score = (orderFreq / totalOrders) * FrequencyWeight + ln(qty+1) * QuantityWeight
	CoPurchaseFrequencyWeight float64 `yaml:"copurchase_frequency_weight"`
	CoPurchaseQuantityWeight  float64 `yaml:"copurchase_quantity_weight"`

	// 内容召回：基分 + 类目命中加分 + 价格贴近度加分上限
	ContentBase          float64 `yaml:"content_base"`
	ContentLikedBonus    float64 `yaml:"content_liked_bonus"`
	ContentWishlistBonus float64 `yaml:"content_wishlist_bonus"`
	ContentPriceBonusMax float64 `yaml:"content_price_bonus_max"`

	// PriceBandWiden 是内容召回价格带在偏好区间两端各放宽的比例。
	PriceBandWiden float64 `yaml:"price_band_widen"`

	// SimilarPriceMargin 是相似商品的价格容差比例（锚点价 ×0.3）。
	SimilarPriceMargin float64 `yaml:"similar_price_margin"`

	// LikedRatingThreshold 是"喜欢"的评分下限（>= 即喜欢）。
	LikedRatingThreshold int `yaml:"liked_rating_threshold"`

	// PopularMinAvgRating：热门榜剔除平均分 <= 该值的商品（无评分的保留）。
	PopularMinAvgRating float64 `yaml:"popular_min_avg_rating"`

	// 兜底层三个来源的象征性分数（只用于展示，不参与重排）。
	BackfillPopularScore    float64 `yaml:"backfill_popular_score"`
	BackfillTrendingScore   float64 `yaml:"backfill_trending_score"`
	BackfillNewArrivalScore float64 `yaml:"backfill_new_arrival_score"`
}

// Limits 是候选规模与时间窗口。
type Limits struct {
	// MaxCandidates 是每个召回策略的候选上限。
	MaxCandidates int `yaml:"max_candidates"`

	// SimilarTasteTopUsers / SimilarTasteMinSupport：口味相似召回
	// 取最相似的 N 个顾客，候选至少需要 M 个不同顾客支持。
	SimilarTasteTopUsers   int `yaml:"similar_taste_top_users"`
	SimilarTasteMinSupport int `yaml:"similar_taste_min_support"`

	// TrendingWindowDays 是趋势榜的统计窗口（天）。
	TrendingWindowDays int `yaml:"trending_window_days"`

	// 各来源的超量拉取倍数：先多取再过滤，避免过滤后不足。
	PopularFetchMultiplier     int `yaml:"popular_fetch_multiplier"`
	NewArrivalsFetchMultiplier int `yaml:"new_arrivals_fetch_multiplier"`
	BackfillFetchMultiplier    int `yaml:"backfill_fetch_multiplier"`

	// RankCacheTTLSeconds 是热门/趋势榜缓存的过期时间（秒）。
	RankCacheTTLSeconds int `yaml:"rank_cache_ttl_seconds"`
}

// Config 是引擎配置。
type Config struct {
	Scoring Scoring `yaml:"scoring"`

	Limits Limits `yaml:"limits"`

	// Rules 是候选排除规则（CEL 表达式，针对已补全的商品求值）。
	// 例如："product.price > 10000.0"。命中即剔除；求值失败不剔除。
	Rules []string `yaml:"rules"`
}

// Default 返回与线上行为一致的默认配置。
func Default() *Config {
	return &Config{
		Scoring: Scoring{
			CollaborativeBoost:        1.5,
			CoPurchaseFrequencyWeight: 10,
			CoPurchaseQuantityWeight:  0.5,
			ContentBase:               5,
			ContentLikedBonus:         3,
			ContentWishlistBonus:      2,
			ContentPriceBonusMax:      2,
			PriceBandWiden:            0.3,
			SimilarPriceMargin:        0.3,
			LikedRatingThreshold:      4,
			PopularMinAvgRating:       4,
			BackfillPopularScore:      3,
			BackfillTrendingScore:     2,
			BackfillNewArrivalScore:   1,
		},
		Limits: Limits{
			MaxCandidates:              20,
			SimilarTasteTopUsers:       10,
			SimilarTasteMinSupport:     2,
			TrendingWindowDays:         30,
			PopularFetchMultiplier:     3,
			NewArrivalsFetchMultiplier: 2,
			BackfillFetchMultiplier:    2,
			RankCacheTTLSeconds:        300,
		},
	}
}

// LoadFromYAML 从 YAML 文件加载配置，未出现的字段保持默认值。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}
