package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/recall"
)

// RedisRankCache 是 Redis 有序集合实现的榜单缓存。
// 热门/趋势榜的订单聚合较重，聚合结果以 ZSET 写回并设置 TTL，
// 窗口内的请求直接 ZREVRANGE 命中。
type RedisRankCache struct {
	client *redis.Client
}

func NewRedisRankCache(addr string, db int) (*RedisRankCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisRankCache{client: client}, nil
}

// NewRedisRankCacheWithClient 复用调用方已有的客户端。
func NewRedisRankCacheWithClient(client *redis.Client) *RedisRankCache {
	return &RedisRankCache{client: client}
}

func (r *RedisRankCache) GetRanking(ctx context.Context, key string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	return r.client.ZRevRange(ctx, key, 0, int64(n-1)).Result()
}

func (r *RedisRankCache) SetRanking(ctx context.Context, key string, ranking []core.ProductQuantity, ttlSeconds int) error {
	if len(ranking) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(ranking))
	for _, row := range ranking {
		members = append(members, redis.Z{
			Score:  float64(row.TotalQuantity),
			Member: row.ProductID,
		})
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.ZAdd(ctx, key, members...)
	if ttlSeconds > 0 {
		pipe.Expire(ctx, key, time.Duration(ttlSeconds)*time.Second)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisRankCache) Close() error {
	return r.client.Close()
}

var _ recall.RankCache = (*RedisRankCache)(nil)
