// Package groupby 提供"按外键批量分组"的泛型工具。
// 变体维度按商品分组、变体取值按维度分组、订单行与评分按商品分组，
// 全部复用同一实现，避免四份近似代码各自漂移。
package groupby

// ByKey 将 items 按 key 分组为 map[K][]T，保持每组内的原始顺序。
func ByKey[K comparable, T any](items []T, key func(T) K) map[K][]T {
	if len(items) == 0 {
		return nil
	}
	out := make(map[K][]T, len(items))
	for _, it := range items {
		k := key(it)
		out[k] = append(out[k], it)
	}
	return out
}

// Keys 提取 items 的 key 列表，按首次出现顺序去重。
func Keys[K comparable, T any](items []T, key func(T) K) []K {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[K]bool, len(items))
	out := make([]K, 0, len(items))
	for _, it := range items {
		k := key(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Set 将切片转为集合。
func Set[T comparable](items []T) map[T]bool {
	if len(items) == 0 {
		return nil
	}
	out := make(map[T]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}
