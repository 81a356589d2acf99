package thread

import (
	"cmp"
	"slices"
)

// Select drops nil, hidden and empty-bodied items, orders the rest stably
// with compare and truncates to limit. A nil compare keeps input order and a
// limit <= 0 keeps everything. The input slice is not modified.
func Select(items []*Item, limit int, compare func(a, b *Item) int) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if it == nil || it.Hidden() || it.Text() == "" {
			continue
		}
		out = append(out, it)
	}
	if compare != nil {
		slices.SortStableFunc(out, compare)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ByScoreDesc orders higher scores first.
func ByScoreDesc(a, b *Item) int {
	return cmp.Compare(b.Score, a.Score)
}

// NativeOrder keeps the order in which the store listed the items.
func NativeOrder(a, b *Item) int {
	return 0
}
