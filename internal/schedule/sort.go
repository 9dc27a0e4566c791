package schedule

import "slices"

// SortByFrom returns a copy of items stably ordered by window start.
// Items without a window sort as 00:00.
func SortByFrom[T any](items []T, window func(T) *Window) []T {
	return sortBy(items, func(item T) CivilTime {
		if w := window(item); w != nil {
			return w.From
		}
		return CivilTime{}
	})
}

// SortByTo returns a copy of items stably ordered by window end.
// Items without a window sort as 00:00.
func SortByTo[T any](items []T, window func(T) *Window) []T {
	return sortBy(items, func(item T) CivilTime {
		if w := window(item); w != nil {
			return w.To
		}
		return CivilTime{}
	})
}

func sortBy[T any](items []T, key func(T) CivilTime) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return key(a).Compare(key(b))
	})
	return sorted
}
