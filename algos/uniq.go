package algos

// UniqBy keeps the first element for each key, preserving order.
func UniqBy[T any, K comparable](s []T, key func(T) K) []T {
	seen := map[K]struct{}{}
	uniq := make([]T, 0, len(s))
	for _, v := range s {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, v)
	}
	return uniq
}
