package algos

import (
	"cmp"
	"slices"
)

// FindCycle returns the keys along the first dependency cycle found, or nil.
func FindCycle[T any, K cmp.Ordered](nodes map[K]T, edges func(T) map[K]struct{}) (cycle []K) {
	visited := map[K]bool{}
	recStack := map[K]bool{}
	var path []K

	var dfs func(K) bool
	dfs = func(k K) bool {
		if recStack[k] {
			start := slices.Index(path, k)
			cycle = append(slices.Clone(path[start:]), k)
			return true
		}
		if visited[k] {
			return false
		}

		visited[k] = true
		recStack[k] = true
		path = append(path, k)

		deps := sortedKeys(edges(nodes[k]))
		for _, dep := range deps {
			if _, ok := nodes[dep]; !ok {
				continue
			}
			if dfs(dep) {
				return true
			}
		}

		path = path[:len(path)-1]
		recStack[k] = false
		return false
	}

	keys := make([]K, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if dfs(k) {
			return cycle
		}
	}

	return nil
}

func sortedKeys[K cmp.Ordered](m map[K]struct{}) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
