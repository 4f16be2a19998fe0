package algos

import (
	"cmp"
	"slices"
)

// TopologicalSort orders nodes so that every node comes after the nodes it
// depends on. Ties are broken by key order, so the result is deterministic.
// Edges pointing outside of nodes are ignored.
func TopologicalSort[T any, K cmp.Ordered](nodes map[K]T, edges func(T) map[K]struct{}) []T {
	inDegree := map[K]int{}
	for k := range nodes {
		inDegree[k] = 0
	}
	for _, node := range nodes {
		for dep := range edges(node) {
			if _, ok := nodes[dep]; ok {
				inDegree[dep]++
			}
		}
	}

	var queue []K
	for k, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, k)
		}
	}
	slices.Sort(queue)

	var sorted []T
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		sorted = append(sorted, nodes[k])

		var next []K
		for dep := range edges(nodes[k]) {
			if _, ok := nodes[dep]; !ok {
				continue
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				next = append(next, dep)
			}
		}
		slices.Sort(next)
		queue = append(queue, next...)
	}

	// Cycles are rejected beforehand with FindCycle.

	slices.Reverse(sorted)

	return sorted
}
