package algos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	name string
	deps map[string]struct{}
}

func graph(edges map[string][]string) map[string]node {
	nodes := map[string]node{}
	for name, deps := range edges {
		n := node{name: name, deps: map[string]struct{}{}}
		for _, d := range deps {
			n.deps[d] = struct{}{}
		}
		nodes[name] = n
	}
	return nodes
}

func depsOf(n node) map[string]struct{} { return n.deps }

func TestTopologicalSortPutsDependenciesFirst(t *testing.T) {
	nodes := graph(map[string][]string{
		"RuntimeException": {"Exception"},
		"Exception":        {"Throwable"},
		"Throwable":        {"Any"},
		"Any":              nil,
	})

	sorted := TopologicalSort(nodes, depsOf)

	var names []string
	for _, n := range sorted {
		names = append(names, n.name)
	}
	assert.Equal(t, []string{"Any", "Throwable", "Exception", "RuntimeException"}, names)
}

func TestTopologicalSortIgnoresUnknownEdges(t *testing.T) {
	nodes := graph(map[string][]string{
		"A": {"kotlin.Any"},
	})

	sorted := TopologicalSort(nodes, depsOf)
	require.Len(t, sorted, 1)
	assert.Equal(t, "A", sorted[0].name)
}

func TestFindCycle(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		nodes := graph(map[string][]string{"A": {"B"}, "B": nil})
		assert.Nil(t, FindCycle(nodes, depsOf))
	})

	t.Run("cyclic", func(t *testing.T) {
		nodes := graph(map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A"}})
		assert.Equal(t, []string{"A", "B", "C", "A"}, FindCycle(nodes, depsOf))
	})

	t.Run("self", func(t *testing.T) {
		nodes := graph(map[string][]string{"A": {"A"}})
		assert.Equal(t, []string{"A", "A"}, FindCycle(nodes, depsOf))
	})
}

func TestUniqBy(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, UniqBy([]int{3, 1, 3, 2, 1}, func(v int) int { return v }))

	words := []string{"kotlin", "java", "kinfer", "js"}
	assert.Equal(t, []string{"kotlin", "java"}, UniqBy(words, func(w string) byte { return w[0] }))
}
