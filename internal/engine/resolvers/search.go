package resolvers

import (
	"sort"
)

// Limits for FindKey.
const (
	MaxSearchDepth = 64
	MaxSearchNodes = 200_000
)

type searchItem struct {
	node  any
	depth int
}

// FindKey walks an untyped JSON tree depth-first with an explicit worklist
// and returns the first value stored under key for which accept returns
// true (nil accept takes any value). Object keys are visited in sorted
// order so results are deterministic. The walk stops at MaxSearchDepth
// levels or after MaxSearchNodes nodes.
func FindKey(root any, key string, accept func(any) bool) (any, bool) {
	if root == nil {
		return nil, false
	}
	stack := []searchItem{{node: root}}
	visited := 0
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited++
		if visited > MaxSearchNodes {
			return nil, false
		}

		switch node := it.node.(type) {
		case map[string]any:
			if v, ok := node[key]; ok && (accept == nil || accept(v)) {
				return v, true
			}
			if it.depth >= MaxSearchDepth {
				continue
			}
			keys := make([]string, 0, len(node))
			for k, v := range node {
				if isContainer(v) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for i := len(keys) - 1; i >= 0; i-- {
				stack = append(stack, searchItem{node: node[keys[i]], depth: it.depth + 1})
			}
		case []any:
			if it.depth >= MaxSearchDepth {
				continue
			}
			for i := len(node) - 1; i >= 0; i-- {
				if isContainer(node[i]) {
					stack = append(stack, searchItem{node: node[i], depth: it.depth + 1})
				}
			}
		}
	}
	return nil, false
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}
