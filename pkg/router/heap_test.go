package router

import (
	"container/heap"
	"testing"
)

func TestNodeHeapPopOrder(t *testing.T) {
	h := &nodeHeap{}
	heap.Init(h)

	for _, f := range []float64{5, 1, 3, 2, 4} {
		heap.Push(h, &searchNode{f: f})
	}

	prev := -1.0
	for h.Len() > 0 {
		n := heap.Pop(h).(*searchNode)
		if n.f < prev {
			t.Errorf("heap popped out of order: %v after %v", n.f, prev)
		}
		prev = n.f
	}
}

func TestStaleDetection(t *testing.T) {
	visited := map[string]visitedEntry{
		"10.00,20.00": {g: 5.0},
	}

	fresh := &searchNode{key: "10.00,20.00", g: 5.0}
	superseded := &searchNode{key: "10.00,20.00", g: 7.5}
	unknown := &searchNode{key: "0.00,0.00", g: 1.0}

	if stale(fresh, visited) {
		t.Error("node matching the table's best cost must not be stale")
	}
	if !stale(superseded, visited) {
		t.Error("node costlier than the table's best must be stale")
	}
	if stale(unknown, visited) {
		t.Error("node for an untracked location must not be stale")
	}
}
