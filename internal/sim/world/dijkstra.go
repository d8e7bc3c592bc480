package world

import "container/heap"

// Dijkstra runs single-source shortest-path over the node graph with edge
// weight way.Magnitude(). The search stops as soon as an accepted node is
// popped and returns the node sequence plus the way sequence joining it to
// the start. Ties on distance break on the lower node id so repeated
// searches over equal-length routes return the same route.

type nodeDist struct {
	node *Node
	dist float32
}

type nodeHeap []nodeDist

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].node.id < h[j].node.id
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(nodeDist)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// FindPath searches outward from start for the nearest node satisfying
// accept. It returns the node sequence (start first) and the ways joining
// consecutive nodes, or ok=false when no accepted node is reachable.
func FindPath(start *Node, accept func(*Node) bool) (nodes []*Node, ways []*Way, ok bool) {
	dist := map[*Node]float32{start: 0}
	prev := map[*Node]*Node{}
	done := map[*Node]bool{}

	open := &nodeHeap{{node: start, dist: 0}}
	heap.Init(open)

	for open.Len() > 0 {
		cur := heap.Pop(open).(nodeDist)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true

		if accept(cur.node) {
			return reconstruct(start, cur.node, prev)
		}

		for _, w := range cur.node.ways {
			next := w.other(cur.node)
			if next == nil || done[next] {
				continue
			}
			alt := cur.dist + w.magnitude
			if old, seen := dist[next]; !seen || alt < old {
				dist[next] = alt
				prev[next] = cur.node
				heap.Push(open, nodeDist{node: next, dist: alt})
			}
		}
	}
	return nil, nil, false
}

func reconstruct(start, goal *Node, prev map[*Node]*Node) ([]*Node, []*Way, bool) {
	var rev []*Node
	for n := goal; n != nil; n = prev[n] {
		rev = append(rev, n)
		if n == start {
			break
		}
	}

	nodes := make([]*Node, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		nodes = append(nodes, rev[i])
	}

	ways := make([]*Way, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		w := nodes[i].WayTo(nodes[i+1])
		if w == nil {
			return nil, nil, false
		}
		ways = append(ways, w)
	}
	return nodes, ways, true
}
