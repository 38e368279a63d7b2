package graph

import "container/heap"

// readyQueue is a min-heap of unit ids ordered by Graph.less.
type readyQueue struct {
	g   *Graph
	ids []string
}

func newReadyQueue(g *Graph) *readyQueue {
	return &readyQueue{g: g}
}

func (q *readyQueue) Len() int           { return len(q.ids) }
func (q *readyQueue) Less(i, j int) bool { return q.g.less(q.ids[i], q.ids[j]) }
func (q *readyQueue) Swap(i, j int)      { q.ids[i], q.ids[j] = q.ids[j], q.ids[i] }
func (q *readyQueue) Push(x any)         { q.ids = append(q.ids, x.(string)) }
func (q *readyQueue) Pop() any {
	n := len(q.ids)
	id := q.ids[n-1]
	q.ids = q.ids[:n-1]
	return id
}

func (q *readyQueue) push(id string) { heap.Push(q, id) }
func (q *readyQueue) pop() string    { return heap.Pop(q).(string) }

// inDegrees returns the number of resolved dependencies of each unit.
func inDegrees(g *Graph) map[string]int {
	deg := make(map[string]int, len(g.ids))
	for _, id := range g.ids {
		deg[id] = len(g.deps[id])
	}
	return deg
}
