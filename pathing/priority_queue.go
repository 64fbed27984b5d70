package pathing

import (
	"container/heap"
)

// queueHeap implements heap.Interface for PriorityQueue
type queueHeap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (h *queueHeap[T]) Len() int { return len(h.items) }

func (h *queueHeap[T]) Less(i, j int) bool {
	return h.less(h.items[i], h.items[j])
}

func (h *queueHeap[T]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *queueHeap[T]) Push(x any) {
	h.items = append(h.items, x.(T))
}

func (h *queueHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	h.items = old[0 : n-1]
	return item
}

// PriorityQueue is a binary min-heap ordered by less.
//
// Items whose ordering key changes while queued break the heap invariant
// silently until Update is called.
type PriorityQueue[T any] struct {
	h queueHeap[T]
}

// NewPriorityQueue creates an empty queue that pops the item for which less
// holds against every other item first.
func NewPriorityQueue[T any](less func(a, b T) bool) *PriorityQueue[T] {
	return &PriorityQueue[T]{h: queueHeap[T]{less: less}}
}

// Push inserts item.
func (pq *PriorityQueue[T]) Push(item T) {
	heap.Push(&pq.h, item)
}

// Pop removes and returns the highest priority item.
func (pq *PriorityQueue[T]) Pop() (T, bool) {
	if len(pq.h.items) == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(&pq.h).(T), true
}

// Peek returns the highest priority item without removing it.
func (pq *PriorityQueue[T]) Peek() (T, bool) {
	if len(pq.h.items) == 0 {
		var zero T
		return zero, false
	}
	return pq.h.items[0], true
}

// Update re-heapifies after queued items were mutated in place.
func (pq *PriorityQueue[T]) Update() {
	heap.Init(&pq.h)
}

// Empty reports whether the queue holds no items.
func (pq *PriorityQueue[T]) Empty() bool { return len(pq.h.items) == 0 }

// Len returns the number of queued items.
func (pq *PriorityQueue[T]) Len() int { return len(pq.h.items) }
