package orchestrator

import (
	"container/heap"
	"math/rand"
	"sync"
	"time"
)

// workQueue is a min-heap ready-queue of dispatch targets, adapted from
// the process manager's work queue: every candidate is enqueued with a
// small random jitter. drain sleeps through those delays and then returns
// the whole list, so the jitter randomizes dispatch order but does not
// space out the worker launches that follow.
type workQueue struct {
	mu    sync.Mutex
	items *workItemHeap
	rand  *rand.Rand
}

type workItem struct {
	path    string
	readyAt time.Time
	index   int
}

type workItemHeap []*workItem

func (h workItemHeap) Len() int           { return len(h) }
func (h workItemHeap) Less(i, j int) bool { return h[i].readyAt.Before(h[j].readyAt) }
func (h workItemHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *workItemHeap) Push(x interface{}) {
	item := x.(*workItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *workItemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

func newWorkQueue(paths []string, jitter time.Duration) *workQueue {
	items := &workItemHeap{}
	heap.Init(items)
	q := &workQueue{items: items, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
	now := time.Now()
	for _, p := range paths {
		delay := time.Duration(0)
		if jitter > 0 {
			delay = time.Duration(q.rand.Int63n(int64(jitter)))
		}
		heap.Push(q.items, &workItem{path: p, readyAt: now.Add(delay)})
	}
	return q
}

// drain returns every item in readiness order, blocking on its own jitter
// delay between items. It is not reentrant across goroutines; callers
// should drain from a single dispatch loop.
func (q *workQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, 0, q.items.Len())
	for q.items.Len() > 0 {
		item := heap.Pop(q.items).(*workItem)
		if wait := time.Until(item.readyAt); wait > 0 {
			time.Sleep(wait)
		}
		out = append(out, item.path)
	}
	return out
}
