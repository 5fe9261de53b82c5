// Package dedupe tracks already-ingested conversation ids so a retried
// submission is acknowledged instead of evaluated twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Deduper records seen conversation IDs to ensure at-most-once evaluation.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing it to be retried.
	// Used when a conversation was marked seen but could not be enqueued
	// (queue backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// node is one entry in the eviction list.
type node struct {
	id   string
	next *node
}

func (n *node) reset() {
	n.id = ""
	n.next = nil
}

// inMemoryDeduper implements Deduper with a map plus a linked list for
// oldest-first eviction in bounded mode. With maxSize <= 0 it runs
// unbounded.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*node)
	if d.maxSize > 0 {
		d.nodePool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictTail()
		}

		n := d.nodePool.Get().(*node)
		n.id = id
		n.next = d.head
		d.head = n
		d.seen[id] = n
	} else {
		d.seen[id] = nil
	}
	d.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen list, allowing it to be retried.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)

	if d.maxSize > 0 && n != nil {
		if d.head == n {
			d.head = n.next
		} else {
			current := d.head
			for current != nil && current.next != n {
				current = current.next
			}
			if current != nil {
				current.next = n.next
			}
		}
		n.reset()
		d.nodePool.Put(n)
	}
	d.size.Add(-1)
}

// evictTail drops the oldest recorded id. Caller holds d.mu.
func (d *inMemoryDeduper) evictTail() {
	if d.head == nil {
		return
	}

	if d.head.next == nil {
		delete(d.seen, d.head.id)
		d.head.reset()
		d.nodePool.Put(d.head)
		d.head = nil
		d.size.Add(-1)
		return
	}

	prev := d.head
	current := d.head.next
	for current.next != nil {
		prev = current
		current = current.next
	}
	prev.next = nil
	delete(d.seen, current.id)
	current.reset()
	d.nodePool.Put(current)
	d.size.Add(-1)
}

// Size returns the current number of recorded ids.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
