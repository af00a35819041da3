package cache

// lruNode links one key into a shard's recency ring.
type lruNode[K comparable] struct {
	key        K
	prev, next *lruNode[K]
}

// lruList is a circular recency ring around a sentinel: root.next is the
// most recently used key, root.prev the least. Not safe for concurrent use.
type lruList[K comparable] struct {
	root lruNode[K]
	len  int
}

func (l *lruList[K]) lazyInit() {
	if l.root.next == nil {
		l.root.next = &l.root
		l.root.prev = &l.root
	}
}

func (l *lruList[K]) Len() int { return l.len }

// PushFront records key as most recently used.
func (l *lruList[K]) PushFront(key K) *lruNode[K] {
	l.lazyInit()
	n := &lruNode[K]{key: key}
	l.insertAfterRoot(n)
	l.len++
	return n
}

// MoveToFront marks n as most recently used.
func (l *lruList[K]) MoveToFront(n *lruNode[K]) {
	if n == nil || l.root.next == n {
		return
	}
	detach(n)
	l.insertAfterRoot(n)
}

// Remove drops n from the ring.
func (l *lruList[K]) Remove(n *lruNode[K]) {
	if n == nil || n.next == nil {
		return
	}
	detach(n)
	l.len--
}

// RemoveOldest drops the least recently used key and returns it.
func (l *lruList[K]) RemoveOldest() (K, bool) {
	if l.len == 0 {
		var zero K
		return zero, false
	}
	n := l.root.prev
	detach(n)
	l.len--
	return n.key, true
}

// Clear empties the ring. Nodes handed out earlier must not be reused.
func (l *lruList[K]) Clear() {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
}

func (l *lruList[K]) insertAfterRoot(n *lruNode[K]) {
	n.prev = &l.root
	n.next = l.root.next
	l.root.next.prev = n
	l.root.next = n
}

func detach[K comparable](n *lruNode[K]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}
