package graphtx

import "sync"

// Node is the smallest unit of shared mutable state: a named signed counter
// guarded by its own reader/writer lock. Nodes are created lazily with value
// 0 the first time an id is referenced, are owned by the TransactionManager
// for its whole lifetime, and are never deleted. A node's value only changes
// inside a Commit that holds its write lock.
type Node struct {
	mu    sync.RWMutex
	id    string
	value int64
}

// ID returns the node's registry key.
func (n *Node) ID() string {
	return n.id
}

// Value returns the last committed value, read under the node's shared lock.
func (n *Node) Value() int64 {
	n.mu.RLock()
	v := n.value
	n.mu.RUnlock()
	return v
}
