package graphtx

import (
	"hash/fnv"
	"sort"
	"sync"
)

const shardCount = 64

type registryShard struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

// registry is the manager-owned id -> *Node map, sharded so structural lock
// traffic (inserting a new id) stays off the commit path's hot nodes. Shard
// locks guard map structure only, never node values; each Node carries its
// own lock for that.
type registry struct {
	shards [shardCount]*registryShard
}

func newRegistry() *registry {
	r := &registry{}
	for i := 0; i < shardCount; i++ {
		r.shards[i] = &registryShard{nodes: make(map[string]*Node)}
	}
	return r
}

func (r *registry) getShard(id string) *registryShard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return r.shards[h.Sum32()%shardCount]
}

// getOrCreate returns the Node registered under id, creating it with value 0
// when absent. Lookup of an existing id only takes the shard's read lock.
// This never fails.
func (r *registry) getOrCreate(id string) *Node {
	shard := r.getShard(id)
	shard.mu.RLock()
	n, ok := shard.nodes[id]
	shard.mu.RUnlock()
	if ok {
		return n
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if n, ok := shard.nodes[id]; ok {
		// Another transaction won the create race.
		return n
	}
	n = &Node{id: id}
	shard.nodes[id] = n
	return n
}

func (r *registry) count() int {
	c := 0
	for _, shard := range r.shards {
		shard.mu.RLock()
		c += len(shard.nodes)
		shard.mu.RUnlock()
	}
	return c
}

// ids returns every registered id in byte-wise sorted order.
func (r *registry) ids() []string {
	keys := make([]string, 0, 64)
	for _, shard := range r.shards {
		shard.mu.RLock()
		for id := range shard.nodes {
			keys = append(keys, id)
		}
		shard.mu.RUnlock()
	}
	sort.Strings(keys)
	return keys
}
