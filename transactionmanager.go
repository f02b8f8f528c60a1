package graphtx

import (
	"fmt"
	"sync"

	"github.com/graphtx/graphtx/constraint"
)

// TransactionManager owns the node registry and is the Transaction factory.
// There should be exactly one manager per logical graph instance, shared
// between all threads.
type TransactionManager struct {
	registry *registry

	// cmu guards constraints; validation holds it shared so registration can
	// happen while commits are in flight.
	cmu         sync.RWMutex
	constraints []*constraint.Evaluator
}

// NewTransactionManager returns a manager with an empty node registry and the
// built-in non-negative invariant.
func NewTransactionManager() *TransactionManager {
	return &TransactionManager{
		registry: newRegistry(),
	}
}

// Begin allocates a Transaction bound to this manager with an empty
// write-set. It takes no locks and always succeeds.
func (m *TransactionManager) Begin() Transaction {
	return &transaction{
		id:       NewUUID(),
		mgr:      m,
		writeSet: make(map[string]int64),
	}
}

// AddConstraint registers a compiled CEL invariant enforced on every commit,
// after the built-in non-negative check. Constraints apply to all nodes; an
// expression can condition on the node id to scope itself.
func (m *TransactionManager) AddConstraint(c *constraint.Evaluator) {
	m.cmu.Lock()
	m.constraints = append(m.constraints, c)
	m.cmu.Unlock()
}

// validate checks a node's prospective committed value against every
// invariant. Called by Commit while holding the node's write lock.
func (m *TransactionManager) validate(id string, next int64) error {
	if next < 0 {
		return Error[string]{
			Code:     ErrInvariantViolation,
			Err:      fmt.Errorf("node %s: value %d would go negative", id, next),
			UserData: id,
		}
	}
	m.cmu.RLock()
	constraints := m.constraints
	m.cmu.RUnlock()
	for _, c := range constraints {
		ok, err := c.Evaluate(id, next)
		if err != nil {
			return Error[string]{
				Code:     ErrInvariantViolation,
				Err:      fmt.Errorf("node %s: constraint %s: %w", id, c.Name, err),
				UserData: id,
			}
		}
		if !ok {
			return Error[string]{
				Code:     ErrInvariantViolation,
				Err:      fmt.Errorf("node %s: value %d violates constraint %s", id, next, c.Name),
				UserData: id,
			}
		}
	}
	return nil
}

// Snapshot returns a copy of every registered node's committed value keyed by
// id. Each value is read under its node's shared lock but no global lock is
// taken, so the copy is not atomic across nodes.
func (m *TransactionManager) Snapshot() map[string]int64 {
	ids := m.registry.ids()
	out := make(map[string]int64, len(ids))
	for _, id := range ids {
		out[id] = m.registry.getOrCreate(id).Value()
	}
	return out
}

// Count returns the number of registered nodes.
func (m *TransactionManager) Count() int {
	return m.registry.count()
}
