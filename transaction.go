package graphtx

import (
	"context"
	"fmt"
	log "log/slog"
	"sort"
)

// Transaction defines end-user-facing transactional operations over the
// manager's nodes. A Transaction is a single-use handle: once Commit or
// Rollback returns (success or failure), every further call returns an
// ErrTransactionCompleted coded error. Instances must not be shared across
// goroutines; concurrency comes from driving many Transactions, not one.
type Transaction interface {
	// Read returns nodeID's committed value plus this transaction's own
	// buffered delta. It never observes another transaction's uncommitted
	// writes; it may observe commits that land between two Read calls.
	Read(ctx context.Context, nodeID string) (int64, error)
	// Write accumulates delta into the transaction's private write-set.
	// No global state is touched and no validation happens until Commit.
	Write(ctx context.Context, nodeID string, delta int64) error
	// Commit atomically validates and applies the whole write-set. On any
	// invariant violation nothing is applied and a coded error naming the
	// node is returned. Commit finalizes the transaction either way.
	Commit(ctx context.Context) error
	// Rollback discards the write-set and finalizes the transaction.
	Rollback(ctx context.Context) error
	// HasCommitted reports whether Commit completed successfully.
	HasCommitted() bool
	// GetID returns the transaction ID.
	GetID() UUID
	// OnCommit registers a callback to be executed after a successful commit.
	// Callback errors are returned from Commit but do not undo the commit.
	OnCommit(callback func(ctx context.Context) error)
}

type transactionStatus int

const (
	statusActive transactionStatus = iota
	statusCommitted
	statusRolledBack
)

type transaction struct {
	id       UUID
	mgr      *TransactionManager
	writeSet map[string]int64
	onCommit []func(ctx context.Context) error
	status   transactionStatus
}

func errCompleted(op string, id UUID) error {
	return Error[UUID]{
		Code:     ErrTransactionCompleted,
		Err:      fmt.Errorf("%s called on a completed transaction", op),
		UserData: id,
	}
}

func (t *transaction) Read(ctx context.Context, nodeID string) (int64, error) {
	if t.status != statusActive {
		return 0, errCompleted("Read", t.id)
	}
	n := t.mgr.registry.getOrCreate(nodeID)
	// Committed value at this instant plus our own pending delta. There is
	// no repeatable-read guarantee across two Read calls.
	return n.Value() + t.writeSet[nodeID], nil
}

func (t *transaction) Write(ctx context.Context, nodeID string, delta int64) error {
	if t.status != statusActive {
		return errCompleted("Write", t.id)
	}
	t.writeSet[nodeID] += delta
	return nil
}

// Commit runs the engine's commit protocol: sort the touched ids into the
// fixed byte-wise total order, lock every node in that order, validate the
// whole write-set, then apply it. Locks are released on every exit path,
// panics included.
func (t *transaction) Commit(ctx context.Context) error {
	if t.status != statusActive {
		return errCompleted("Commit", t.id)
	}
	if len(t.writeSet) == 0 {
		t.status = statusCommitted
		return t.notifyCommitted(ctx)
	}
	if err := ctx.Err(); err != nil {
		t.status = statusRolledBack
		return err
	}

	if err := t.validateAndApply(); err != nil {
		t.status = statusRolledBack
		log.Debug(fmt.Sprintf("commit %v aborted: %v", t.id.String(), err))
		return err
	}
	t.status = statusCommitted
	log.Debug(fmt.Sprintf("commit %v applied %d node(s)", t.id.String(), len(t.writeSet)))

	// Every node lock has been released by now, so callbacks can freely start
	// their own transactions against the just-committed nodes.
	return t.notifyCommitted(ctx)
}

// validateAndApply is the locked section of the commit protocol: lock every
// touched node in the fixed order, validate the whole write-set, then apply
// it. Its defer releases every acquired lock on all exit paths, panics
// included, and has resolved by the time the caller regains control.
func (t *transaction) validateAndApply() error {
	ids := make([]string, 0, len(t.writeSet))
	for id := range t.writeSet {
		ids = append(ids, id)
	}
	// Byte-wise sorted acquisition order makes deadlock between commits
	// structurally impossible. Do not reorder.
	sort.Strings(ids)

	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = t.mgr.registry.getOrCreate(id)
	}

	locked := 0
	defer func() {
		for i := locked - 1; i >= 0; i-- {
			nodes[i].mu.Unlock()
		}
	}()
	for _, n := range nodes {
		n.mu.Lock()
		locked++
	}

	// Validate the entire write-set before mutating anything.
	for i, id := range ids {
		next := nodes[i].value + t.writeSet[id]
		if err := t.mgr.validate(id, next); err != nil {
			return err
		}
	}
	for i, id := range ids {
		nodes[i].value += t.writeSet[id]
	}
	return nil
}

func (t *transaction) Rollback(ctx context.Context) error {
	if t.status != statusActive {
		return errCompleted("Rollback", t.id)
	}
	t.status = statusRolledBack
	t.writeSet = nil
	log.Debug(fmt.Sprintf("transaction %v rolled back", t.id.String()))
	return nil
}

func (t *transaction) HasCommitted() bool {
	return t.status == statusCommitted
}

// GetID returns the transaction ID.
func (t *transaction) GetID() UUID {
	return t.id
}

// OnCommit registers a callback to be executed after a successful commit.
func (t *transaction) OnCommit(callback func(ctx context.Context) error) {
	t.onCommit = append(t.onCommit, callback)
}

// notifyCommitted runs the OnCommit callbacks, returning the last error if any.
func (t *transaction) notifyCommitted(ctx context.Context) error {
	var lastErr error
	for _, cb := range t.onCommit {
		if err := cb(ctx); err != nil {
			log.Debug(fmt.Sprintf("onCommit callback of %v errored: %v", t.id.String(), err))
			lastErr = err
		}
	}
	return lastErr
}
