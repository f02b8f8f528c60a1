// Package graphtx is an in-memory transactional graph engine. It lets many
// concurrent callers atomically read and mutate a shared set of named numeric
// nodes (e.g. account balances) with all-or-nothing commit semantics, without
// delegating to an external database. The TransactionManager owns the node
// registry and mints Transactions; a Transaction buffers intended mutations
// in a private write-set and applies them only at Commit, after every touched
// node's invariants have been validated.
//
// The engine is strictly pessimistic: Commit takes each touched node's
// exclusive lock for the duration of validate+apply. There is no conflict
// retry, no durability, and no cross-process coordination; callers wanting
// retry semantics start a fresh transaction via Begin.
package graphtx

// Locking model
//
// Two kinds of locks exist and they never nest the wrong way around:
//  1. Registry shard locks guard map structure only (inserting a new id).
//     They are held for map operations and released before any node lock is
//     taken.
//  2. Each Node carries its own RWMutex guarding its value. Read takes it
//     shared and briefly; Commit takes it exclusive, for every node in the
//     write-set, in byte-wise sorted id order.
//
// The sorted acquisition order is the deadlock-prevention mechanism: any two
// commits sharing nodes always contend in the same relative order, so no
// cycle of mutual waiting can form. The comparator is fixed at byte-wise
// string order (sort.Strings) and must stay identical across every commit
// path. Lock waits are unbounded; Commit consults its context before the
// lock phase begins but a mutex wait itself cannot be canceled.
