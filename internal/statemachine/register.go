// Package statemachine implements the deterministic application state that
// a Replica folds decided commands into. It is factored out behind a small
// interface (a mutex-guarded value behind load/apply accessors) so the
// slot-ordering and dedup logic in the replica package never needs to know
// it's specifically an integer register.
package statemachine

import (
	"sync"

	"github.com/arjunmehta/multipaxos/internal/types"
)

// Machine is the interface the Replica core depends on.
type Machine interface {
	// Apply executes op and returns the resulting value.
	Apply(op types.Operation) int64
	// Value returns the current value without mutating anything.
	Value() int64
}

// Register is an in-memory integer register: the default state machine,
// supporting add, subtract, multiply and a no-op null operation.
type Register struct {
	mu    sync.Mutex
	value int64
}

func NewRegister() *Register {
	return &Register{}
}

func (r *Register) Apply(op types.Operation) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch op.Kind {
	case types.OpAdd:
		r.value += op.Delta
	case types.OpSub:
		r.value -= op.Delta
	case types.OpMul:
		r.value *= op.Delta
	case types.OpNull:
		// no-op; still counts as applied for dedup purposes.
	}
	return r.value
}

func (r *Register) Value() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}
