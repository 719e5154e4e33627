// Package replica implements the Replica role: orders client commands into
// slots, proposes them to every leader, applies decided commands strictly
// in slot order, and responds to clients.
package replica

import (
	"time"

	"github.com/go-kit/kit/log"

	"github.com/arjunmehta/multipaxos/internal/statemachine"
	"github.com/arjunmehta/multipaxos/internal/transport"
	"github.com/arjunmehta/multipaxos/internal/types"
)

const pollInterval = 100 * time.Nanosecond

type Deps struct {
	ToLeaders *transport.Broadcaster[types.Propose]

	RequestIn  <-chan types.Request
	DecisionIn <-chan types.Decision

	// Responses routes a Response to the channel registered for its
	// client; clients not present (e.g. in a unit test harness that
	// doesn't care) are silently skipped.
	Responses map[types.ClientID]chan<- types.Response

	Ctrl <-chan types.ControlSignal
}

type Replica struct {
	id      types.ReplicaID
	logger  log.Logger
	deps    Deps
	machine statemachine.Machine

	slotIn  types.Slot
	slotOut types.Slot

	requests  []types.Command
	proposals map[types.Slot]types.Command
	decisions map[types.Slot]types.Command

	// applied tracks which (client, command) pairs have already updated
	// the state machine, so a command decided in more than one slot
	// (always the same command, by construction) updates state at most
	// once.
	applied map[types.CommandKey]struct{}
}

func New(id types.ReplicaID, logger log.Logger, machine statemachine.Machine, deps Deps) *Replica {
	return &Replica{
		id:        id,
		logger:    log.With(logger, "role", "replica", "id", id),
		deps:      deps,
		machine:   machine,
		slotIn:    1,
		slotOut:   1,
		proposals: make(map[types.Slot]types.Command),
		decisions: make(map[types.Slot]types.Command),
		applied:   make(map[types.CommandKey]struct{}),
	}
}

// Run returns nil on a clean Exit, or types.ErrControlChannelDisconnected if
// the control channel is closed out from under it.
func (r *Replica) Run() error {
	state := types.Paused
	for {
		switch state {
		case types.Paused:
			signal, ok := <-r.deps.Ctrl
			if !ok {
				r.logger.Log("event", "control channel disconnected", "fatal", true)
				return types.ErrControlChannelDisconnected
			}
			state = signal

		case types.Exit:
			r.logger.Log("event", "exit")
			return nil

		case types.Run:
			select {
			case signal, ok := <-r.deps.Ctrl:
				if !ok {
					r.logger.Log("event", "control channel disconnected", "fatal", true)
					return types.ErrControlChannelDisconnected
				}
				state = signal
			case req := <-r.deps.RequestIn:
				r.handleRequest(req)
			case dec := <-r.deps.DecisionIn:
				r.handleDecision(dec)
			default:
				if !r.driveProposals() {
					time.Sleep(pollInterval)
				}
			}
		}
	}
}

func (r *Replica) handleRequest(req types.Request) {
	r.requests = append(r.requests, req.Command)
}

func (r *Replica) handleDecision(d types.Decision) {
	r.decisions[d.Slot] = d.Command

	for {
		command, ok := r.decisions[r.slotOut]
		if !ok {
			break
		}
		if proposed, ok := r.proposals[r.slotOut]; ok {
			if proposed.Key() != command.Key() {
				// our own proposal for this slot wasn't the one chosen;
				// retry it in a later slot.
				r.requests = append(r.requests, proposed)
			}
			delete(r.proposals, r.slotOut)
		}
		r.perform(command)
		r.slotOut++
	}
}

func (r *Replica) perform(command types.Command) {
	key := command.Key()
	var result int64
	if _, already := r.applied[key]; already {
		result = r.machine.Value()
	} else {
		r.applied[key] = struct{}{}
		result = r.machine.Apply(command.Operation)
	}
	if ch, ok := r.deps.Responses[command.ClientID]; ok {
		ch <- types.Response{CommandID: command.CommandID, Result: result}
	}
}

// driveProposals pops one queued request and proposes it to every leader
// under the current slotIn, then advances slotIn. If slotIn already has a
// decision (someone else's proposal won that slot), the popped request is
// re-enqueued instead of being dropped, so it gets proposed again under a
// later slot. Returns whether it did any work, so the caller can avoid
// sleeping on a productive iteration.
func (r *Replica) driveProposals() bool {
	if len(r.requests) == 0 {
		return false
	}
	command := r.requests[0]
	r.requests = r.requests[1:]

	if _, decided := r.decisions[r.slotIn]; !decided {
		r.proposals[r.slotIn] = command
		r.deps.ToLeaders.Send(types.Propose{Slot: r.slotIn, Command: command})
	} else {
		// slot already decided by someone else; re-enqueue so the
		// command still gets proposed once slotIn moves past it,
		// instead of silently dropping it.
		r.requests = append(r.requests, command)
	}
	r.slotIn++
	return true
}
