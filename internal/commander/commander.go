// Package commander implements the Commander role: a child task of a
// Leader that runs Paxos phase 2 for one (ballot, slot, command) triple
// across all acceptors, and on majority acknowledgement broadcasts the
// Decision to all replicas.
package commander

import (
	"github.com/go-kit/kit/log"

	"github.com/arjunmehta/multipaxos/internal/transport"
	"github.com/arjunmehta/multipaxos/internal/types"
)

// Result is what a Commander reports back to its Leader. A successful
// commit is announced to replicas directly (via Decision), not through the
// leader, so Result is only ever a Preempted — a commander that reaches
// majority simply terminates without reporting.
type Result struct {
	CommanderID types.CommanderID
	Preempted   *types.Preempted
}

// Run executes the commander to completion. On preemption it sends exactly
// one Result on resultOut; on success it broadcasts Decision and sends
// nothing. Either way it returns once done.
func Run(
	commanderID types.CommanderID,
	leaderID types.LeaderID,
	ballot types.Ballot,
	slot types.Slot,
	command types.Command,
	numAcceptors int,
	toAcceptors *transport.Broadcaster[types.P2a],
	toReplicas *transport.Broadcaster[types.Decision],
	p2bIn <-chan types.P2b,
	resultOut chan<- Result,
	logger log.Logger,
) {
	logger = log.With(logger, "role", "commander", "commander_id", commanderID, "leader_id", leaderID,
		"ballot", ballot, "slot", slot)
	logger.Log("event", "started", "command", command)

	toAcceptors.Send(types.P2a{
		LeaderID:    leaderID,
		Pvalue:      types.Pvalue{Ballot: ballot, Slot: slot, Command: command},
		CommanderID: commanderID,
	})

	waitfor := make(map[types.AcceptorID]struct{})

	for reply := range p2bIn {
		if !reply.Ballot.Equal(ballot) {
			logger.Log("event", "preempted", "by", reply.Ballot)
			resultOut <- Result{CommanderID: commanderID, Preempted: &types.Preempted{Ballot: reply.Ballot}}
			return
		}
		if _, seen := waitfor[reply.AcceptorID]; seen {
			continue
		}
		waitfor[reply.AcceptorID] = struct{}{}

		if len(waitfor) > numAcceptors/2 {
			logger.Log("event", "decided")
			toReplicas.Send(types.Decision{Slot: slot, Command: command})
			return
		}
	}
}
