// Package scout implements the Scout role: a child task of a Leader that
// runs Paxos phase 1 for a single ballot across all acceptors, then reports
// Adopted or Preempted and terminates.
package scout

import (
	"github.com/go-kit/kit/log"

	"github.com/arjunmehta/multipaxos/internal/transport"
	"github.com/arjunmehta/multipaxos/internal/types"
)

// Result is what a Scout reports back to its Leader: exactly one of
// Adopted or Preempted is set.
type Result struct {
	ScoutID   types.ScoutID
	Adopted   *types.Adopted
	Preempted *types.Preempted
}

// Run executes the scout to completion and sends exactly one Result on
// resultOut, then returns. Callers spawn it with `go scout.Run(...)`, one
// goroutine per scout attempt.
func Run(
	scoutID types.ScoutID,
	leaderID types.LeaderID,
	ballot types.Ballot,
	numAcceptors int,
	toAcceptors *transport.Broadcaster[types.P1a],
	p1bIn <-chan types.P1b,
	resultOut chan<- Result,
	logger log.Logger,
) {
	logger = log.With(logger, "role", "scout", "scout_id", scoutID, "leader_id", leaderID, "ballot", ballot)
	logger.Log("event", "started")

	toAcceptors.Send(types.P1a{LeaderID: leaderID, Ballot: ballot, ScoutID: scoutID})

	waitfor := make(map[types.AcceptorID]struct{})
	var pvalues []types.Pvalue

	for reply := range p1bIn {
		if !reply.Ballot.Equal(ballot) {
			logger.Log("event", "preempted", "by", reply.Ballot)
			resultOut <- Result{ScoutID: scoutID, Preempted: &types.Preempted{Ballot: reply.Ballot}}
			return
		}
		if _, seen := waitfor[reply.AcceptorID]; seen {
			continue
		}
		waitfor[reply.AcceptorID] = struct{}{}
		pvalues = append(pvalues, reply.Accepted...)

		if len(waitfor) > numAcceptors/2 {
			logger.Log("event", "adopted", "pvalues", len(pvalues))
			resultOut <- Result{ScoutID: scoutID, Adopted: &types.Adopted{Ballot: ballot, Pvalues: pvalues}}
			return
		}
	}
}
