// Package leader implements the Leader role: proposes one command per slot
// under a ballot it owns, spawning a Scout on activation and a Commander
// per proposal once active.
//
// Acceptors share one inbound P1b and one inbound P2b channel per leader;
// this role demultiplexes by ScoutID/CommanderID into per-child channels it
// owns the send side of, while each child owns its own receive side.
package leader

import (
	"time"

	"github.com/go-kit/kit/log"

	"github.com/arjunmehta/multipaxos/internal/commander"
	"github.com/arjunmehta/multipaxos/internal/scout"
	"github.com/arjunmehta/multipaxos/internal/transport"
	"github.com/arjunmehta/multipaxos/internal/types"
)

const pollInterval = 100 * time.Nanosecond

// Deps bundles everything a Leader needs to reach the rest of the system.
type Deps struct {
	NumAcceptors int

	ToAcceptorsP1a *transport.Broadcaster[types.P1a]
	ToAcceptorsP2a *transport.Broadcaster[types.P2a]
	ToReplicas     *transport.Broadcaster[types.Decision]

	// P1bIn / P2bIn aggregate replies from every acceptor addressed to
	// this leader; ProposeIn aggregates Propose from every replica.
	P1bIn    <-chan types.P1b
	P2bIn    <-chan types.P2b
	ProposeIn <-chan types.Propose

	Ctrl <-chan types.ControlSignal
}

type Leader struct {
	id     types.LeaderID
	logger log.Logger
	deps   Deps

	ballotNum types.Ballot
	active    bool
	proposals map[types.Slot]types.Command

	scoutMailboxes      map[types.ScoutID]chan types.P1b
	commanderMailboxes  map[types.CommanderID]chan types.P2b
	scoutResults        chan scout.Result
	commanderResults    chan commander.Result
}

func New(id types.LeaderID, logger log.Logger, deps Deps) *Leader {
	return &Leader{
		id:                 id,
		logger:             log.With(logger, "role", "leader", "id", id),
		deps:               deps,
		ballotNum:          types.Ballot{Count: 0, LeaderID: id},
		proposals:          make(map[types.Slot]types.Command),
		scoutMailboxes:     make(map[types.ScoutID]chan types.P1b),
		commanderMailboxes: make(map[types.CommanderID]chan types.P2b),
		scoutResults:       make(chan scout.Result, transport.MailboxBufferSize),
		commanderResults:   make(chan commander.Result, transport.MailboxBufferSize),
	}
}

// Run is the leader's main loop: blocks on the control channel while
// Paused, otherwise non-blocking-polls every inbound channel each
// iteration with a short sleep between.
// Run returns nil on a clean Exit, or types.ErrControlChannelDisconnected if
// the control channel is closed out from under it.
func (l *Leader) Run() error {
	state := types.Paused
	for {
		switch state {
		case types.Paused:
			signal, ok := <-l.deps.Ctrl
			if !ok {
				l.logger.Log("event", "control channel disconnected", "fatal", true)
				return types.ErrControlChannelDisconnected
			}
			if signal == types.Run {
				l.spawnScout(l.ballotNum)
			}
			state = signal

		case types.Exit:
			l.logger.Log("event", "exit")
			return nil

		case types.Run:
			select {
			case signal, ok := <-l.deps.Ctrl:
				if !ok {
					l.logger.Log("event", "control channel disconnected", "fatal", true)
					return types.ErrControlChannelDisconnected
				}
				state = signal
			case p1b := <-l.deps.P1bIn:
				l.relayP1b(p1b)
			case p2b := <-l.deps.P2bIn:
				l.relayP2b(p2b)
			case propose := <-l.deps.ProposeIn:
				l.handlePropose(propose)
			case result := <-l.scoutResults:
				l.handleScoutResult(result)
			case result := <-l.commanderResults:
				l.handleCommanderResult(result)
			default:
				time.Sleep(pollInterval)
			}
		}
	}
}

func (l *Leader) relayP1b(m types.P1b) {
	if mbox, ok := l.scoutMailboxes[m.ScoutID]; ok {
		mbox <- m
	}
}

func (l *Leader) relayP2b(m types.P2b) {
	if mbox, ok := l.commanderMailboxes[m.CommanderID]; ok {
		mbox <- m
	}
}

func (l *Leader) handlePropose(p types.Propose) {
	if _, exists := l.proposals[p.Slot]; !exists {
		l.proposals[p.Slot] = p.Command
		if l.active {
			l.spawnCommander(p.Slot, p.Command)
		}
	}
}

func (l *Leader) handleScoutResult(r scout.Result) {
	delete(l.scoutMailboxes, r.ScoutID)

	switch {
	case r.Adopted != nil:
		if !r.Adopted.Ballot.Equal(l.ballotNum) {
			return // stale scout; ignore
		}
		pmax := types.Pmax(r.Adopted.Pvalues)
		for slot, command := range pmax {
			l.proposals[slot] = command
		}
		l.active = true
		for slot, command := range l.proposals {
			l.spawnCommander(slot, command)
		}
		l.logger.Log("event", "active", "ballot", l.ballotNum)

	case r.Preempted != nil:
		l.handlePreempted(*r.Preempted)
	}
}

func (l *Leader) handleCommanderResult(r commander.Result) {
	delete(l.commanderMailboxes, r.CommanderID)
	if r.Preempted != nil {
		l.handlePreempted(*r.Preempted)
	}
}

func (l *Leader) handlePreempted(p types.Preempted) {
	if !p.Ballot.Greater(l.ballotNum) {
		return // stale preemption; ignore (prevents thrashing)
	}
	l.active = false
	l.ballotNum = l.ballotNum.IncrementPast(p.Ballot, l.id)
	l.logger.Log("event", "preempted", "new_ballot", l.ballotNum)
	l.spawnScout(l.ballotNum)
}

func (l *Leader) spawnScout(ballot types.Ballot) {
	id := types.NewScoutID()
	mbox := make(chan types.P1b, transport.MailboxBufferSize)
	l.scoutMailboxes[id] = mbox
	go scout.Run(id, l.id, ballot, l.deps.NumAcceptors, l.deps.ToAcceptorsP1a, mbox, l.scoutResults, l.logger)
}

func (l *Leader) spawnCommander(slot types.Slot, command types.Command) {
	id := types.NewCommanderID()
	mbox := make(chan types.P2b, transport.MailboxBufferSize)
	l.commanderMailboxes[id] = mbox
	go commander.Run(id, l.id, l.ballotNum, slot, command, l.deps.NumAcceptors,
		l.deps.ToAcceptorsP2a, l.deps.ToReplicas, mbox, l.commanderResults, l.logger)
}
