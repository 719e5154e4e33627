// Package acceptor implements the Acceptor role: the voter that holds the
// highest ballot it has promised and the set of pvalues it has accepted,
// and answers P1a with a promise and P2a with an accept-or-ignore.
package acceptor

import (
	"time"

	"github.com/go-kit/kit/log"

	"github.com/arjunmehta/multipaxos/internal/types"
)

// pollInterval is the short sleep between non-blocking poll iterations,
// long enough to avoid spinning a core and short enough not to add
// perceptible latency.
const pollInterval = 100 * time.Nanosecond

// LeaderMailboxes is how an Acceptor reaches every Leader's P1b/P2b
// many-producer-one-consumer mailbox, keyed by LeaderID (P1a/P2a always
// name the leader to reply to).
type LeaderMailboxes struct {
	P1b map[types.LeaderID]chan<- types.P1b
	P2b map[types.LeaderID]chan<- types.P2b
}

// Acceptor is a single instance of the role. Its promised ballot and
// accepted pvalues persist across Paused transitions and are never reset.
type Acceptor struct {
	id      types.AcceptorID
	logger  log.Logger
	leaders LeaderMailboxes

	p1aIn <-chan types.P1a
	p2aIn <-chan types.P2a
	ctrl  <-chan types.ControlSignal

	ballotNum *types.Ballot // nil means "no ballot promised yet"
	accepted  []types.Pvalue
}

func New(id types.AcceptorID, logger log.Logger, leaders LeaderMailboxes, p1aIn <-chan types.P1a, p2aIn <-chan types.P2a, ctrl <-chan types.ControlSignal) *Acceptor {
	return &Acceptor{
		id:      id,
		logger:  log.With(logger, "role", "acceptor", "id", id),
		leaders: leaders,
		p1aIn:   p1aIn,
		p2aIn:   p2aIn,
		ctrl:    ctrl,
	}
}

// Run is the acceptor's main loop. It blocks on the control channel while
// Paused, and otherwise non-blocking-polls its two inboxes. It returns nil
// on a clean Exit, or types.ErrControlChannelDisconnected if the control
// channel is closed out from under it.
func (a *Acceptor) Run() error {
	state := types.Paused
	for {
		switch state {
		case types.Paused:
			signal, ok := <-a.ctrl
			if !ok {
				a.logger.Log("event", "control channel disconnected", "fatal", true)
				return types.ErrControlChannelDisconnected
			}
			state = signal

		case types.Exit:
			a.logger.Log("event", "exit")
			return nil

		case types.Run:
			select {
			case signal, ok := <-a.ctrl:
				if !ok {
					a.logger.Log("event", "control channel disconnected", "fatal", true)
					return types.ErrControlChannelDisconnected
				}
				state = signal
			case p1a := <-a.p1aIn:
				a.handleP1a(p1a)
			case p2a := <-a.p2aIn:
				a.handleP2a(p2a)
			default:
				time.Sleep(pollInterval)
			}
		}
	}
}

func (a *Acceptor) handleP1a(m types.P1a) {
	// ballotNum only ever moves forward.
	if a.ballotNum == nil || m.Ballot.Greater(*a.ballotNum) {
		b := m.Ballot
		a.ballotNum = &b
		a.logger.Log("event", "promised", "ballot", b)
	}
	reply := types.P1b{
		AcceptorID: a.id,
		Ballot:     *a.ballotNum,
		Accepted:   snapshot(a.accepted),
		ScoutID:    m.ScoutID,
	}
	if mbox, ok := a.leaders.P1b[m.LeaderID]; ok {
		mbox <- reply
	}
}

func (a *Acceptor) handleP2a(m types.P2a) {
	if a.ballotNum != nil && m.Pvalue.Ballot.Equal(*a.ballotNum) {
		a.accepted = appendUnique(a.accepted, m.Pvalue)
	}
	var replyBallot types.Ballot
	if a.ballotNum != nil {
		replyBallot = *a.ballotNum
	}
	reply := types.P2b{
		AcceptorID:  a.id,
		Ballot:      replyBallot,
		CommanderID: m.CommanderID,
	}
	if mbox, ok := a.leaders.P2b[m.LeaderID]; ok {
		mbox <- reply
	}
}

func snapshot(pvalues []types.Pvalue) []types.Pvalue {
	out := make([]types.Pvalue, len(pvalues))
	copy(out, pvalues)
	return out
}

// appendUnique keeps accepted as a set of distinct (ballot, slot) pvalues,
// so repeated P2a delivery for the same pvalue never grows it unboundedly.
func appendUnique(accepted []types.Pvalue, pv types.Pvalue) []types.Pvalue {
	for _, existing := range accepted {
		if existing.Ballot.Equal(pv.Ballot) && existing.Slot == pv.Slot {
			return accepted
		}
	}
	return append(accepted, pv)
}
