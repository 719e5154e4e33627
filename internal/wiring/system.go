// Package wiring assembles one in-process Paxos cluster: it builds every
// broadcaster and mailbox the roles need to reach each other, constructs
// one goroutine per replica/leader/acceptor, and exposes a small control
// surface (Start/Stop) plus a Client per configured client slot.
package wiring

import (
	"fmt"

	"github.com/go-kit/kit/log"
	"golang.org/x/sync/errgroup"

	"github.com/arjunmehta/multipaxos/internal/acceptor"
	"github.com/arjunmehta/multipaxos/internal/client"
	"github.com/arjunmehta/multipaxos/internal/config"
	"github.com/arjunmehta/multipaxos/internal/leader"
	"github.com/arjunmehta/multipaxos/internal/replica"
	"github.com/arjunmehta/multipaxos/internal/statemachine"
	"github.com/arjunmehta/multipaxos/internal/transport"
	"github.com/arjunmehta/multipaxos/internal/types"
)

// System owns every channel and goroutine that makes up one cluster.
type System struct {
	cfg    config.Config
	logger log.Logger
	group  *errgroup.Group

	acceptorCtrl []chan types.ControlSignal
	leaderCtrl   []chan types.ControlSignal
	replicaCtrl  []chan types.ControlSignal

	Clients []*client.Client
}

// New validates cfg, wires every component together and spawns the
// long-lived role goroutines. Every role starts Paused; call Start to
// activate the cluster.
func New(cfg config.Config, logger log.Logger) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	requestsOut, requestsIn := transport.NewBroadcaster[types.Request](cfg.Replicas)
	decisionsOut, decisionsIn := transport.NewBroadcaster[types.Decision](cfg.Replicas)
	proposeOut, proposeIn := transport.NewBroadcaster[types.Propose](cfg.Leaders)
	p1aOut, p1aIn := transport.NewBroadcaster[types.P1a](cfg.Acceptors)
	p2aOut, p2aIn := transport.NewBroadcaster[types.P2a](cfg.Acceptors)

	leaderP1bSend := make(map[types.LeaderID]chan<- types.P1b, cfg.Leaders)
	leaderP1bRecv := make([]<-chan types.P1b, cfg.Leaders)
	leaderP2bSend := make(map[types.LeaderID]chan<- types.P2b, cfg.Leaders)
	leaderP2bRecv := make([]<-chan types.P2b, cfg.Leaders)
	for i := 0; i < cfg.Leaders; i++ {
		id := types.LeaderID(i)
		send, recv := transport.NewMailbox[types.P1b]()
		leaderP1bSend[id] = send
		leaderP1bRecv[i] = recv
		send2, recv2 := transport.NewMailbox[types.P2b]()
		leaderP2bSend[id] = send2
		leaderP2bRecv[i] = recv2
	}
	leaderMailboxes := acceptor.LeaderMailboxes{P1b: leaderP1bSend, P2b: leaderP2bSend}

	responseChans := make(map[types.ClientID]chan types.Response, cfg.Clients)
	responses := make(map[types.ClientID]chan<- types.Response, cfg.Clients)
	for i := 0; i < cfg.Clients; i++ {
		ch := make(chan types.Response, transport.MailboxBufferSize)
		responseChans[types.ClientID(i)] = ch
		responses[types.ClientID(i)] = ch
	}

	group := &errgroup.Group{}
	sys := &System{cfg: cfg, logger: logger, group: group}

	for i := 0; i < cfg.Acceptors; i++ {
		id := types.AcceptorID(i)
		ctrl := make(chan types.ControlSignal)
		sys.acceptorCtrl = append(sys.acceptorCtrl, ctrl)
		a := acceptor.New(id, logger, leaderMailboxes, p1aIn[i], p2aIn[i], ctrl)
		group.Go(func() error { return a.Run() })
	}

	for i := 0; i < cfg.Leaders; i++ {
		id := types.LeaderID(i)
		ctrl := make(chan types.ControlSignal)
		sys.leaderCtrl = append(sys.leaderCtrl, ctrl)
		deps := leader.Deps{
			NumAcceptors:   cfg.Acceptors,
			ToAcceptorsP1a: p1aOut,
			ToAcceptorsP2a: p2aOut,
			ToReplicas:     decisionsOut,
			P1bIn:          leaderP1bRecv[i],
			P2bIn:          leaderP2bRecv[i],
			ProposeIn:      proposeIn[i],
			Ctrl:           ctrl,
		}
		l := leader.New(id, logger, deps)
		group.Go(func() error { return l.Run() })
	}

	for i := 0; i < cfg.Replicas; i++ {
		id := types.ReplicaID(i)
		ctrl := make(chan types.ControlSignal)
		sys.replicaCtrl = append(sys.replicaCtrl, ctrl)
		deps := replica.Deps{
			ToLeaders:  proposeOut,
			RequestIn:  requestsIn[i],
			DecisionIn: decisionsIn[i],
			Responses:  responses,
			Ctrl:       ctrl,
		}
		r := replica.New(id, logger, statemachine.NewRegister(), deps)
		group.Go(func() error { return r.Run() })
	}

	for i := 0; i < cfg.Clients; i++ {
		id := types.ClientID(i)
		c := client.New(id, logger, requestsOut, responseChans[id])
		sys.Clients = append(sys.Clients, c)
	}

	return sys, nil
}

// Start activates every replica, leader and acceptor.
func (s *System) Start() {
	s.broadcastControl(types.Run)
}

// Stop signals every role to exit and waits for all of them to return. It
// reports the first error any role returned — in practice always
// types.ErrControlChannelDisconnected from a role whose control channel was
// closed instead of sent Exit.
func (s *System) Stop() error {
	s.broadcastControl(types.Exit)
	return s.group.Wait()
}

func (s *System) broadcastControl(signal types.ControlSignal) {
	for _, ch := range s.acceptorCtrl {
		ch <- signal
	}
	for _, ch := range s.leaderCtrl {
		ch <- signal
	}
	for _, ch := range s.replicaCtrl {
		ch <- signal
	}
}
