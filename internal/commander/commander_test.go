package commander

import (
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmehta/multipaxos/internal/transport"
	"github.com/arjunmehta/multipaxos/internal/types"
)

func TestCommanderDecidesOnMajority(t *testing.T) {
	ballot := types.Ballot{Count: 1, LeaderID: 0}
	command := types.Command{ClientID: 1, CommandID: 1, Operation: types.Add(1)}
	toAcceptors, p2aRecv := transport.NewBroadcaster[types.P2a](3)
	toReplicas, decisionRecv := transport.NewBroadcaster[types.Decision](2)
	p2bIn := make(chan types.P2b, 8)
	resultOut := make(chan Result, 1)
	commanderID := types.NewCommanderID()

	go Run(commanderID, 0, ballot, 1, command, 3, toAcceptors, toReplicas, p2bIn, resultOut, log.NewNopLogger())

	for i := 0; i < 3; i++ {
		select {
		case m := <-p2aRecv[i]:
			assert.Equal(t, command, m.Pvalue.Command)
		case <-time.After(time.Second):
			require.Fail(t, "acceptor never received P2a")
		}
	}

	p2bIn <- types.P2b{AcceptorID: 0, Ballot: ballot, CommanderID: commanderID}
	p2bIn <- types.P2b{AcceptorID: 1, Ballot: ballot, CommanderID: commanderID}

	for i := 0; i < 2; i++ {
		select {
		case d := <-decisionRecv[i]:
			assert.Equal(t, types.Decision{Slot: 1, Command: command}, d)
		case <-time.After(time.Second):
			t.Fatalf("replica %d never received the decision", i)
		}
	}

	select {
	case r := <-resultOut:
		t.Fatalf("commander should not report a Result on success, got %+v", r)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCommanderPreemptedOnHigherBallot(t *testing.T) {
	ballot := types.Ballot{Count: 1, LeaderID: 0}
	higher := types.Ballot{Count: 9, LeaderID: 1}
	command := types.Command{ClientID: 1, CommandID: 1, Operation: types.Add(1)}
	toAcceptors, p2aRecv := transport.NewBroadcaster[types.P2a](3)
	toReplicas, _ := transport.NewBroadcaster[types.Decision](2)
	p2bIn := make(chan types.P2b, 8)
	resultOut := make(chan Result, 1)
	commanderID := types.NewCommanderID()

	go Run(commanderID, 0, ballot, 1, command, 3, toAcceptors, toReplicas, p2bIn, resultOut, log.NewNopLogger())
	for i := 0; i < 3; i++ {
		<-p2aRecv[i]
	}

	p2bIn <- types.P2b{AcceptorID: 0, Ballot: higher, CommanderID: commanderID}

	select {
	case r := <-resultOut:
		require.NotNil(t, r.Preempted)
		assert.Equal(t, higher, r.Preempted.Ballot)
	case <-time.After(time.Second):
		t.Fatal("commander never reported a result")
	}
}
