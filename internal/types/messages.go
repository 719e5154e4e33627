package types

import "github.com/google/uuid"

// ReplicaID, AcceptorID index the fixed, startup-configured sets of
// replicas and acceptors. Membership is fixed for the lifetime of a run.
type ReplicaID uint32
type AcceptorID uint32

// ScoutID and CommanderID address a single Scout or Commander child task
// for the lifetime of its one activation/proposal attempt. They are
// generated with google/uuid rather than small counters because a Leader
// may have many scouts/commanders from different ballots in flight or
// recently torn down, and log lines that mix leader-local counters across
// restarts are easy to misread; a uuid keeps every child's identity
// unambiguous in logs and in the routing maps that key on it.
type ScoutID = uuid.UUID
type CommanderID = uuid.UUID

func NewScoutID() ScoutID         { return uuid.New() }
func NewCommanderID() CommanderID { return uuid.New() }

// Request is sent by a Client to every Replica.
type Request struct {
	Command Command
}

// Response is sent by a Replica back to the client identified by
// Command.ClientID. Result is the register's value after applying the
// command (or its current value, for a duplicate).
type Response struct {
	CommandID CommandID
	Result    int64
}

// Propose is sent by a Replica to every Leader: "please decide Command in
// Slot".
type Propose struct {
	Slot    Slot
	Command Command
}

// Decision is broadcast by a Commander to every Replica once a majority of
// acceptors have accepted the pvalue for (Slot, Command).
type Decision struct {
	Slot    Slot
	Command Command
}

// P1a is broadcast by a Scout to every Acceptor to start phase 1 for Ballot.
type P1a struct {
	LeaderID LeaderID
	Ballot   Ballot
	ScoutID  ScoutID
}

// P1b is an Acceptor's reply to P1a, routed to the leader named in the P1a
// (so the leader can forward it to the right scout by ScoutID).
type P1b struct {
	AcceptorID AcceptorID
	Ballot     Ballot
	Accepted   []Pvalue
	ScoutID    ScoutID
}

// P2a is broadcast by a Commander to every Acceptor to start phase 2 for a
// single pvalue.
type P2a struct {
	LeaderID    LeaderID
	Pvalue      Pvalue
	CommanderID CommanderID
}

// P2b is an Acceptor's reply to P2a, routed to the leader owning the
// commander named in CommanderID.
type P2b struct {
	AcceptorID  AcceptorID
	Ballot      Ballot
	CommanderID CommanderID
}

// Adopted is sent by a Scout to its Leader once a strict majority of
// acceptors have promised Ballot.
type Adopted struct {
	Ballot  Ballot
	Pvalues []Pvalue
}

// Preempted is sent by a Scout or Commander to its Leader when an acceptor
// reports a ballot that does not match the one being attempted.
type Preempted struct {
	Ballot Ballot
}
