package types

import "fmt"

// LeaderID identifies a leader for the lifetime of a run.
type LeaderID uint32

// Ballot is a totally-ordered, leader-unique proposal number: (Count,
// LeaderID) ordered lexicographically. Ballots from distinct leaders never
// compare equal: count ties are broken by leader id, and within one leader
// Count only ever increases.
type Ballot struct {
	Count    uint64
	LeaderID LeaderID
}

// Less reports whether b orders strictly before other.
func (b Ballot) Less(other Ballot) bool {
	if b.Count != other.Count {
		return b.Count < other.Count
	}
	return b.LeaderID < other.LeaderID
}

// Greater reports whether b orders strictly after other.
func (b Ballot) Greater(other Ballot) bool {
	return other.Less(b)
}

func (b Ballot) Equal(other Ballot) bool {
	return b.Count == other.Count && b.LeaderID == other.LeaderID
}

func (b Ballot) String() string {
	return fmt.Sprintf("ballot(%d,%d)", b.Count, b.LeaderID)
}

// IncrementPast returns a ballot owned by leaderID whose count is strictly
// greater than both b's and preempting's, so it beats both:
// new_count := max(self.count, preempting.count) + 1.
// Adopting the preempting count unmodified, or always adding 1 to self.count
// regardless of preempting, both fail to guarantee the result beats
// preempting in every case; taking the max first is what makes it safe.
func (b Ballot) IncrementPast(preempting Ballot, leaderID LeaderID) Ballot {
	count := b.Count
	if preempting.Count > count {
		count = preempting.Count
	}
	return Ballot{Count: count + 1, LeaderID: leaderID}
}

// Slot is a positive integer indexing the sequence of decided commands.
type Slot uint64

// Pvalue is the triple (Ballot, Slot, Command) representing an acceptor's
// acceptance of a command for a slot under a ballot.
type Pvalue struct {
	Ballot  Ballot
	Slot    Slot
	Command Command
}

func (p Pvalue) String() string {
	return fmt.Sprintf("pvalue{%s slot=%d %s}", p.Ballot, p.Slot, p.Command)
}

// Pmax computes, for a set of pvalues, the mapping from each slot occurring
// in pvalues to the command carried by the highest-ballot pvalue for that
// slot. Ties on ballot cannot occur across distinct pvalues for the same
// slot because ballots are globally unique.
func Pmax(pvalues []Pvalue) map[Slot]Command {
	best := make(map[Slot]Pvalue)
	for _, pv := range pvalues {
		if cur, ok := best[pv.Slot]; !ok || pv.Ballot.Greater(cur.Ballot) {
			best[pv.Slot] = pv
		}
	}
	out := make(map[Slot]Command, len(best))
	for slot, pv := range best {
		out[slot] = pv.Command
	}
	return out
}
