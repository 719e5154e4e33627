package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBallotOrdering(t *testing.T) {
	low := Ballot{Count: 1, LeaderID: 5}
	high := Ballot{Count: 2, LeaderID: 0}
	tie := Ballot{Count: 1, LeaderID: 9}

	assert.True(t, low.Less(high))
	assert.True(t, high.Greater(low))
	assert.True(t, low.Less(tie)) // same count, tie broken by leader id
	assert.False(t, low.Equal(high))
	assert.True(t, low.Equal(Ballot{Count: 1, LeaderID: 5}))
}

func TestBallotIncrementPast(t *testing.T) {
	self := Ballot{Count: 3, LeaderID: 1}

	t.Run("preempting count lower than self", func(t *testing.T) {
		preempting := Ballot{Count: 1, LeaderID: 2}
		next := self.IncrementPast(preempting, 1)
		assert.Equal(t, Ballot{Count: 4, LeaderID: 1}, next)
		assert.True(t, next.Greater(preempting))
	})

	t.Run("preempting count higher than self", func(t *testing.T) {
		preempting := Ballot{Count: 10, LeaderID: 2}
		next := self.IncrementPast(preempting, 1)
		assert.Equal(t, Ballot{Count: 11, LeaderID: 1}, next)
		assert.True(t, next.Greater(preempting))
	})

	t.Run("result always beats the preempting ballot", func(t *testing.T) {
		for _, preempting := range []Ballot{
			{Count: 0, LeaderID: 99},
			{Count: 3, LeaderID: 99},
			{Count: 100, LeaderID: 1},
		} {
			next := self.IncrementPast(preempting, 1)
			assert.True(t, next.Greater(preempting), "IncrementPast(%v) = %v should beat %v", preempting, next, preempting)
		}
	})
}

func TestPmax(t *testing.T) {
	low := Ballot{Count: 1, LeaderID: 1}
	high := Ballot{Count: 2, LeaderID: 1}

	cmdA := Command{ClientID: 1, CommandID: 1, Operation: Add(1)}
	cmdB := Command{ClientID: 2, CommandID: 1, Operation: Sub(2)}

	pvalues := []Pvalue{
		{Ballot: low, Slot: 1, Command: cmdA},
		{Ballot: high, Slot: 1, Command: cmdB},
		{Ballot: low, Slot: 2, Command: cmdA},
	}

	got := Pmax(pvalues)
	assert.Equal(t, cmdB, got[1], "slot 1 should keep the higher-ballot command")
	assert.Equal(t, cmdA, got[2])
	assert.Len(t, got, 2)
}

func TestPmaxEmpty(t *testing.T) {
	assert.Empty(t, Pmax(nil))
}
