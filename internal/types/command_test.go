package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandKey(t *testing.T) {
	c1 := Command{ClientID: 1, CommandID: 7, Operation: Add(3)}
	c2 := Command{ClientID: 1, CommandID: 7, Operation: Mul(5)}
	c3 := Command{ClientID: 2, CommandID: 7, Operation: Add(3)}

	assert.Equal(t, c1.Key(), c2.Key(), "key identifies (client, command id), not the operation payload")
	assert.NotEqual(t, c1.Key(), c3.Key())
}

func TestOperationConstructors(t *testing.T) {
	assert.Equal(t, Operation{Kind: OpAdd, Delta: 4}, Add(4))
	assert.Equal(t, Operation{Kind: OpSub, Delta: 4}, Sub(4))
	assert.Equal(t, Operation{Kind: OpMul, Delta: 4}, Mul(4))
	assert.Equal(t, Operation{Kind: OpNull}, Null())
}
