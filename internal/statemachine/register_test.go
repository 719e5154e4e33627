package statemachine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arjunmehta/multipaxos/internal/types"
)

func TestRegisterApply(t *testing.T) {
	r := NewRegister()

	assert.Equal(t, int64(5), r.Apply(types.Add(5)))
	assert.Equal(t, int64(3), r.Apply(types.Sub(2)))
	assert.Equal(t, int64(9), r.Apply(types.Mul(3)))
	assert.Equal(t, int64(9), r.Apply(types.Null()))
	assert.Equal(t, int64(9), r.Value())
}

func TestRegisterConcurrentApply(t *testing.T) {
	r := NewRegister()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Apply(types.Add(1))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), r.Value())
}
