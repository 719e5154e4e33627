package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsEvenAcceptorCount(t *testing.T) {
	cfg := Default()
	cfg.Acceptors = 4
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsTooFewAcceptors(t *testing.T) {
	cfg := Default()
	cfg.Acceptors = 1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveCounts(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.Clients = 0 },
		func(c *Config) { c.Replicas = 0 },
		func(c *Config) { c.Leaders = 0 },
		func(c *Config) { c.ClientRetryMillis = 0 },
	} {
		cfg := Default()
		mutate(&cfg)
		assert.Error(t, cfg.Validate())
	}
}
