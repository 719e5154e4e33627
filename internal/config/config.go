// Package config holds the startup configuration for a single-process
// Paxos cluster and validates it before anything is wired together.
package config

import "fmt"

// Config describes the fixed membership and timing of one run. Membership
// never changes once a run starts.
type Config struct {
	Clients   int
	Replicas  int
	Leaders   int
	Acceptors int

	// ClientRetryMillis is how often, in milliseconds, an unacknowledged
	// client request is re-broadcast to replicas.
	ClientRetryMillis int
}

// Default returns a small single-process configuration suitable for
// exercising the protocol locally.
func Default() Config {
	return Config{
		Clients:           1,
		Replicas:          3,
		Leaders:           3,
		Acceptors:         3,
		ClientRetryMillis: 250,
	}
}

// Validate rejects configurations that cannot possibly tolerate any
// acceptor failure, or that are otherwise nonsensical.
func (c Config) Validate() error {
	if c.Clients < 1 {
		return fmt.Errorf("clients must be at least 1, got %d", c.Clients)
	}
	if c.Replicas < 1 {
		return fmt.Errorf("replicas must be at least 1, got %d", c.Replicas)
	}
	if c.Leaders < 1 {
		return fmt.Errorf("leaders must be at least 1, got %d", c.Leaders)
	}
	if c.Acceptors < 1 {
		return fmt.Errorf("acceptors must be at least 1, got %d", c.Acceptors)
	}
	if c.Acceptors < 3 {
		return fmt.Errorf("acceptors must be at least 3 to survive any failure, got %d", c.Acceptors)
	}
	if c.Acceptors%2 == 0 {
		return fmt.Errorf("acceptors should be odd so a majority is unambiguous, got %d", c.Acceptors)
	}
	if c.ClientRetryMillis < 1 {
		return fmt.Errorf("client retry interval must be positive, got %dms", c.ClientRetryMillis)
	}
	return nil
}
