// Package client implements a minimal in-process client: it broadcasts a
// Request to every replica and waits for the first matching Response,
// retrying the broadcast on a timeout since at most one replica's response
// is needed but any replica (or none, if the system isn't yet converged)
// might answer first.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/arjunmehta/multipaxos/internal/transport"
	"github.com/arjunmehta/multipaxos/internal/types"
)

// Client issues commands on behalf of one caller and collects responses
// addressed to it.
type Client struct {
	id     types.ClientID
	logger log.Logger

	toReplicas *transport.Broadcaster[types.Request]
	responses  <-chan types.Response

	nextCommandID types.CommandID
}

func New(id types.ClientID, logger log.Logger, toReplicas *transport.Broadcaster[types.Request], responses <-chan types.Response) *Client {
	return &Client{
		id:            id,
		logger:        log.With(logger, "role", "client", "id", id),
		toReplicas:    toReplicas,
		responses:     responses,
		nextCommandID: 1,
	}
}

// Do broadcasts op as a new command and blocks until the matching response
// arrives or ctx is done, re-broadcasting every retryEvery so a request
// issued before any replica became active isn't lost.
func (c *Client) Do(ctx context.Context, op types.Operation, retryEvery time.Duration) (int64, error) {
	commandID := c.nextCommandID
	c.nextCommandID++

	command := types.Command{ClientID: c.id, CommandID: commandID, Operation: op}
	c.toReplicas.Send(types.Request{Command: command})
	c.logger.Log("event", "sent", "command", command)

	ticker := time.NewTicker(retryEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("client %d: command %d: %w", c.id, commandID, ctx.Err())
		case resp := <-c.responses:
			if resp.CommandID != commandID {
				continue // stale response for an earlier command; discard
			}
			c.logger.Log("event", "acked", "command_id", commandID, "result", resp.Result)
			return resp.Result, nil
		case <-ticker.C:
			c.toReplicas.Send(types.Request{Command: command})
		}
	}
}
