package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/spf13/cobra"

	"github.com/arjunmehta/multipaxos/internal/config"
	"github.com/arjunmehta/multipaxos/internal/types"
	"github.com/arjunmehta/multipaxos/internal/wiring"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Default()
	var requests int

	cmd := &cobra.Command{
		Use:   "paxosd",
		Short: "Run a single-process Multi-Paxos replicated integer register.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, requests)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Clients, "clients", cfg.Clients, "number of client instances to run")
	flags.IntVar(&cfg.Replicas, "replicas", cfg.Replicas, "number of replica instances")
	flags.IntVar(&cfg.Leaders, "leaders", cfg.Leaders, "number of leader instances")
	flags.IntVar(&cfg.Acceptors, "acceptors", cfg.Acceptors, "number of acceptor instances")
	flags.IntVar(&cfg.ClientRetryMillis, "client-retry-ms", cfg.ClientRetryMillis, "client request retry interval, in milliseconds")
	flags.IntVar(&requests, "requests", 20, "number of randomly generated operations to drive through client 0 before exiting")

	return cmd
}

func run(cfg config.Config, requests int) error {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	sys, err := wiring.New(cfg, logger)
	if err != nil {
		return err
	}
	sys.Start()
	defer func() {
		if stopErr := sys.Stop(); stopErr != nil {
			logger.Log("msg", "role exited abnormally", "error", stopErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Log("msg", "shutdown requested")
		cancel()
	}()

	c := sys.Clients[0]
	retryEvery := time.Duration(cfg.ClientRetryMillis) * time.Millisecond

	ops := []func(int64) types.Operation{
		func(n int64) types.Operation { return types.Add(n) },
		func(n int64) types.Operation { return types.Sub(n) },
		func(n int64) types.Operation { return types.Mul(n) },
	}

	for i := 0; i < requests; i++ {
		op := ops[rand.Intn(len(ops))](rand.Int63n(10) + 1)
		result, err := c.Do(ctx, op, retryEvery)
		if err != nil {
			logger.Log("msg", "request failed", "error", err)
			return err
		}
		logger.Log("msg", "request completed", "op", op, "result", result)

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
	return nil
}
