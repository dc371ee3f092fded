package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	blkchn "github.com/shu8h0-null/chainlab/core/blockchain"
	"github.com/shu8h0-null/chainlab/core/config"
	"github.com/shu8h0-null/chainlab/core/logger"
	"github.com/shu8h0-null/chainlab/core/rpc"
)

const (
	eventLoggerID   = "node-logger"
	shutdownTimeout = 5 * time.Second
)

var log = logger.NewLogger()

// Node owns the chain and serves it over HTTP. It implements rpc.ChainService.
type Node struct {
	cfg      config.Config
	chain    *blkchn.Chain
	eventBus *blkchn.EventBus
	events   chan blkchn.ChainEvent
	server   *http.Server
}

func NewNode(cfg config.Config) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	bus := blkchn.NewEventBus()
	events := make(chan blkchn.ChainEvent, 64)
	if err := bus.ChainFeed.Subscribe(eventLoggerID, events); err != nil {
		return nil, err
	}

	chain, err := blkchn.NewChain(blkchn.NewMiner(cfg.MaxMineAttempts), bus.ChainFeed)
	if err != nil {
		return nil, fmt.Errorf("creating chain: %w", err)
	}

	n := &Node{
		cfg:      cfg,
		chain:    chain,
		eventBus: bus,
		events:   events,
	}
	n.server = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           rpc.NewMux(n),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return n, nil
}

func (n *Node) Chain() *blkchn.Chain {
	return n.chain
}

func (n *Node) EventBus() *blkchn.EventBus {
	return n.eventBus
}

func (n *Node) Handler() http.Handler {
	return n.server.Handler
}

// Start serves until ctx is cancelled, then shuts the server down.
func (n *Node) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", n.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", n.cfg.ListenAddr, err)
	}
	return n.Serve(ctx, ln)
}

// Serve returns once the server has stopped and the event logger has exited.
func (n *Node) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		n.EventLogger(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Serving chain on http://%s (rpc at %s)\n", ln.Addr(), rpc.RPCPath)
		errCh <- n.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := n.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}

func (n *Node) Close() error {
	n.eventBus.ChainFeed.UnSubscribe(eventLoggerID)
	if err := n.server.Close(); err != nil {
		return fmt.Errorf("error closing server: %w", err)
	}
	return nil
}

// EventLogger logs chain mutations until ctx is done.
func (n *Node) EventLogger(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.events:
			log.Infof("Chain %s at block:[%d]:[%s]\n", ev.Op, ev.Index, ev.Hash)
		}
	}
}

func (n *Node) Blocks() []blkchn.Block {
	return n.chain.Export()
}

func (n *Node) Validate() []blkchn.Validity {
	return n.chain.Validate()
}

func (n *Node) MineBlock(ctx context.Context, index int) ([]blkchn.Block, error) {
	if n.cfg.MineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.MineTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := n.chain.MineAt(ctx, index, n.cfg.Difficulty); err != nil {
		return nil, err
	}
	if b, err := n.chain.Block(index); err == nil {
		log.Successf("Block:[%d] mined with nonce %d in %s\n", index, b.Nonce, time.Since(start).Round(time.Millisecond))
	}
	return n.chain.Export(), nil
}

func (n *Node) UpdateBlock(index int, data string, nonce int) ([]blkchn.Block, error) {
	if err := n.chain.EditBlock(index, data, nonce); err != nil {
		return nil, err
	}
	return n.chain.Export(), nil
}

func (n *Node) Propagate(index int) ([]blkchn.Block, error) {
	if err := n.chain.PropagateFrom(index); err != nil {
		return nil, err
	}
	return n.chain.Export(), nil
}

func (n *Node) Update(index int, data string, nonce *int) ([]blkchn.Block, error) {
	var err error
	if nonce == nil {
		err = n.chain.UpdateDataFrom(index, data)
	} else {
		err = n.chain.UpdateFrom(index, data, *nonce)
	}
	if err != nil {
		return nil, err
	}
	return n.chain.Export(), nil
}
