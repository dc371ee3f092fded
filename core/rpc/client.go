package rpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/shu8h0-null/chainlab/core/blockchain"
)

// Client mirrors RPCHandler; go-jsonrpc fills in the function fields.
type Client struct {
	Blocks      func(ctx context.Context) ([]blockchain.Block, error)
	Validate    func(ctx context.Context) ([]blockchain.Validity, error)
	MineBlock   func(ctx context.Context, index int) ([]blockchain.Block, error)
	UpdateBlock func(ctx context.Context, index int, data string, nonce int) ([]blockchain.Block, error)
	Propagate   func(ctx context.Context, index int) ([]blockchain.Block, error)
	Update      func(ctx context.Context, index int, data string, nonce *int) ([]blockchain.Block, error)
}

// NodeURL turns a node address (host:port or full URL) into its JSON-RPC endpoint.
func NodeURL(addr string) string {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") &&
		!strings.HasPrefix(addr, "ws://") && !strings.HasPrefix(addr, "wss://") {
		addr = "http://" + addr
	}
	if !strings.HasSuffix(addr, RPCPath) {
		addr = strings.TrimSuffix(addr, "/") + RPCPath
	}
	return addr
}

func NewClient(ctx context.Context, addr string) (*Client, jsonrpc.ClientCloser, error) {
	var client Client
	closer, err := jsonrpc.NewClient(ctx, NodeURL(addr), Namespace, &client, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to node at %s: %w", addr, err)
	}
	return &client, closer, nil
}
