package tui

import (
	"context"

	"github.com/shu8h0-null/chainlab/core/blockchain"
	"github.com/shu8h0-null/chainlab/core/rpc"
)

// ChainClient is the part of the node API the explorer drives.
type ChainClient interface {
	Blocks(ctx context.Context) ([]blockchain.Block, error)
	Validate(ctx context.Context) ([]blockchain.Validity, error)
	MineBlock(ctx context.Context, index int) ([]blockchain.Block, error)
	UpdateBlock(ctx context.Context, index int, data string, nonce int) ([]blockchain.Block, error)
	Propagate(ctx context.Context, index int) ([]blockchain.Block, error)
	Update(ctx context.Context, index int, data string, nonce *int) ([]blockchain.Block, error)
}

type rpcChainClient struct {
	c *rpc.Client
}

// NewRPCChainClient adapts the JSON-RPC client to ChainClient.
func NewRPCChainClient(c *rpc.Client) ChainClient {
	return rpcChainClient{c: c}
}

func (r rpcChainClient) Blocks(ctx context.Context) ([]blockchain.Block, error) {
	return r.c.Blocks(ctx)
}

func (r rpcChainClient) Validate(ctx context.Context) ([]blockchain.Validity, error) {
	return r.c.Validate(ctx)
}

func (r rpcChainClient) MineBlock(ctx context.Context, index int) ([]blockchain.Block, error) {
	return r.c.MineBlock(ctx, index)
}

func (r rpcChainClient) UpdateBlock(ctx context.Context, index int, data string, nonce int) ([]blockchain.Block, error) {
	return r.c.UpdateBlock(ctx, index, data, nonce)
}

func (r rpcChainClient) Propagate(ctx context.Context, index int) ([]blockchain.Block, error) {
	return r.c.Propagate(ctx, index)
}

func (r rpcChainClient) Update(ctx context.Context, index int, data string, nonce *int) ([]blockchain.Block, error) {
	return r.c.Update(ctx, index, data, nonce)
}
