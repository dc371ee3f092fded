package rpc

import (
	"context"

	"github.com/shu8h0-null/chainlab/core/blockchain"
)

// ChainService is what the node exposes to clients. Every mutation returns the
// whole chain so callers can re-render it.
type ChainService interface {
	Blocks() []blockchain.Block
	Validate() []blockchain.Validity
	MineBlock(ctx context.Context, index int) ([]blockchain.Block, error)
	UpdateBlock(index int, data string, nonce int) ([]blockchain.Block, error)
	Propagate(index int) ([]blockchain.Block, error)
	// Update rewrites block index and relinks the rest of the chain. A nil nonce keeps the current one.
	Update(index int, data string, nonce *int) ([]blockchain.Block, error)
}
