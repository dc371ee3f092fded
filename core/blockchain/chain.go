package blockchain

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// InitialLength is the number of blocks Initialize lays down.
const InitialLength = 5

var ErrOutOfRange = errors.New("block index out of range")

// Validity is the per-block result of Validate. Index is the 0-based position in the chain.
type Validity struct {
	Index int  `json:"index"`
	Valid bool `json:"valid"`
}

// Chain is the in-memory sequence of blocks. All operations take the same lock,
// so a mining call blocks readers until it finishes.
type Chain struct {
	blocks []*Block
	miner  *Miner
	feed   *EventFeed[ChainEvent]
	mu     sync.Mutex
}

// NewChain returns an initialized chain. feed may be nil.
func NewChain(miner *Miner, feed *EventFeed[ChainEvent]) (*Chain, error) {
	if miner == nil {
		return nil, errors.New("miner cannot be nil")
	}
	c := &Chain{
		miner: miner,
		feed:  feed,
	}
	c.Initialize()
	return c, nil
}

// Initialize resets the chain to InitialLength linked blocks. The result only
// depends on the digest, so calling it again reproduces the same chain.
func (c *Chain) Initialize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blocks = make([]*Block, 0, InitialLength)
	prevHash := GenesisPrevHash
	for i := 1; i <= InitialLength; i++ {
		b := NewBlock(i, 0, fmt.Sprintf("Data for block %d", i), prevHash)
		c.blocks = append(c.blocks, b)
		prevHash = b.Hash
	}
	c.publish(OpInit, 0)
}

func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blocks)
}

// Block returns a snapshot of the block at position i.
func (c *Chain) Block(i int) (Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(i); err != nil {
		return Block{}, err
	}
	return c.blocks[i].Export(), nil
}

// MineAt resets the nonce of block i to 0 and mines that block only. Later
// blocks keep their stale prev hash until PropagateFrom or UpdateFrom runs.
// If mining fails the block is left as it was.
func (c *Chain) MineAt(ctx context.Context, i, difficulty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(i); err != nil {
		return err
	}

	b := c.blocks[i]
	before := *b
	b.Nonce = 0
	if _, err := c.miner.MineBlock(ctx, b, difficulty); err != nil {
		*b = before
		return err
	}
	c.publish(OpMine, i)
	return nil
}

// EditBlock overwrites the data and nonce of block i and rehashes that block
// against its current prev hash. No other block is touched.
func (c *Chain) EditBlock(i int, data string, nonce int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(i); err != nil {
		return err
	}

	b := c.blocks[i]
	b.Data = data
	b.Nonce = nonce
	b.Rehash()
	c.publish(OpEdit, i)
	return nil
}

// PropagateFrom relinks every block after i to its predecessor's current hash,
// in increasing order. Block i itself is not changed.
func (c *Chain) PropagateFrom(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(i); err != nil {
		return err
	}

	c.relinkAfter(i)
	c.publish(OpPropagate, i)
	return nil
}

// UpdateFrom sets data and nonce on block i, rehashes it and relinks every
// later block. Block i keeps its own prev hash, so the genesis sentinel survives an update at 0.
func (c *Chain) UpdateFrom(i int, data string, nonce int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(i); err != nil {
		return err
	}

	c.updateFrom(i, data, nonce)
	return nil
}

// UpdateDataFrom is UpdateFrom keeping block i's current nonce.
func (c *Chain) UpdateDataFrom(i int, data string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(i); err != nil {
		return err
	}

	c.updateFrom(i, data, c.blocks[i].Nonce)
	return nil
}

func (c *Chain) updateFrom(i int, data string, nonce int) {
	b := c.blocks[i]
	b.Data = data
	b.Nonce = nonce
	b.Rehash()
	c.relinkAfter(i)
	c.publish(OpUpdate, i)
}

// Validate checks every block's hash against its content and its prev hash
// against the block before it. It does not modify the chain.
func (c *Chain) Validate() []Validity {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]Validity, 0, len(c.blocks))
	for i, b := range c.blocks {
		valid := b.IsHashValid()
		if i > 0 && b.PrevHash != c.blocks[i-1].Hash {
			valid = false
		}
		results = append(results, Validity{Index: i, Valid: valid})
	}
	return results
}

// IsValid reports whether every block passes Validate.
func (c *Chain) IsValid() bool {
	for _, v := range c.Validate() {
		if !v.Valid {
			return false
		}
	}
	return true
}

// Export returns snapshots of all blocks in order.
func (c *Chain) Export() []Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	blocks := make([]Block, 0, len(c.blocks))
	for _, b := range c.blocks {
		blocks = append(blocks, b.Export())
	}
	return blocks
}

// relinkAfter must run in increasing order: each block needs its predecessor's fresh hash.
func (c *Chain) relinkAfter(i int) {
	for j := i + 1; j < len(c.blocks); j++ {
		c.blocks[j].PrevHash = c.blocks[j-1].Hash
		c.blocks[j].Rehash()
	}
}

func (c *Chain) checkIndex(i int) error {
	if i < 0 || i >= len(c.blocks) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(c.blocks))
	}
	return nil
}

func (c *Chain) publish(op ChainOp, i int) {
	if c.feed == nil {
		return
	}
	c.feed.Send(ChainEvent{Op: op, Index: i, Hash: c.blocks[i].Hash})
}
