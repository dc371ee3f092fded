package blockchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultDifficulty is the number of leading zero hex characters a mined hash needs.
const DefaultDifficulty = 4

// how many attempts run between context checks
const ctxCheckInterval = 1024

var (
	ErrInvalidDifficulty = errors.New("difficulty must be between 0 and 64")
	ErrMaxAttempts       = errors.New("mining gave up after max attempts")
	ErrMiningAborted     = errors.New("mining aborted")
)

type Miner struct {
	maxAttempts uint64 // 0 means no cap
}

func NewMiner(maxAttempts uint64) *Miner {
	return &Miner{
		maxAttempts: maxAttempts,
	}
}

func (m *Miner) MaxAttempts() uint64 {
	return m.maxAttempts
}

// MineBlock performs proof-of-work on block b in place. The nonce is bumped from
// its current value until the hash has difficulty leading zeros; the current
// nonce is tried first. Returns the winning hash.
//
// On error the block holds the last nonce tried and the matching hash.
func (m *Miner) MineBlock(ctx context.Context, b *Block, difficulty int) (string, error) {
	if difficulty < 0 || difficulty > len(GenesisPrevHash) {
		return "", fmt.Errorf("%w: got %d", ErrInvalidDifficulty, difficulty)
	}
	prefix := strings.Repeat("0", difficulty)

	b.Rehash()
	for attempts := uint64(1); ; attempts++ {
		if strings.HasPrefix(b.Hash, prefix) {
			log.Debugf("Block:[%d] mined with nonce %d after %d attempts\n", b.Index, b.Nonce, attempts)
			return b.Hash, nil
		}
		if m.maxAttempts > 0 && attempts >= m.maxAttempts {
			return "", fmt.Errorf("%w: block %d, %d attempts", ErrMaxAttempts, b.Index, attempts)
		}
		if attempts%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return "", fmt.Errorf("%w: block %d: %w", ErrMiningAborted, b.Index, err)
			}
		}
		b.Nonce++
		b.Rehash()
	}
}
