package blockchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMineBlockFindsPrefix(t *testing.T) {
	b := NewBlock(3, 0, "Data for block 3", "24fdd61cee3a64469d66a51b9239034b45e7ef052f77da21d72986c72307accf")

	hash, err := NewMiner(0).MineBlock(context.Background(), b, 4)
	require.NoError(t, err)
	assert.Equal(t, b.Hash, hash)
	assert.Equal(t, 87211, b.Nonce)
	assert.True(t, b.MeetsDifficulty(4))
	assert.True(t, b.IsHashValid())
}

func TestMineBlockStartsFromCurrentNonce(t *testing.T) {
	b := NewBlock(1, 5, "anything", GenesisPrevHash)
	hash, err := NewMiner(0).MineBlock(context.Background(), b, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, b.Nonce, "difficulty 0 is satisfied by the current nonce")
	assert.Equal(t, Digest(1, 5, "anything", GenesisPrevHash), hash)
}

func TestMineBlockRehashesStaleBlock(t *testing.T) {
	b := &Block{Index: 1, Data: "x", PrevHash: GenesisPrevHash, Hash: "0000stale"}
	_, err := NewMiner(0).MineBlock(context.Background(), b, 1)
	require.NoError(t, err)
	assert.True(t, b.IsHashValid())
}

func TestMineBlockInvalidDifficulty(t *testing.T) {
	m := NewMiner(0)
	for _, d := range []int{-1, 65} {
		b := NewBlock(1, 0, "x", GenesisPrevHash)
		_, err := m.MineBlock(context.Background(), b, d)
		assert.ErrorIs(t, err, ErrInvalidDifficulty)
		assert.Equal(t, 0, b.Nonce)
	}
}

func TestMineBlockMaxAttempts(t *testing.T) {
	b := NewBlock(1, 0, "Data for block 1", GenesisPrevHash)
	m := NewMiner(50)

	_, err := m.MineBlock(context.Background(), b, 64)
	assert.ErrorIs(t, err, ErrMaxAttempts)
	assert.Equal(t, 49, b.Nonce)
	assert.True(t, b.IsHashValid())
	assert.Equal(t, uint64(50), m.MaxAttempts())
}

func TestMineBlockCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBlock(1, 0, "Data for block 1", GenesisPrevHash)
	_, err := NewMiner(0).MineBlock(ctx, b, 64)
	assert.ErrorIs(t, err, ErrMiningAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, b.IsHashValid())
}
