package blockchain

import (
	"strings"

	"github.com/shu8h0-null/chainlab/core/logger"
)

var log = logger.NewLogger()

// GenesisPrevHash is the prev hash of the first block: as many zeros as a hex digest has characters.
var GenesisPrevHash = strings.Repeat("0", 64)

type Block struct {
	Index    int    `json:"block_no"`
	Nonce    int    `json:"nonce"`
	Data     string `json:"data"`
	PrevHash string `json:"prev_hash"`
	Hash     string `json:"hash"`
}

// NewBlock builds a block and stamps it with the hash of its fields.
// Inputs are taken as given.
func NewBlock(index, nonce int, data, prevHash string) *Block {
	b := &Block{
		Index:    index,
		Nonce:    nonce,
		Data:     data,
		PrevHash: prevHash,
	}
	b.Rehash()
	return b
}

func (b *Block) CalculateHash() string {
	return Digest(b.Index, b.Nonce, b.Data, b.PrevHash)
}

// Rehash recomputes and stores the block hash from its current fields.
func (b *Block) Rehash() string {
	b.Hash = b.CalculateHash()
	return b.Hash
}

// IsHashValid reports whether the stored hash matches the block content.
func (b *Block) IsHashValid() bool {
	return b.Hash == b.CalculateHash()
}

// MeetsDifficulty reports whether the stored hash starts with difficulty zeros.
func (b *Block) MeetsDifficulty(difficulty int) bool {
	if difficulty < 0 || difficulty > len(b.Hash) {
		return false
	}
	return strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty))
}

// Export returns a copy of the block safe to hand out of the chain.
func (b *Block) Export() Block {
	return *b
}
