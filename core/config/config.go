package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shu8h0-null/chainlab/core/blockchain"
)

const (
	AppName = "chainlab"

	// AddrEnv overrides the default listen address.
	AddrEnv = "CHAINLAB_ADDR"

	DefaultAddr        = "localhost:5001"
	DefaultMineTimeout = 30 * time.Second
	DefaultMaxAttempts = 50_000_000
)

type Config struct {
	ListenAddr      string
	Difficulty      int
	MaxMineAttempts uint64        // 0 disables the cap
	MineTimeout     time.Duration // 0 disables the timeout
	Verbose         bool
}

// Default returns the config a node starts with before flags are applied.
func Default() Config {
	addr := DefaultAddr
	if env := os.Getenv(AddrEnv); env != "" {
		addr = env
	}
	return Config{
		ListenAddr:      addr,
		Difficulty:      blockchain.DefaultDifficulty,
		MaxMineAttempts: DefaultMaxAttempts,
		MineTimeout:     DefaultMineTimeout,
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address cannot be empty")
	}
	if c.Difficulty < 0 || c.Difficulty > len(blockchain.GenesisPrevHash) {
		return fmt.Errorf("difficulty %d: %w", c.Difficulty, blockchain.ErrInvalidDifficulty)
	}
	if c.MineTimeout < 0 {
		return errors.New("mine timeout cannot be negative")
	}
	return nil
}
