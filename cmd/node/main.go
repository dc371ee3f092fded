package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shu8h0-null/chainlab/core"
	"github.com/shu8h0-null/chainlab/core/config"
	"github.com/shu8h0-null/chainlab/core/logger"
)

var log = logger.NewLogger()

func main() {
	cfg := config.Default()
	flag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "Address the node serves the chain on (env "+config.AddrEnv+")")
	flag.IntVar(&cfg.Difficulty, "difficulty", cfg.Difficulty, "Leading zero hex characters a mined hash needs")
	flag.Uint64Var(&cfg.MaxMineAttempts, "max-attempts", cfg.MaxMineAttempts, "Give up mining after this many nonces (0 for no cap)")
	flag.DurationVar(&cfg.MineTimeout, "mine-timeout", cfg.MineTimeout, "Give up mining after this long (0 for no timeout)")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.Parse()

	logger.SetVerbose(cfg.Verbose)

	node, err := core.NewNode(cfg)
	if err != nil {
		log.Errorf("Error initialising node: %v\n", err)
		os.Exit(1)
	}
	log.Infof("Chain initialised with %d blocks, mining difficulty %d\n", node.Chain().Len(), cfg.Difficulty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listenForQuitSignal(cancel)

	if err := node.Start(ctx); err != nil {
		log.Errorf("Error serving chain: %v\n", err)
		os.Exit(1)
	}

	log.Info("Cleaning Up...")
	if err := node.Close(); err != nil {
		log.Errorf("Error closing node: %v\n", err)
	}
}

func listenForQuitSignal(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Infof("Received signal: %s, shutting down...\n", sig)
		cancel()
	}()
}
