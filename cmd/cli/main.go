package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v3"

	"github.com/shu8h0-null/chainlab/core/blockchain"
	"github.com/shu8h0-null/chainlab/core/config"
	"github.com/shu8h0-null/chainlab/core/rpc"
	"github.com/shu8h0-null/chainlab/tui"
)

var (
	validStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#78dba9")).Bold(true)
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e05f65")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#79c3ee")).Bold(true)
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, invalidStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func indexFlag() cli.Flag {
	return &cli.IntFlag{
		Name:     "index",
		Aliases:  []string{"i"},
		Usage:    "0-based position of the block",
		Required: true,
	}
}

func dataFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "data",
		Aliases:  []string{"d"},
		Usage:    "new block data",
		Required: true,
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   config.AppName + "-cli",
		Usage:  "tamper with, mine and validate the chain served by a node",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "node",
				Value:   config.DefaultAddr,
				Usage:   "address of the node",
				Sources: cli.EnvVars(config.AddrEnv),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as json",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "dump results with go-spew",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "blocks",
				Usage: "show the chain",
				Action: withClient(func(ctx context.Context, cmd *cli.Command, c *rpc.Client) error {
					blocks, err := c.Blocks(ctx)
					if err != nil {
						return err
					}
					return printBlocks(cmd, blocks)
				}),
			},
			{
				Name:  "validate",
				Usage: "check every block's hash and link",
				Action: withClient(func(ctx context.Context, cmd *cli.Command, c *rpc.Client) error {
					validity, err := c.Validate(ctx)
					if err != nil {
						return err
					}
					return printValidity(cmd, validity)
				}),
			},
			{
				Name:  "mine",
				Usage: "re-mine one block from nonce 0; later blocks are not relinked",
				Flags: []cli.Flag{indexFlag()},
				Action: withClient(func(ctx context.Context, cmd *cli.Command, c *rpc.Client) error {
					blocks, err := c.MineBlock(ctx, int(cmd.Int("index")))
					if err != nil {
						return err
					}
					return printBlocks(cmd, blocks)
				}),
			},
			{
				Name:  "edit",
				Usage: "overwrite data and nonce of one block; later blocks are not relinked",
				Flags: []cli.Flag{
					indexFlag(),
					dataFlag(),
					&cli.IntFlag{Name: "nonce", Aliases: []string{"n"}, Usage: "new nonce", Required: true},
				},
				Action: withClient(func(ctx context.Context, cmd *cli.Command, c *rpc.Client) error {
					blocks, err := c.UpdateBlock(ctx, int(cmd.Int("index")), cmd.String("data"), int(cmd.Int("nonce")))
					if err != nil {
						return err
					}
					return printBlocks(cmd, blocks)
				}),
			},
			{
				Name:  "propagate",
				Usage: "relink every block after index to its predecessor",
				Flags: []cli.Flag{indexFlag()},
				Action: withClient(func(ctx context.Context, cmd *cli.Command, c *rpc.Client) error {
					blocks, err := c.Propagate(ctx, int(cmd.Int("index")))
					if err != nil {
						return err
					}
					return printBlocks(cmd, blocks)
				}),
			},
			{
				Name:  "update",
				Usage: "overwrite one block and relink the rest of the chain",
				Flags: []cli.Flag{
					indexFlag(),
					dataFlag(),
					&cli.IntFlag{Name: "nonce", Aliases: []string{"n"}, Usage: "new nonce (keeps the current one when unset)"},
				},
				Action: withClient(func(ctx context.Context, cmd *cli.Command, c *rpc.Client) error {
					var nonce *int
					if cmd.IsSet("nonce") {
						n := int(cmd.Int("nonce"))
						nonce = &n
					}
					blocks, err := c.Update(ctx, int(cmd.Int("index")), cmd.String("data"), nonce)
					if err != nil {
						return err
					}
					return printBlocks(cmd, blocks)
				}),
			},
			{
				Name:  "tui",
				Usage: "explore the chain interactively",
				Action: withClient(func(ctx context.Context, cmd *cli.Command, c *rpc.Client) error {
					return tui.Run(tui.NewRPCChainClient(c))
				}),
			},
		},
	}
}

type clientAction func(ctx context.Context, cmd *cli.Command, c *rpc.Client) error

// withClient dials the node for the duration of one command.
func withClient(fn clientAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		client, closer, err := rpc.NewClient(ctx, cmd.String("node"))
		if err != nil {
			return err
		}
		defer closer()
		return fn(ctx, cmd, client)
	}
}

func printBlocks(cmd *cli.Command, blocks []blockchain.Block) error {
	if done, err := printEncoded(cmd, blocks); done {
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headerStyle.Render("#"), headerStyle.Render("block_no"), headerStyle.Render("nonce"),
			headerStyle.Render("data"), headerStyle.Render("prev_hash"), headerStyle.Render("hash"))
	for i, b := range blocks {
		t.Row(strconv.Itoa(i), strconv.Itoa(b.Index), strconv.Itoa(b.Nonce), b.Data, b.PrevHash, b.Hash)
	}
	_, err := fmt.Fprintln(cmd.Root().Writer, t.Render())
	return err
}

func printValidity(cmd *cli.Command, validity []blockchain.Validity) error {
	if done, err := printEncoded(cmd, validity); done {
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headerStyle.Render("#"), headerStyle.Render("status"))
	for _, v := range validity {
		status := validStyle.Render("valid")
		if !v.Valid {
			status = invalidStyle.Render("invalid")
		}
		t.Row(strconv.Itoa(v.Index), status)
	}
	_, err := fmt.Fprintln(cmd.Root().Writer, t.Render())
	return err
}

// printEncoded handles --json and --raw; done is false when neither is set.
func printEncoded(cmd *cli.Command, v any) (done bool, err error) {
	out := cmd.Root().Writer
	switch {
	case cmd.Bool("raw"):
		spew.Fdump(out, v)
		return true, nil
	case cmd.Bool("json"):
		jsonBytes, err := json.MarshalIndent(v, "", " ")
		if err != nil {
			return true, fmt.Errorf("marshalling result to json: %w", err)
		}
		_, err = fmt.Fprintln(out, string(jsonBytes))
		return true, err
	}
	return false, nil
}
