package rpc

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/shu8h0-null/chainlab/core/blockchain"
)

const (
	Namespace = "Chain"
	RPCPath   = "/rpc/v0"
)

type RPCHandler struct {
	svc ChainService
}

func NewRPCHandler(svc ChainService) *RPCHandler {
	return &RPCHandler{
		svc: svc,
	}
}

func (h *RPCHandler) Blocks(ctx context.Context) ([]blockchain.Block, error) {
	return h.svc.Blocks(), nil
}

func (h *RPCHandler) Validate(ctx context.Context) ([]blockchain.Validity, error) {
	return h.svc.Validate(), nil
}

func (h *RPCHandler) MineBlock(ctx context.Context, index int) ([]blockchain.Block, error) {
	return h.svc.MineBlock(ctx, index)
}

func (h *RPCHandler) UpdateBlock(ctx context.Context, index int, data string, nonce int) ([]blockchain.Block, error) {
	return h.svc.UpdateBlock(index, data, nonce)
}

func (h *RPCHandler) Propagate(ctx context.Context, index int) ([]blockchain.Block, error) {
	return h.svc.Propagate(index)
}

func (h *RPCHandler) Update(ctx context.Context, index int, data string, nonce *int) ([]blockchain.Block, error) {
	return h.svc.Update(index, data, nonce)
}

// NewMux serves the JSON-RPC API on RPCPath and the REST API on the remaining routes.
func NewMux(svc ChainService) *http.ServeMux {
	mux := http.NewServeMux()

	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(Namespace, NewRPCHandler(svc))
	mux.Handle(RPCPath, rpcServer)

	registerREST(mux, svc)
	return mux
}
