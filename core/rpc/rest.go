package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shu8h0-null/chainlab/core/blockchain"
	"github.com/shu8h0-null/chainlab/core/logger"
)

var log = logger.NewLogger()

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// intParam accepts a JSON integer or a string holding one.
type intParam int

func (p *intParam) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*p = intParam(v)
	return nil
}

type blockRequest struct {
	Index *intParam `json:"index"`
	Data  *string   `json:"data"`
	Nonce *intParam `json:"nonce"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func registerREST(mux *http.ServeMux, svc ChainService) {
	h := &restHandler{svc: svc}
	mux.HandleFunc("GET /{$}", h.handleChain)
	mux.HandleFunc("GET /chain", h.handleChain)
	mux.HandleFunc("GET /validate", h.handleValidate)
	mux.HandleFunc("POST /mine_block", h.handleMineBlock)
	mux.HandleFunc("POST /update_block", h.handleUpdateBlock)
	mux.HandleFunc("POST /propagate", h.handlePropagate)
	mux.HandleFunc("POST /update", h.handleUpdate)
}

type restHandler struct {
	svc ChainService
}

func (h *restHandler) handleChain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Blocks())
}

func (h *restHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Validate())
}

// POST /mine_block {"index": 2}
func (h *restHandler) handleMineBlock(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBlockRequest(w, r, false, false)
	if err != nil {
		writeError(w, err)
		return
	}
	blocks, err := h.svc.MineBlock(r.Context(), int(*req.Index))
	h.respond(w, blocks, err)
}

// POST /update_block {"index": 2, "data": "...", "nonce": 0}
func (h *restHandler) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBlockRequest(w, r, true, true)
	if err != nil {
		writeError(w, err)
		return
	}
	blocks, err := h.svc.UpdateBlock(int(*req.Index), *req.Data, int(*req.Nonce))
	h.respond(w, blocks, err)
}

// POST /propagate {"index": 2}
func (h *restHandler) handlePropagate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBlockRequest(w, r, false, false)
	if err != nil {
		writeError(w, err)
		return
	}
	blocks, err := h.svc.Propagate(int(*req.Index))
	h.respond(w, blocks, err)
}

// POST /update {"index": 2, "data": "...", "nonce": 0}; nonce is optional
func (h *restHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBlockRequest(w, r, true, false)
	if err != nil {
		writeError(w, err)
		return
	}
	var nonce *int
	if req.Nonce != nil {
		n := int(*req.Nonce)
		nonce = &n
	}
	blocks, err := h.svc.Update(int(*req.Index), *req.Data, nonce)
	h.respond(w, blocks, err)
}

func (h *restHandler) respond(w http.ResponseWriter, blocks []blockchain.Block, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func decodeBlockRequest(w http.ResponseWriter, r *http.Request, needData, needNonce bool) (*blockRequest, error) {
	var req blockRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid json body: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected content after json body", errBadRequest)
	}
	switch {
	case req.Index == nil:
		return nil, fmt.Errorf("%w: missing field \"index\"", errBadRequest)
	case needData && req.Data == nil:
		return nil, fmt.Errorf("%w: missing field \"data\"", errBadRequest)
	case needNonce && req.Nonce == nil:
		return nil, fmt.Errorf("%w: missing field \"nonce\"", errBadRequest)
	}
	return &req, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, blockchain.ErrOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, blockchain.ErrMaxAttempts), errors.Is(err, blockchain.ErrMiningAborted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("Request failed: %v\n", err)
	} else {
		log.Warnf("Request rejected: %v\n", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Error encoding response: %v\n", err)
	}
}
