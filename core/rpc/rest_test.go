package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shu8h0-null/chainlab/core/blockchain"
)

const testDifficulty = 2

type testService struct {
	chain *blockchain.Chain
}

func newTestService(t *testing.T, maxAttempts uint64) *testService {
	t.Helper()
	c, err := blockchain.NewChain(blockchain.NewMiner(maxAttempts), nil)
	require.NoError(t, err)
	return &testService{chain: c}
}

func (s *testService) Blocks() []blockchain.Block {
	return s.chain.Export()
}

func (s *testService) Validate() []blockchain.Validity {
	return s.chain.Validate()
}

func (s *testService) MineBlock(ctx context.Context, index int) ([]blockchain.Block, error) {
	if err := s.chain.MineAt(ctx, index, testDifficulty); err != nil {
		return nil, err
	}
	return s.chain.Export(), nil
}

func (s *testService) UpdateBlock(index int, data string, nonce int) ([]blockchain.Block, error) {
	if err := s.chain.EditBlock(index, data, nonce); err != nil {
		return nil, err
	}
	return s.chain.Export(), nil
}

func (s *testService) Propagate(index int) ([]blockchain.Block, error) {
	if err := s.chain.PropagateFrom(index); err != nil {
		return nil, err
	}
	return s.chain.Export(), nil
}

func (s *testService) Update(index int, data string, nonce *int) ([]blockchain.Block, error) {
	var err error
	if nonce == nil {
		err = s.chain.UpdateDataFrom(index, data)
	} else {
		err = s.chain.UpdateFrom(index, data, *nonce)
	}
	if err != nil {
		return nil, err
	}
	return s.chain.Export(), nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBlocks(t *testing.T, rec *httptest.ResponseRecorder) []blockchain.Block {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var blocks []blockchain.Block
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blocks))
	return blocks
}

func decodeValidity(t *testing.T, rec *httptest.ResponseRecorder) []bool {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res []blockchain.Validity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	flags := make([]bool, 0, len(res))
	for i, v := range res {
		assert.Equal(t, i, v.Index)
		flags = append(flags, v.Valid)
	}
	return flags
}

func TestChainSnapshotWireFormat(t *testing.T) {
	mux := NewMux(newTestService(t, 0))

	for _, path := range []string{"/", "/chain"} {
		rec := do(t, mux, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var raw []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		require.Len(t, raw, blockchain.InitialLength)
		assert.Equal(t, float64(1), raw[0]["block_no"])
		assert.Equal(t, "Data for block 1", raw[0]["data"])
		assert.Equal(t, blockchain.GenesisPrevHash, raw[0]["prev_hash"])
		assert.Contains(t, raw[0], "nonce")
		assert.Contains(t, raw[0], "hash")
	}
}

func TestTamperScenarioOverREST(t *testing.T) {
	mux := NewMux(newTestService(t, 0))

	blocks := decodeBlocks(t, do(t, mux, http.MethodPost, "/update_block", `{"index": 2, "data": "tampered", "nonce": 0}`))
	assert.Equal(t, "tampered", blocks[2].Data)

	assert.Equal(t, []bool{true, true, true, false, true}, decodeValidity(t, do(t, mux, http.MethodGet, "/validate", "")))

	decodeBlocks(t, do(t, mux, http.MethodPost, "/propagate", `{"index": "2"}`))
	assert.Equal(t, []bool{true, true, true, true, true}, decodeValidity(t, do(t, mux, http.MethodGet, "/validate", "")))
}

func TestMineBlockOverREST(t *testing.T) {
	mux := NewMux(newTestService(t, 0))

	blocks := decodeBlocks(t, do(t, mux, http.MethodPost, "/mine_block", `{"index": 1}`))
	assert.True(t, strings.HasPrefix(blocks[1].Hash, "00"))
	assert.Equal(t, []bool{true, true, false, true, true}, decodeValidity(t, do(t, mux, http.MethodGet, "/validate", "")))
}

func TestUpdateOverREST(t *testing.T) {
	svc := newTestService(t, 0)
	mux := NewMux(svc)

	blocks := decodeBlocks(t, do(t, mux, http.MethodPost, "/update", `{"index": 1, "data": "new", "nonce": 9}`))
	assert.Equal(t, 9, blocks[1].Nonce)

	blocks = decodeBlocks(t, do(t, mux, http.MethodPost, "/update", `{"index": 1, "data": "newer"}`))
	assert.Equal(t, "newer", blocks[1].Data)
	assert.Equal(t, 9, blocks[1].Nonce, "missing nonce keeps the current one")
	assert.True(t, svc.chain.IsValid())
}

func TestRESTErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"index too high", http.MethodPost, "/mine_block", `{"index": 5}`, http.StatusNotFound},
		{"negative index", http.MethodPost, "/propagate", `{"index": -1}`, http.StatusNotFound},
		{"edit out of range", http.MethodPost, "/update_block", `{"index": 9, "data": "x", "nonce": 0}`, http.StatusNotFound},
		{"update out of range", http.MethodPost, "/update", `{"index": 9, "data": "x"}`, http.StatusNotFound},
		{"missing index", http.MethodPost, "/propagate", `{}`, http.StatusBadRequest},
		{"null index", http.MethodPost, "/propagate", `{"index": null}`, http.StatusBadRequest},
		{"non numeric index", http.MethodPost, "/propagate", `{"index": "two"}`, http.StatusBadRequest},
		{"fractional index", http.MethodPost, "/propagate", `{"index": 1.5}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/mine_block", `{"index":`, http.StatusBadRequest},
		{"trailing garbage", http.MethodPost, "/propagate", `{"index": 1} junk`, http.StatusBadRequest},
		{"second json value", http.MethodPost, "/update_block", `{"index": 1, "data": "x", "nonce": 0}{"index": 2}`, http.StatusBadRequest},
		{"edit without nonce", http.MethodPost, "/update_block", `{"index": 1, "data": "x"}`, http.StatusBadRequest},
		{"edit without data", http.MethodPost, "/update_block", `{"index": 1, "nonce": 1}`, http.StatusBadRequest},
		{"update without data", http.MethodPost, "/update", `{"index": 1}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/mine_block", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, 0)
			before := svc.chain.Export()

			rec := do(t, NewMux(svc), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, before, svc.chain.Export())

			if tt.status != http.StatusMethodNotAllowed {
				var resp errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestMiningCapIsServiceUnavailable(t *testing.T) {
	svc := newTestService(t, 1)
	before := svc.chain.Export()

	rec := do(t, NewMux(svc), http.MethodPost, "/mine_block", `{"index": 0}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, before, svc.chain.Export())
}

func TestIntParam(t *testing.T) {
	var p intParam
	require.NoError(t, json.Unmarshal([]byte(`" 42 "`), &p))
	assert.Equal(t, intParam(42), p)
	require.NoError(t, json.Unmarshal([]byte(`-3`), &p))
	assert.Equal(t, intParam(-3), p)
	assert.Error(t, json.Unmarshal([]byte(`true`), &p))
}
