package signer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcStub answers every eth_call with result and counts the calls.
func rpcStub(t *testing.T, result []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method != "eth_call" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  hexutil.Encode(result),
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestContractVerifierAcceptsMagicValue(t *testing.T) {
	magic := make([]byte, 32)
	copy(magic, eip1271MagicValue)
	srv, calls := rpcStub(t, magic)

	v := NewContractVerifier(srv.URL, time.Minute, time.Second, 0)
	contract := common.HexToAddress("0x9999999999999999999999999999999999999999")
	hash := common.HexToHash("0x01")

	ok, err := v.Verify(context.Background(), contract, hash, []byte{0xaa})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(context.Background(), contract, hash, []byte{0xaa})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), calls.Load(), "second answer comes from the cache")
}

func TestContractVerifierRejectsOtherValue(t *testing.T) {
	srv, _ := rpcStub(t, make([]byte, 32))
	v := NewContractVerifier(srv.URL, time.Minute, time.Second, 0)

	ok, err := v.Verify(context.Background(), common.HexToAddress("0x01"), common.HexToHash("0x02"), []byte{0x01})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContractVerifierRequiresRPC(t *testing.T) {
	v := NewContractVerifier("  ", 0, 0, -1)
	_, err := v.Verify(context.Background(), common.Address{}, common.Hash{}, nil)
	assert.Error(t, err)
}
