package signer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
)

var eip1271MagicValue = []byte{0x16, 0x26, 0xba, 0x7e}

var isValidSignatureABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(`[{"constant":true,"inputs":[{"name":"_hash","type":"bytes32"},{"name":"_signature","type":"bytes"}],"name":"isValidSignature","outputs":[{"name":"magicValue","type":"bytes4"}],"payable":false,"stateMutability":"view","type":"function"}]`))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// ContractVerifier asks a smart-contract maker whether it accepts a signature.
// Answers are cached for a while since orders are verified more than once.
type ContractVerifier struct {
	rpcURL   string
	mu       sync.Mutex
	client   *ethclient.Client
	cacheTTL time.Duration
	cache    map[string]cacheEntry
	timeout  time.Duration
	retries  int
}

type cacheEntry struct {
	valid   bool
	expires time.Time
}

func NewContractVerifier(rpcURL string, ttl time.Duration, timeout time.Duration, retries int) *ContractVerifier {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &ContractVerifier{
		rpcURL:   strings.TrimSpace(rpcURL),
		cacheTTL: ttl,
		cache:    make(map[string]cacheEntry),
		timeout:  timeout,
		retries:  retries,
	}
}

func (v *ContractVerifier) Verify(ctx context.Context, contract common.Address, hash common.Hash, signature []byte) (bool, error) {
	if v.rpcURL == "" {
		return false, fmt.Errorf("rpc url not configured")
	}
	cacheKey := v.cacheKey(contract, hash, signature)
	if hit, ok := v.cacheGet(cacheKey); ok {
		return hit, nil
	}

	data, err := isValidSignatureABI.Pack("isValidSignature", [32]byte(hash), signature)
	if err != nil {
		return false, fmt.Errorf("failed to pack call data: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= v.retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, v.timeout)
		client, err := v.getClient(attemptCtx)
		if err != nil {
			cancel()
			lastErr = err
			if !shouldRetry(ctx, attempt, v.retries) {
				break
			}
			continue
		}

		output, err := client.CallContract(attemptCtx, ethereum.CallMsg{To: &contract, Data: data}, nil)
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("rpc call failed: %w", err)
			if !shouldRetry(ctx, attempt, v.retries) {
				break
			}
			continue
		}
		valid := len(output) >= 4 && bytes.Equal(output[:4], eip1271MagicValue)
		v.cacheSet(cacheKey, valid)
		return valid, nil
	}
	return false, lastErr
}

func (v *ContractVerifier) getClient(ctx context.Context) (*ethclient.Client, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.client != nil {
		return v.client, nil
	}
	client, err := ethclient.DialContext(ctx, v.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect rpc: %w", err)
	}
	v.client = client
	return v.client, nil
}

func (v *ContractVerifier) cacheKey(contract common.Address, hash common.Hash, signature []byte) string {
	return strings.ToLower(contract.Hex()) + ":" + hash.Hex() + ":" + hexutil.Encode(signature)
}

func (v *ContractVerifier) cacheGet(key string) (bool, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.cache[key]
	if !ok {
		return false, false
	}
	if time.Now().After(entry.expires) {
		delete(v.cache, key)
		return false, false
	}
	return entry.valid, true
}

func (v *ContractVerifier) cacheSet(key string, valid bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache[key] = cacheEntry{
		valid:   valid,
		expires: time.Now().Add(v.cacheTTL),
	}
}

func shouldRetry(ctx context.Context, attempt, max int) bool {
	if attempt >= max {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		return true
	}
}
