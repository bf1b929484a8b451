package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/GoPolymarket/fusiongate/internal/config"
	"github.com/GoPolymarket/fusiongate/internal/crosschain"
	"github.com/GoPolymarket/fusiongate/internal/middleware"
	"github.com/GoPolymarket/fusiongate/internal/model"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/random"
	"github.com/GoPolymarket/fusiongate/internal/service"
	"github.com/GoPolymarket/fusiongate/internal/signer"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAPIKey = "fg-client-a-0001"
	otherKey   = "fg-client-b-0002"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Order: config.OrderConfig{OrderExpirationDelay: 12},
		Auth:  config.AuthConfig{APIKeys: []string{testAPIKey, otherKey}},
	}
	store := service.NewMemoryStore()
	env := crosschain.Env{
		Now:  func() time.Time { return time.Unix(1_754_118_000, 0) },
		Rand: random.Seeded(5),
	}
	svc := service.NewOrderService(cfg, store, store, service.WithEnv(env))

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.AuthMiddleware(cfg))
	NewOrderHandler(svc).Register(r.Group("/v1/orders"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doAs(t, r, testAPIKey, method, path, body)
}

// doAs sends the request with apiKey; an empty key is the anonymous client.
func doAs(t *testing.T, r *gin.Engine, apiKey, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(middleware.HeaderAPIKey, apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func prepareBody(t *testing.T, maker string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile("../quote/testdata/quote.json")
	require.NoError(t, err)
	var q map[string]any
	require.NoError(t, json.Unmarshal(raw, &q))
	return map[string]any{
		"request": map[string]any{
			"srcChain":        1,
			"dstChain":        42161,
			"srcTokenAddress": "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			"dstTokenAddress": "0xaf88d065e77c8cc2239327c5edb3a432268e5831",
			"amount":          "1000000000000000000",
			"walletAddress":   maker,
			"enableEstimate":  true,
		},
		"quote":      q,
		"dstAddress": "0x4b8a7b5a0b4f2e1d0b6c0b9d8e7f6a5b4c3d2e1f",
	}
}

func TestOrderLifecycle(t *testing.T) {
	r := newRouter(t)
	s, err := signer.NewSigner(testKey)
	require.NoError(t, err)

	w := do(t, r, http.MethodPost, "/v1/orders", prepareBody(t, s.Address().Hex()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var prepared model.PrepareOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prepared))
	assert.Equal(t, "Order", prepared.TypedData.PrimaryType)
	path := "/v1/orders/" + prepared.OrderHash.Hex()

	w = do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, string(model.OrderStatusPrepared), view["status"])
	assert.Equal(t, string(model.OrderTypeSingleFill), view["orderType"])
	assert.NotContains(t, view, "client")

	sig, err := s.SignHash(prepared.OrderHash)
	require.NoError(t, err)
	w = do(t, r, http.MethodPost, path+"/submission", model.SubmitOrderRequest{Signature: sig})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var payload crosschain.SubmissionPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, hexutil.Bytes(sig), payload.Signature)
	assert.Equal(t, prepared.QuoteID, payload.QuoteID)

	fills := model.ReadyToAcceptSecretFills{Fills: []model.ReadyToAcceptSecretFill{{Idx: 0}}}
	for _, key := range []string{"", otherKey} {
		w = doAs(t, r, key, http.MethodPost, path+"/secrets", fills)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "key %q", key)
	}

	w = do(t, r, http.MethodPost, path+"/secrets", fills)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var secrets struct {
		Secrets []model.PublicSecret `json:"secrets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &secrets))
	require.Len(t, secrets.Secrets, 1)
	assert.Equal(t, prepared.OrderHash.Hex(), secrets.Secrets[0].SrcImmutables.OrderHash)
}

func TestOrderErrors(t *testing.T) {
	r := newRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   apperrors.ErrorType
	}{
		{"bad hash", http.MethodGet, "/v1/orders/0x1234", nil, http.StatusBadRequest, apperrors.ErrValidation},
		{"unknown order", http.MethodGet, "/v1/orders/0x" + string(bytes.Repeat([]byte("ab"), 32)), nil, http.StatusNotFound, apperrors.ErrNotFound},
		{"missing signature", http.MethodPost, "/v1/orders/0x" + string(bytes.Repeat([]byte("ab"), 32)) + "/submission", map[string]any{}, http.StatusBadRequest, apperrors.ErrInvalidRequest},
		{"no fills", http.MethodPost, "/v1/orders/0x" + string(bytes.Repeat([]byte("ab"), 32)) + "/secrets", map[string]any{"fills": []any{}}, http.StatusBadRequest, apperrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(tc.code), body["code"])
		})
	}
}
