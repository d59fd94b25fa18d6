package solanarpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"narrativeradar/internal/adapters/collect/rest"
	perr "narrativeradar/internal/platform/errors"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, results map[string]any) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		res, ok := results[req.Method]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "error": map[string]any{"code": -32601, "message": "Method not found"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": res})
	}))
	t.Cleanup(server.Close)
	return New(server.URL, rest.Options{}, WithHTTPClient(resty.NewWithClient(server.Client())))
}

func TestNetwork(t *testing.T) {
	c := setupTestServer(t, map[string]any{
		"getRecentPerformanceSamples": []map[string]any{
			{"numTransactions": 180000, "samplePeriodSecs": 60},
			{"numTransactions": 190001, "samplePeriodSecs": 60},
		},
		"getSupply": map[string]any{"value": map[string]any{"total": 5.9e17, "circulating": 4.8e17 + 4e8}},
	})

	n, err := c.Network(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3083.3, n.AvgTPS)
	assert.Equal(t, 5.9e8, n.TotalSOL)
	assert.Equal(t, 4.8e8, n.CirculatingSOL)
}

func TestAvgTPSWithNoSamples(t *testing.T) {
	c := setupTestServer(t, map[string]any{"getRecentPerformanceSamples": []any{}})
	tps, err := c.AvgTPS(context.Background())
	require.NoError(t, err)
	assert.Zero(t, tps)
}

func TestRPCErrorIsUpstream(t *testing.T) {
	c := setupTestServer(t, map[string]any{"getRecentPerformanceSamples": []any{}})
	_, err := c.Network(context.Background())
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUpstream))
	assert.Contains(t, err.Error(), "Method not found")
}
