package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/logging"
	"github.com/njchilds90/symdiff/internal/server"
)

const squareJSON = `{"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":"2"}}`

func newTestServer(t *testing.T, mutate func(*config.Config)) (*httptest.Server, *server.Metrics) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	metrics := server.NewMetrics("symdiff_test")
	srv := httptest.NewServer(server.New(cfg, logging.Discard(), metrics).Handler())
	t.Cleanup(srv.Close)
	return srv, metrics
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func countSeries(t *testing.T, m *server.Metrics, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(m.Registry(), name)
	require.NoError(t, err)
	return n
}

// ============================================================
// POST /tool
// ============================================================

func TestTool_Diff(t *testing.T) {
	srv, metrics := newTestServer(t, nil)

	resp, body := post(t, srv.URL+"/tool", `{"tool":"diff","params":{"expr":`+squareJSON+`,"var":"x"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(server.RequestIDHeader))

	var out symdiff.ToolResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Empty(t, out.Error)
	assert.Equal(t, "(2 * x)", out.String)

	assert.Equal(t, 1, countSeries(t, metrics, "symdiff_test_tool_calls_total"))
}

func TestTool_EngineErrorIsAResult(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, body := post(t, srv.URL+"/tool",
		`{"tool":"simplify","params":{"expr":{"type":"pow","base":{"type":"num","value":"0"},"exp":{"type":"num","value":"0"}}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out symdiff.ToolResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "indeterminate_form", out.Kind)
}

func TestTool_RequestIDEchoed(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/tool", strings.NewReader(`{"tool":"mcp_spec"}`))
	require.NoError(t, err)
	req.Header.Set(server.RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(server.RequestIDHeader))
}

func TestTool_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	tests := map[string]string{
		"malformed":       `{"tool":`,
		"unknown field":   `{"tool":"diff","extra":1}`,
		"trailing data":   `{"tool":"mcp_spec"} {}`,
		"missing tool":    `{"params":{}}`,
		"tool not string": `{"tool":7}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp, raw := post(t, srv.URL+"/tool", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var out symdiff.ToolResponse
			require.NoError(t, json.Unmarshal(raw, &out))
			assert.Equal(t, "bad_request", out.Kind)
		})
	}
}

func TestTool_BodyLimit(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.Config) { c.Limits.MaxBodyBytes = 1024 })

	big := `{"tool":"diff","params":{"var":"` + strings.Repeat("x", 2048) + `"}}`
	resp, _ := post(t, srv.URL+"/tool", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestTool_DepthLimit(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.Config) { c.Limits.MaxDepth = 3 })

	deep := strings.Repeat(`{"type":"neg","expr":`, 5) + `{"type":"sym","name":"x"}` + strings.Repeat(`}`, 5)
	_, body := post(t, srv.URL+"/tool", `{"tool":"simplify","params":{"expr":`+deep+`}}`)

	var out symdiff.ToolResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "bad_request", out.Kind)
	assert.Contains(t, out.Error, "deeper than 3")
}

func TestTool_OrderLimit(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.Config) { c.Limits.MaxOrder = 2 })
	square := `{"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":"2"}}`

	_, body := post(t, srv.URL+"/tool", `{"tool":"diffn","params":{"expr":`+square+`,"var":"x","n":2}}`)
	var out symdiff.ToolResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Empty(t, out.Error)
	assert.Equal(t, "2", out.String)

	_, body = post(t, srv.URL+"/tool", `{"tool":"diffn","params":{"expr":`+square+`,"var":"x","n":1e18}}`)
	out = symdiff.ToolResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "bad_request", out.Kind)
	assert.Contains(t, out.Error, "between 0 and 2")
}

func TestTool_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/tool")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// ============================================================
// POST /batch
// ============================================================

func TestBatch_PreservesOrder(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.Config) { c.Limits.BatchConcurrency = 3 })

	var calls []string
	for i := 1; i <= 10; i++ {
		calls = append(calls, fmt.Sprintf(
			`{"tool":"simplify","params":{"expr":{"type":"add","left":{"type":"num","value":"%d"},"right":{"type":"num","value":"1"}}}}`, i))
	}
	resp, body := post(t, srv.URL+"/batch", `{"calls":[`+strings.Join(calls, ",")+`]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out server.BatchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Results, 10)
	for i, r := range out.Results {
		assert.Equal(t, fmt.Sprint(i+2), r.String)
	}
}

func TestBatch_MixedOutcomes(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, body := post(t, srv.URL+"/batch", `{"calls":[
		{"tool":"diff","params":{"expr":`+squareJSON+`,"var":"x"}},
		{"tool":"integrate"}
	]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out server.BatchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Results, 2)
	assert.Empty(t, out.Results[0].Error)
	assert.Equal(t, "unknown_tool", out.Results[1].Kind)
}

func TestBatch_Limits(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.Config) { c.Limits.MaxBatch = 2 })

	resp, _ := post(t, srv.URL+"/batch", `{"calls":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, srv.URL+"/batch", `{"calls":[{"tool":"mcp_spec"},{"tool":"mcp_spec"},{"tool":"mcp_spec"}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, srv.URL+"/batch", `{"calls":[{"tool":""}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ============================================================
// GET routes
// ============================================================

func TestSchema(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, symdiff.MCPToolSpec(), readAll(t, resp))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(readAll(t, resp)), &out))
	assert.Equal(t, "ok", out["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	post(t, srv.URL+"/tool", `{"tool":"mcp_spec"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := readAll(t, resp)
	assert.Contains(t, body, `symdiff_test_tool_calls_total{kind="ok",tool="mcp_spec"} 1`)
	assert.Contains(t, body, `symdiff_test_http_requests_total{route="/tool",status="200"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.Default()
	srv := httptest.NewServer(server.New(cfg, logging.Discard(), nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetrics_UnknownToolLabel(t *testing.T) {
	m := server.NewMetrics("symdiff_label")
	m.ObserveTool("no-such-tool", symdiff.ToolResponse{Error: "x", Kind: "unknown_tool"}, 0)

	expected := `
# HELP symdiff_label_tool_calls_total Tool calls by tool and outcome kind.
# TYPE symdiff_label_tool_calls_total counter
symdiff_label_tool_calls_total{kind="unknown_tool",tool="unknown"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "symdiff_label_tool_calls_total"))
}

// ============================================================
// Run
// ============================================================

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	s := server.New(cfg, logging.Discard(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
