package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caregate/caregate"
	httpadapter "github.com/caregate/caregate/pkg/adapters/http"
	"github.com/caregate/caregate/pkg/domain"
)

// staticGen is a stub local model so the generation route can serve.
type staticGen struct{}

func (staticGen) Generate(ctx context.Context, req domain.LocalGenerationRequest, chunks []domain.RetrievedChunk) (*domain.LocalGenerationResponse, error) {
	return &domain.LocalGenerationResponse{
		ResponseText: "Typical adult resting heart rate may range from 60 to 100 beats per minute; consult your healthcare provider if readings consistently fall outside that range.",
		Confidence:   0.9,
		IsGrounded:   true,
	}, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	plane, err := caregate.New(caregate.WithGenerator(staticGen{}))
	require.NoError(t, err)

	srv := httptest.NewServer(httpadapter.NewHandler(plane, plane.Metrics().Handler()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListTools(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := decode(t, resp)
	assert.Equal(t, float64(4), body["count"])

	resp2, err := http.Get(srv.URL + "/tools?tier=FREE")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, float64(1), decode(t, resp2)["count"])
}

func TestToolInfo(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/tools/sofa_calculator")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "sofa_calculator", body["id"])
	assert.NotEmpty(t, body["parameters"])

	resp2, err := http.Get(srv.URL + "/tools/unknown_tool")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestValidateTool(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/tools/dosage_calculator/validate", map[string]any{
		"parameters": map[string]any{"medication": "ibuprofen", "weight_kg": 25},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode(t, resp)["valid"])

	resp2 := postJSON(t, srv.URL+"/tools/dosage_calculator/validate", map[string]any{
		"parameters": map[string]any{},
	})
	body := decode(t, resp2)
	assert.Equal(t, false, body["valid"])
	assert.NotEmpty(t, body["errors"])
}

func TestExecuteTool(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/tools/drug_interaction_checker/execute", map[string]any{
		"parameters": map[string]any{"medications": []string{"warfarin", "aspirin"}},
		"user_id":    "u-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["formatted_for_chat"], "warfarin")
}

func TestExecuteTool_UnknownToolIs404(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/tools/not_a_tool/execute", map[string]any{
		"parameters": map[string]any{},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, decode(t, resp)["success"])
}

func TestExecuteTool_BadBody(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/tools/sofa_calculator/execute", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEscalations_GateRejectsNonEmergency(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/escalations", map[string]any{
		"classification": map[string]any{"intent": "general", "is_emergency": false},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decode(t, resp)["escalated"])
}

func TestEscalations_CriticalRuns(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/escalations", map[string]any{
		"classification": map[string]any{
			"is_emergency":       true,
			"emergency_severity": "CRITICAL",
		},
		"context": map[string]any{
			"severity": "CRITICAL",
			"category": "cardiac",
			"user":     map[string]any{"user_id": "u-1", "message": "crushing chest pain"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, true, body["escalated"])
	assert.Equal(t, true, body["requires_immediate_911"])
	assert.Len(t, body["actions"], 5)
	assert.NotEmpty(t, body["incident_id"])
}

func TestGenerationRun(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/generation/runs", map[string]any{
		"query":  "what is a normal resting heart rate",
		"intent": "general_information",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "serve_local", body["final_decision"])
	assert.NotEmpty(t, body["response_text"])
	assert.NotEmpty(t, body["trace_id"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/tools", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
