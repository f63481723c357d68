package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"pivot-graph-be/internal/dto"
	"pivot-graph-be/internal/metrics"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/pkg/serverutils"
	"pivot-graph-be/internal/repository/loader"
	"pivot-graph-be/internal/repository/memory"
	"pivot-graph-be/internal/routes"
	"pivot-graph-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDelivery struct {
	mu     sync.Mutex
	deltas map[string][]interface{}
}

func (d *recordingDelivery) SendSession(sessionID string, payload interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deltas == nil {
		d.deltas = make(map[string][]interface{})
	}
	d.deltas[sessionID] = append(d.deltas[sessionID], payload)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type wireResponse struct {
	Values []struct {
		Path  []any `json:"path"`
		Value any   `json:"value"`
	} `json:"values"`
	Invalidations []struct {
		Path []any `json:"path"`
	} `json:"invalidations"`
}

func newTestApp(t *testing.T) (*fiber.App, *recordingDelivery) {
	t.Helper()
	log := logger.NewNopLogger()
	loaders := loader.NewGraphLoaderFactory(memory.NewRepositoryFactory())
	investigations := service.NewInvestigationService(loaders, nil, log)
	sessions := service.NewSessionService(memory.NewSessionRepository(time.Minute), loaders, investigations, "Pivots", "http://viewer", log)
	deps := routes.Deps{
		Investigations: investigations,
		Search:         service.NewSearchPivotService(loaders, nil, nil, nil, nil, "", nil, log),
	}
	delivery := &recordingDelivery{}

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewGraphController(sessions, deps, delivery, metrics.New(), log).RegisterRoutes(app)
	return app, delivery
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func openSession(t *testing.T, app *fiber.App) dto.OpenSessionResponse {
	t.Helper()
	status, env := do(t, app, http.MethodPost, "/graph/sessions", `{"name":"alice"}`)
	require.Equal(t, http.StatusCreated, status)
	var res dto.OpenSessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res
}

func decodeGraph(t *testing.T, env envelope) wireResponse {
	t.Helper()
	var res wireResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res
}

func TestOpenSession(t *testing.T) {
	app, _ := newTestApp(t)

	res := openSession(t, app)

	assert.NotEmpty(t, res.SessionID)
	assert.NotEmpty(t, res.UserID)
	assert.NotEmpty(t, res.InvestigationID)
	assert.Equal(t, "Pivots", res.Title)
}

func TestGetPathsFromBodyAndQuery(t *testing.T) {
	app, _ := newTestApp(t)
	sess := openSession(t, app)

	status, env := do(t, app, http.MethodPost, "/graph/"+sess.SessionID+"/get", `{"paths":[["pivots","length"]]}`)
	require.Equal(t, http.StatusOK, status)
	res := decodeGraph(t, env)
	require.Len(t, res.Values, 1)
	assert.Equal(t, []any{"pivots", "length"}, res.Values[0].Path)
	assert.Equal(t, float64(1), res.Values[0].Value)

	query := url.QueryEscape(`[["title"]]`)
	status, env = do(t, app, http.MethodGet, "/graph/"+sess.SessionID+"?paths="+query, "")
	require.Equal(t, http.StatusOK, status)
	res = decodeGraph(t, env)
	require.Len(t, res.Values, 1)
	assert.Equal(t, "Pivots", res.Values[0].Value)
}

func TestGetRejectsEmptyPaths(t *testing.T) {
	app, _ := newTestApp(t)
	sess := openSession(t, app)

	status, env := do(t, app, http.MethodPost, "/graph/"+sess.SessionID+"/get", `{"paths":[]}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestGetQueryParameterErrors(t *testing.T) {
	app, _ := newTestApp(t)
	sess := openSession(t, app)

	tests := []struct {
		name    string
		target  string
		message string
	}{
		{"missing", "/graph/" + sess.SessionID, "missing paths query parameter"},
		{"empty list", "/graph/" + sess.SessionID + "?paths=" + url.QueryEscape(`[]`), "paths query parameter has no paths"},
		{"malformed", "/graph/" + sess.SessionID + "?paths=" + url.QueryEscape(`[["title"]`), "invalid paths query parameter"},
		{"trailing object", "/graph/" + sess.SessionID + "?paths=" + url.QueryEscape(`[["title"]],"x":1`), "invalid paths query parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, http.MethodGet, tt.target, "")

			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Contains(t, env.Message, tt.message)
		})
	}
}

func TestGetMalformedBody(t *testing.T) {
	app, _ := newTestApp(t)
	sess := openSession(t, app)

	status, _ := do(t, app, http.MethodPost, "/graph/"+sess.SessionID+"/get", `{"paths":`)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownSession(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := do(t, app, http.MethodPost, "/graph/missing/get", `{"paths":[["title"]]}`)

	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
}

func TestCallPushesDelta(t *testing.T) {
	app, delivery := newTestApp(t)
	sess := openSession(t, app)

	status, env := do(t, app, http.MethodPost, "/graph/"+sess.SessionID+"/call", `{"path":["pivots","insert"],"args":[0]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Success call path", env.Message)

	res := decodeGraph(t, env)
	var length any
	for _, v := range res.Values {
		if len(v.Path) == 2 && v.Path[0] == "pivots" && v.Path[1] == "length" {
			length = v.Value
		}
	}
	assert.Equal(t, float64(2), length)

	delivery.mu.Lock()
	defer delivery.mu.Unlock()
	require.Len(t, delivery.deltas[sess.SessionID], 1)
	delta, ok := delivery.deltas[sess.SessionID][0].(dto.GraphDelta)
	require.True(t, ok)
	assert.Equal(t, "delta", delta.Type)
	assert.Equal(t, "pivots.insert", delta.Path.String())
}

func TestCallFailureIsErrorValue(t *testing.T) {
	app, delivery := newTestApp(t)
	sess := openSession(t, app)

	status, env := do(t, app, http.MethodPost, "/graph/"+sess.SessionID+"/call", `{"path":["pivots","splice"],"args":[]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Call failed", env.Message)

	res := decodeGraph(t, env)
	require.Len(t, res.Values, 1)
	value, ok := res.Values[0].Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "error", value["$type"])
	assert.Equal(t, "INVALID_ARGUMENTS", value["value"].(map[string]any)["code"])
	assert.Empty(t, delivery.deltas)
}

func TestCloseSession(t *testing.T) {
	app, _ := newTestApp(t)
	sess := openSession(t, app)

	status, _ := do(t, app, http.MethodDelete, "/graph/"+sess.SessionID, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodPost, "/graph/"+sess.SessionID+"/get", `{"paths":[["title"]]}`)
	assert.Equal(t, http.StatusNotFound, status)
}
